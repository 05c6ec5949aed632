package trending

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// entry 是测试夹具里的一条榜单条目
type entry struct {
	href        string // h2 > a 的 href，如 "/golang/go"
	description string
	language    string
	color       string
	starsText   string // stargazers 链接的文本，如 "1,234"
	forksText   string
	todayText   string // float-sm-right 的文本，如 "88 stars today"
}

// buildFixture 拼出结构上等价于 Trending 页面的 HTML
func buildFixture(entries []entry) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><main><div class="Box">`)
	for _, e := range entries {
		sb.WriteString(`<article class="Box-row">`)
		if e.href != "" {
			fmt.Fprintf(&sb, `<h2 class="h3 lh-condensed"><a href="%s">link</a></h2>`, e.href)
		} else {
			sb.WriteString(`<h2 class="h3 lh-condensed"></h2>`)
		}
		if e.description != "" {
			fmt.Fprintf(&sb, `<p class="col-9 color-fg-muted my-1 pr-4">%s</p>`, e.description)
		}
		sb.WriteString(`<div class="f6 color-fg-muted mt-2">`)
		if e.language != "" {
			style := ""
			if e.color != "" {
				style = fmt.Sprintf(` style="background-color: %s"`, e.color)
			}
			fmt.Fprintf(&sb, `<span class="d-inline-block ml-0 mr-3"><span class="repo-language-color"%s></span><span itemprop="programmingLanguage">%s</span></span>`, style, e.language)
		}
		fmt.Fprintf(&sb, `<a class="Link Link--muted" href="%s/stargazers">%s</a>`, e.href, e.starsText)
		fmt.Fprintf(&sb, `<a class="Link Link--muted" href="%s/forks">%s</a>`, e.href, e.forksText)
		if e.todayText != "" {
			fmt.Fprintf(&sb, `<span class="d-inline-block float-sm-right">%s</span>`, e.todayText)
		}
		sb.WriteString(`</div></article>`)
	}
	sb.WriteString(`</div></main></body></html>`)
	return sb.String()
}

func simpleEntry(i int) entry {
	return entry{
		href:        fmt.Sprintf("/owner%d/repo%d", i, i),
		description: fmt.Sprintf("description %d", i),
		language:    "Go",
		starsText:   "100",
		forksText:   "10",
	}
}

func TestParse_基本字段提取(t *testing.T) {
	html := buildFixture([]entry{
		{
			href:        "/gohugoio/hugo",
			description: "The world's fastest framework",
			language:    "Go",
			color:       "#00ADD8",
			starsText:   "1,234",
			forksText:   "5,678",
			todayText:   "88 stars today",
		},
	})

	repos := Parse(html)
	assert.Len(t, repos, 1)

	repo := repos[0]
	assert.Equal(t, "gohugoio/hugo", repo.RepoName)
	assert.Equal(t, "gohugoio", repo.Owner)
	assert.Equal(t, "hugo", repo.Name)
	assert.Equal(t, "https://github.com/gohugoio/hugo", repo.URL)
	assert.Equal(t, "The world's fastest framework", repo.Description)
	assert.Equal(t, "Go", repo.Language)
	assert.Equal(t, "#00ADD8", repo.LanguageColor)
	assert.Equal(t, 1234, repo.Stars)
	assert.Equal(t, 5678, repo.Forks)
	assert.Equal(t, 88, repo.StarsToday)
	assert.Equal(t, 1, repo.Rank)
}

func TestParse_Rank按榜单顺序编号(t *testing.T) {
	// star 数故意乱序：rank 必须跟榜单顺序走，跟 star 数无关
	entries := []entry{
		{href: "/a/first", starsText: "10", forksText: "1"},
		{href: "/b/second", starsText: "99,999", forksText: "1"},
		{href: "/c/third", starsText: "500", forksText: "1"},
	}

	repos := Parse(buildFixture(entries))
	assert.Len(t, repos, 3)
	assert.Equal(t, "a/first", repos[0].RepoName)
	assert.Equal(t, "b/second", repos[1].RepoName)
	assert.Equal(t, "c/third", repos[2].RepoName)
	for i, repo := range repos {
		assert.Equal(t, i+1, repo.Rank)
	}
}

func TestParse_超过20条时截断(t *testing.T) {
	entries := make([]entry, 35)
	for i := range entries {
		entries[i] = simpleEntry(i)
	}

	repos := Parse(buildFixture(entries))
	assert.Len(t, repos, 20)
	assert.Equal(t, 1, repos[0].Rank)
	assert.Equal(t, 20, repos[19].Rank)
	assert.Equal(t, "owner19/repo19", repos[19].RepoName)
}

func TestParse_解析不出仓库名的条目被静默丢弃(t *testing.T) {
	entries := []entry{
		simpleEntry(0),
		{href: "", starsText: "100", forksText: "10"},     // 没有链接
		{href: "/onlyowner", starsText: "1", forksText: ""}, // 路径只有一段
		simpleEntry(3),
	}

	repos := Parse(buildFixture(entries))
	assert.Len(t, repos, 2)
	assert.Equal(t, "owner0/repo0", repos[0].RepoName)
	assert.Equal(t, "owner3/repo3", repos[1].RepoName)
	// 丢弃后 rank 仍然连续
	assert.Equal(t, 1, repos[0].Rank)
	assert.Equal(t, 2, repos[1].Rank)
}

func TestParse_数字解析边界(t *testing.T) {
	tests := []struct {
		name       string
		starsText  string
		todayText  string
		wantStars  int
		wantToday  int
	}{
		{name: "千分位逗号", starsText: "1,234", wantStars: 1234},
		{name: "空文本记0", starsText: "", wantStars: 0},
		{name: "非数字记0", starsText: "n/a", wantStars: 0},
		{name: "stars today 短语", starsText: "10", todayText: "5 stars today", wantStars: 10, wantToday: 5},
		{name: "单数 star today", starsText: "10", todayText: "1 star today", wantStars: 10, wantToday: 1},
		{name: "带逗号的 today", starsText: "10", todayText: "2,048 stars today", wantStars: 10, wantToday: 2048},
		{name: "短语缺失记0", starsText: "10", todayText: "", wantStars: 10, wantToday: 0},
		{name: "短语格式变了记0", starsText: "10", todayText: "built by", wantStars: 10, wantToday: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := Parse(buildFixture([]entry{{
				href:      "/x/y",
				starsText: tt.starsText,
				forksText: "0",
				todayText: tt.todayText,
			}}))
			assert.Len(t, repos, 1)
			assert.Equal(t, tt.wantStars, repos[0].Stars)
			assert.Equal(t, tt.wantToday, repos[0].StarsToday)
		})
	}
}

func TestParse_缺省字段(t *testing.T) {
	repos := Parse(buildFixture([]entry{{href: "/x/y", starsText: "1", forksText: "2"}}))
	assert.Len(t, repos, 1)
	assert.Empty(t, repos[0].Description)
	assert.Empty(t, repos[0].Language)
	assert.Empty(t, repos[0].LanguageColor)
}

func TestParse_确定性(t *testing.T) {
	html := buildFixture([]entry{simpleEntry(1), simpleEntry(2)})
	first := Parse(html)
	second := Parse(html)
	assert.Equal(t, first, second)
}

func TestParse_空页面(t *testing.T) {
	assert.Empty(t, Parse("<html><body></body></html>"))
	assert.Empty(t, Parse(""))
}
