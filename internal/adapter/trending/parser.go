package trending

import (
	"regexp"
	"strconv"
	"strings"

	"github-trending-tracker/internal/domain"

	"golang.org/x/net/html"
)

// maxEntries 只取榜单前 N 条作为权威数据（源页面一页最多渲染 25 条）
const maxEntries = 20

var starsTodayRe = regexp.MustCompile(`(?i)(\d[\d,]*)\s*stars?\s*today`)

var bgColorRe = regexp.MustCompile(`background-color:\s*([^;"]+)`)

// Parse 把 Trending 页面的原始 HTML 解析成有序的仓库记录，榜首在前
//
// 纯函数：相同输入永远产生相同输出。解析不出 owner/name 的条目
// 静默丢弃（页面结构偶尔抽风是常态，不算错误），rank 按产出顺序
// 从 1 开始编号，不按 star 数重排
func Parse(body string) []*domain.TrendingRepo {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		// html.Parse 对残缺标记也能容错，几乎不会走到这里
		return nil
	}

	var repos []*domain.TrendingRepo
	for _, article := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "article" && hasClass(n, "Box-row")
	}) {
		if len(repos) >= maxEntries {
			break
		}
		if repo := parseEntry(article); repo != nil {
			repo.Rank = len(repos) + 1
			repos = append(repos, repo)
		}
	}

	return repos
}

// parseEntry 解析单个 article.Box-row 条目，解析不出仓库名时返回 nil
func parseEntry(article *html.Node) *domain.TrendingRepo {
	// 仓库名在 h2 > a 的 href 里，形如 "/owner/name"
	var href string
	if h2 := findFirst(article, func(n *html.Node) bool { return n.Data == "h2" }); h2 != nil {
		if a := findFirst(h2, func(n *html.Node) bool { return n.Data == "a" }); a != nil {
			href = strings.TrimSpace(attr(a, "href"))
		}
	}
	parts := splitPath(href)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	owner, name := parts[0], parts[1]

	repo := &domain.TrendingRepo{
		RepoName: owner + "/" + name,
		Owner:    owner,
		Name:     name,
		URL:      "https://github.com/" + owner + "/" + name,
	}

	if p := findFirst(article, func(n *html.Node) bool {
		return n.Data == "p" && hasClass(n, "col-9")
	}); p != nil {
		repo.Description = collapseSpace(text(p))
	}

	if lang := findFirst(article, func(n *html.Node) bool {
		return attr(n, "itemprop") == "programmingLanguage"
	}); lang != nil {
		repo.Language = collapseSpace(text(lang))
	}

	if color := findFirst(article, func(n *html.Node) bool {
		return hasClass(n, "repo-language-color")
	}); color != nil {
		if m := bgColorRe.FindStringSubmatch(attr(color, "style")); m != nil {
			repo.LanguageColor = strings.TrimSpace(m[1])
		}
	}

	if a := findFirst(article, func(n *html.Node) bool {
		return n.Data == "a" && strings.HasSuffix(attr(n, "href"), "/stargazers")
	}); a != nil {
		repo.Stars = parseCount(text(a))
	}

	if a := findFirst(article, func(n *html.Node) bool {
		return n.Data == "a" && strings.HasSuffix(attr(n, "href"), "/forks")
	}); a != nil {
		repo.Forks = parseCount(text(a))
	}

	// "123 stars today" 是自由文本，格式改了就匹配不到，此时记 0 而不是报错
	if span := findFirst(article, func(n *html.Node) bool {
		return hasClass(n, "float-sm-right")
	}); span != nil {
		if m := starsTodayRe.FindStringSubmatch(text(span)); m != nil {
			repo.StarsToday = parseCount(m[1])
		}
	}

	return repo
}

// parseCount 解析可能带千分位逗号的数字文本，解析不了记 0
func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// splitPath 按 / 切分并去掉空段，"/owner/name" -> ["owner","name"]
func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// --- html.Node 遍历辅助 ---

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)
			return // 不往匹配节点内部继续找同类
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var walk func(*html.Node) *html.Node
	walk = func(node *html.Node) *html.Node {
		if node.Type == html.ElementNode && match(node) {
			return node
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := walk(c); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapseSpace 去掉首尾空白并把内部连续空白压成单个空格
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
