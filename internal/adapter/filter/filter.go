package filter

import (
	"strings"

	"github-trending-tracker/internal/domain"
)

// DestinationFilter 是单个通知目的地的过滤条件
// 在渲染摘要之前套用；过滤后一条不剩的目的地会被跳过（不算失败）
type DestinationFilter struct {
	Languages []string // 语言白名单，空表示不限；大小写不敏感
	MinStars  int      // star 数下限，0 表示不限
}

// Apply 依次套用语言白名单和 star 下限，保持原有顺序
func (f DestinationFilter) Apply(repos []*domain.TrendingRepo) []*domain.TrendingRepo {
	return FilterByMinStars(FilterByLanguages(repos, f.Languages), f.MinStars)
}

// FilterByLanguages 按语言白名单过滤，白名单为空时原样返回
func FilterByLanguages(repos []*domain.TrendingRepo, languages []string) []*domain.TrendingRepo {
	if len(languages) == 0 {
		return repos
	}

	allowed := make(map[string]bool, len(languages))
	for _, lang := range languages {
		allowed[strings.ToLower(strings.TrimSpace(lang))] = true
	}

	var filtered []*domain.TrendingRepo
	for _, repo := range repos {
		if allowed[strings.ToLower(repo.Language)] {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// FilterByMinStars 过滤掉 star 数低于下限的项目
func FilterByMinStars(repos []*domain.TrendingRepo, minStars int) []*domain.TrendingRepo {
	if minStars <= 0 {
		return repos
	}

	var filtered []*domain.TrendingRepo
	for _, repo := range repos {
		if repo.Stars >= minStars {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}
