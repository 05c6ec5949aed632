package github

import (
	"context"

	"github-trending-tracker/internal/common"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// readme 摘录最多取这么多字符，够 AI 看清项目是干嘛的就行
const maxReadmeChars = 4000

// ReadmeFetcher 实现了 port.ReadmeFetcher 接口
// 给 AI 分析补充 README 上下文，光靠一行描述经常判断不准
type ReadmeFetcher struct {
	client *github.Client
}

// NewReadmeFetcher 初始化 GitHub 客户端
// token 为空就匿名访问（限制 60次/小时），够每天一批 Trending 用了
func NewReadmeFetcher(token string) *ReadmeFetcher {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &ReadmeFetcher{client: client}
}

// Readme 获取仓库 README 的文本摘录
func (f *ReadmeFetcher) Readme(ctx context.Context, owner, name string) (string, error) {
	readme, _, err := f.client.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		return "", common.WrapError(common.ErrCodeAnalysis, "获取 README 失败", err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", common.WrapError(common.ErrCodeAnalysis, "解码 README 失败", err)
	}

	if len(content) > maxReadmeChars {
		content = content[:maxReadmeChars]
	}
	return content, nil
}
