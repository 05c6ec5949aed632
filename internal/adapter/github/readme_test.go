package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github-trending-tracker/internal/common"

	"github.com/google/go-github/v53/github"
	"github.com/stretchr/testify/assert"
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *ReadmeFetcher) {
	server := httptest.NewServer(handler)

	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL

	fetcher := &ReadmeFetcher{client: client}
	return server, fetcher
}

func TestReadmeFetcher_成功获取并解码(t *testing.T) {
	content := "# awesome-tool\n\nA CLI that does things."
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	server, fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/test/awesome-tool/readme", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name":"README.md","encoding":"base64","content":"%s"}`, encoded)
	})
	defer server.Close()

	got, err := fetcher.Readme(context.Background(), "test", "awesome-tool")

	assert.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadmeFetcher_超长内容被截断(t *testing.T) {
	content := strings.Repeat("a", maxReadmeChars+500)
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	server, fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name":"README.md","encoding":"base64","content":"%s"}`, encoded)
	})
	defer server.Close()

	got, err := fetcher.Readme(context.Background(), "test", "big-readme")

	assert.NoError(t, err)
	assert.Len(t, got, maxReadmeChars)
}

func TestReadmeFetcher_仓库没有README(t *testing.T) {
	server, fetcher := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})
	defer server.Close()

	_, err := fetcher.Readme(context.Background(), "test", "no-readme")

	assert.Error(t, err)
	assert.True(t, common.IsCode(err, common.ErrCodeAnalysis))
}

func TestNewReadmeFetcher(t *testing.T) {
	// 匿名和带 token 都能构造出客户端
	assert.NotNil(t, NewReadmeFetcher(""))
	assert.NotNil(t, NewReadmeFetcher("ghp_test_token"))
}
