package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github-trending-tracker/internal/common"
)

const defaultServerChanBase = "https://sctapi.ftqq.com"

// ServerChanChannel 通过 Server酱 推送到微信
// 文档: https://sct.ftqq.com/
type ServerChanChannel struct {
	sendKey string
	baseURL string
	client  *http.Client
}

func NewServerChanChannel(sendKey string) *ServerChanChannel {
	return &ServerChanChannel{
		sendKey: sendKey,
		baseURL: defaultServerChanBase,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewServerChanChannelWithBaseURL 指定接口地址，测试用
func NewServerChanChannelWithBaseURL(sendKey, baseURL string) *ServerChanChannel {
	c := NewServerChanChannel(sendKey)
	c.baseURL = baseURL
	return c
}

func (c *ServerChanChannel) Name() string {
	return "serverchan"
}

// Send 发送一条推送（带重试机制）
// Server酱 的应答是 JSON，code 非 0 也算失败，不能只看 HTTP 状态码
func (c *ServerChanChannel) Send(ctx context.Context, title, body string) error {
	if c.sendKey == "" {
		return common.NewError(common.ErrCodeConfig, "Server酱 SendKey 为空")
	}

	endpoint := fmt.Sprintf("%s/%s.send", c.baseURL, c.sendKey)
	form := url.Values{}
	form.Set("title", title)
	form.Set("desp", body)

	err := common.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("Server酱 API 报错: 状态码 %d", resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var ack struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &ack); err != nil {
			return fmt.Errorf("Server酱 应答不是合法 JSON: %w", err)
		}
		if ack.Code != 0 {
			return fmt.Errorf("Server酱 拒绝推送: code=%d message=%s", ack.Code, ack.Message)
		}
		return nil
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotify, "Server酱 推送失败", err)
	}

	return nil
}
