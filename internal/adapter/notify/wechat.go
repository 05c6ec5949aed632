package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github-trending-tracker/internal/common"
)

// WeChatChannel 通过企业微信群机器人 Webhook 推送 Markdown 消息
type WeChatChannel struct {
	webhookURL string
	client     *http.Client
}

func NewWeChatChannel(webhookURL string) *WeChatChannel {
	return &WeChatChannel{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *WeChatChannel) Name() string {
	return "wechat"
}

// Send 发送 Markdown 消息（带重试机制）
// 企业微信的应答里 errcode 非 0 也算失败
func (c *WeChatChannel) Send(ctx context.Context, title, body string) error {
	if c.webhookURL == "" {
		return common.NewError(common.ErrCodeConfig, "企业微信 Webhook 为空")
	}

	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]interface{}{
			// 标题并进正文，企业微信的 markdown 消息没有独立标题字段
			"content": fmt.Sprintf("# %s\n\n%s", title, body),
		},
	}
	raw, _ := json.Marshal(payload)

	err := common.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("企业微信 API 报错: 状态码 %d", resp.StatusCode)
		}

		ackRaw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var ack struct {
			ErrCode int    `json:"errcode"`
			ErrMsg  string `json:"errmsg"`
		}
		if err := json.Unmarshal(ackRaw, &ack); err != nil {
			return fmt.Errorf("企业微信应答不是合法 JSON: %w", err)
		}
		if ack.ErrCode != 0 {
			return fmt.Errorf("企业微信拒绝推送: errcode=%d errmsg=%s", ack.ErrCode, ack.ErrMsg)
		}
		return nil
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotify, "企业微信推送失败", err)
	}

	return nil
}
