// Package browser 通过自动化桥接服务执行章节发布
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"novel-forge-api/internal/domain/port"
	apperrors "novel-forge-api/pkg/errors"
	"novel-forge-api/pkg/logger"
)

// Bridge 调用浏览器自动化桥接服务完成发布
//
// 桥接服务持有 Playwright/CDP 会话，本服务只通过 HTTP 下发指令。
// 端点探测不经过桥接，直接访问 Chrome DevTools 的 /json 接口。
type Bridge struct {
	endpoint string
	client   *http.Client
}

var _ port.Publisher = (*Bridge)(nil)

// NewBridge 创建发布桥接客户端
func NewBridge(endpoint string, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Bridge{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type publishPayload struct {
	CDPURL    string            `json:"cdp_url"`
	CreateURL string            `json:"create_url"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Selectors map[string]string `json:"selectors,omitempty"`
	DryRun    bool              `json:"dry_run"`
	TimeoutMS int64             `json:"timeout_ms"`
}

type publishReply struct {
	Success    bool   `json:"success"`
	Detail     string `json:"detail"`
	URL        string `json:"url"`
	Screenshot string `json:"screenshot"`
}

// Publish 下发一次章节发布指令
func (b *Bridge) Publish(ctx context.Context, req port.PublishRequest) (*port.PublishResult, error) {
	payload := publishPayload{
		CDPURL:    req.CDPURL,
		CreateURL: req.CreateURL,
		Title:     req.Title,
		Content:   req.Content,
		Selectors: req.Selectors,
		DryRun:    req.DryRun,
		TimeoutMS: req.Timeout.Milliseconds(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.ErrPublishFailed.WithError(err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/publish", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrPublishFailed.WithError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.ErrPublishFailed.WithDetail("bridge unreachable").WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.ErrPublishFailed.WithError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ErrPublishFailed.WithDetail(
			fmt.Sprintf("bridge returned %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var reply publishReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, apperrors.ErrPublishFailed.WithDetail("malformed bridge reply").WithError(err)
	}

	logger.Info(ctx, "publish instruction completed",
		"success", reply.Success, "detail", reply.Detail)
	return &port.PublishResult{
		Success:    reply.Success,
		Detail:     reply.Detail,
		URL:        reply.URL,
		Screenshot: reply.Screenshot,
	}, nil
}

type devtoolsPage struct {
	URL string `json:"url"`
}

// Probe 探测 DevTools 端点，返回当前打开的页面列表
func (b *Bridge) Probe(ctx context.Context, endpoint string, timeout time.Duration) (*port.ProbeResult, error) {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	listURL := strings.TrimRight(endpoint, "/") + "/json/list"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, apperrors.ErrInvalidParam.WithDetail("bad devtools endpoint").WithError(err)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return &port.ProbeResult{Success: false, Detail: "devtools unreachable: " + err.Error()}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &port.ProbeResult{
			Success: false,
			Detail:  fmt.Sprintf("devtools returned %d", resp.StatusCode),
		}, nil
	}

	var pages []devtoolsPage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&pages); err != nil {
		return &port.ProbeResult{Success: false, Detail: "malformed devtools reply: " + err.Error()}, nil
	}

	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		if p.URL == "" {
			urls = append(urls, "about:blank")
			continue
		}
		urls = append(urls, p.URL)
	}
	if len(urls) > 20 {
		urls = urls[:20]
	}
	return &port.ProbeResult{
		Success:        true,
		Detail:         fmt.Sprintf("cdp_connected pages=%d", len(pages)),
		ReachablePages: urls,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
