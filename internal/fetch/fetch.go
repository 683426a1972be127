// 包 fetch 封装构建期使用的 HTTP 客户端（代理/超时/UA），
// 供内容接口、图片下载与样式表下载共用。每次 Get 只发出一次请求，不做重试。
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultUserAgent 为默认的标识性 UA，Wikimedia 接口要求带上联系方式。
const DefaultUserAgent = "go-cursory/1.0 (https://github.com/j-eo/cursory)"

// Client 为共享的 HTTP 客户端。
type Client struct {
	http *http.Client
	ua   string
}

// Options 为客户端构造参数。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	UserAgent  string
}

// StatusError 表示上游返回了非 2xx 状态码。
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.URL)
}

// ErrTooLarge 表示响应体超过调用方给定的上限。
var ErrTooLarge = errors.New("response body too large")

// New 创建客户端；代理地址在此解析，配置错误时返回错误。
func New(opts Options) (*Client, error) {
	proxies := map[string]*url.URL{}
	for scheme, raw := range map[string]string{"http": opts.ProxyHTTP, "https": opts.ProxyHTTPS} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid %s proxy %q", scheme, raw)
		}
		proxies[scheme] = u
	}
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if u, ok := proxies[req.URL.Scheme]; ok {
				return u, nil
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		DisableKeepAlives:     true,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{http: &http.Client{Transport: transport, Timeout: opts.Timeout}, ua: ua}, nil
}

// Bytes 读取完整响应体，超过 limit 字节时返回 ErrTooLarge。
func (c *Client) Bytes(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%s: %w (> %d bytes)", rawURL, ErrTooLarge, limit)
	}
	return b, nil
}

// Get 发出单次 GET 请求。2xx 返回响应（调用方负责关闭 Body），
// 其他状态码返回 *StatusError，网络错误原样返回。
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	// 支持环境变量覆盖（CURSORY_UA）
	ua := os.Getenv("CURSORY_UA")
	if ua == "" {
		ua = c.ua
	}
	req.Header.Set("User-Agent", ua)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}
	return resp, nil
}
