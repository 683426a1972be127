// 包 wiki 访问 Wikimedia REST 接口：
// - Featured：获取某语言某日的精选内容（非 200 视为"暂无内容"）
// - Description：获取条目简介，用于正文链接的悬停提示
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-cursory/internal/fetch"
	"go-cursory/internal/model"
)

// maxBody 为单次响应读取上限。
const maxBody = 8 << 20

// Client 为内容接口客户端。
type Client struct {
	fetch *fetch.Client
	base  string
}

// New 创建客户端，base 形如 https://api.wikimedia.org。
func New(cl *fetch.Client, base string) *Client {
	return &Client{fetch: cl, base: strings.TrimRight(base, "/")}
}

// FeaturedURL 返回精选内容地址，日期按 UTC 取年月日。
func (c *Client) FeaturedURL(lang string, date time.Time) string {
	return fmt.Sprintf("%s/feed/v1/wikipedia/%s/featured/%s", c.base, url.PathEscape(lang), date.UTC().Format("2006/01/02"))
}

// Featured 获取精选内容。上游非 200 时返回 (nil, nil)，
// 网络错误或响应无法解析时返回错误。
func (c *Client) Featured(ctx context.Context, lang string, date time.Time) (*model.Featured, error) {
	u := c.FeaturedURL(lang, date)
	resp, err := c.fetch.Get(ctx, u)
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) {
			return nil, nil
		}
		return nil, fmt.Errorf("GET featured %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	var out model.Featured
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode featured %s: %w", u, err)
	}
	return &out, nil
}

// Description 获取条目简介；title 为条目名（可含空格，下划线与空格等价）。
func (c *Client) Description(ctx context.Context, lang, title string) (string, error) {
	title = strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	if title == "" {
		return "", errors.New("empty title")
	}
	u := fmt.Sprintf("%s/core/v1/wikipedia/%s/page/%s/description", c.base, url.PathEscape(lang), url.PathEscape(title))
	resp, err := c.fetch.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("GET description %s: %w", u, err)
	}
	defer resp.Body.Close()
	var out struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode description %s: %w", u, err)
	}
	return strings.TrimSpace(out.Description), nil
}
