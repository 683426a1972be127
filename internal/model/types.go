// 包 model 定义构建用的数据模型：上游精选内容、新闻条目、页面与构建报告。
package model

import (
	"strings"
	"time"
)

// Featured 为某语言某日的精选内容，仅保留 news 段，其余段忽略。
type Featured struct {
	News []Story `json:"news"`
}

// Story 为一条新闻，结构与上游 JSON 保持一致；所有字段均可缺失。
type Story struct {
	Story string `json:"story"`
	Links []Link `json:"links"`
}

// Link 为新闻关联的条目（首个条目提供标题/摘要/图片）。
type Link struct {
	Titles        *Titles      `json:"titles"`
	Description   string       `json:"description"`
	ExtractHTML   string       `json:"extract_html"`
	ContentURLs   *ContentURLs `json:"content_urls"`
	Thumbnail     *ImageRef    `json:"thumbnail"`
	OriginalImage *ImageRef    `json:"originalimage"`
}

type Titles struct {
	Normalized string `json:"normalized"`
}

type ContentURLs struct {
	Desktop *PageURL `json:"desktop"`
}

type PageURL struct {
	Page string `json:"page"`
}

type ImageRef struct {
	Source string `json:"source"`
}

// Image 为渲染所需的图片引用。
type Image struct {
	ThumbnailURL string
	OriginalURL  string
}

func (s Story) primary() (Link, bool) {
	if len(s.Links) == 0 {
		return Link{}, false
	}
	return s.Links[0], true
}

func present(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Headline 返回首个条目的规范化标题。
func (s Story) Headline() (string, bool) {
	l, ok := s.primary()
	if !ok || l.Titles == nil {
		return "", false
	}
	return present(l.Titles.Normalized)
}

// Subtitle 返回首个条目的简短描述。
func (s Story) Subtitle() (string, bool) {
	l, ok := s.primary()
	if !ok {
		return "", false
	}
	return present(l.Description)
}

// ArticleHTML 返回新闻正文（可能包含 ./ 开头的相对链接）。
func (s Story) ArticleHTML() (string, bool) {
	return present(s.Story)
}

// ExtractHTML 返回首个条目的摘要 HTML。
func (s Story) ExtractHTML() (string, bool) {
	l, ok := s.primary()
	if !ok {
		return "", false
	}
	return present(l.ExtractHTML)
}

// ContinueReadingURL 返回条目桌面版页面地址。
func (s Story) ContinueReadingURL() (string, bool) {
	l, ok := s.primary()
	if !ok || l.ContentURLs == nil || l.ContentURLs.Desktop == nil {
		return "", false
	}
	return present(l.ContentURLs.Desktop.Page)
}

// Image 返回图片引用；缩略图缺失视为无图，原图缺失时回退为缩略图。
func (s Story) Image() (Image, bool) {
	l, ok := s.primary()
	if !ok || l.Thumbnail == nil {
		return Image{}, false
	}
	thumb, ok := present(l.Thumbnail.Source)
	if !ok {
		return Image{}, false
	}
	img := Image{ThumbnailURL: thumb, OriginalURL: thumb}
	if l.OriginalImage != nil {
		if orig, ok := present(l.OriginalImage.Source); ok {
			img.OriginalURL = orig
		}
	}
	return img, true
}

// PageType 为页面类型。
type PageType string

const (
	PageNews     PageType = "news"
	PageAbout    PageType = "about"
	PageNotFound PageType = "404"
)

// Page 为渲染结果及其相对输出路径（使用 / 分隔）。
type Page struct {
	Type PageType
	Lang string
	Path string
	HTML string
}

// PagePath 由页面类型与语言推导输出路径：
// news+en → index.html；news+其他 → {lang}/index.html；about → about.html；404 → 404.html。
func PagePath(t PageType, lang string) string {
	switch t {
	case PageAbout:
		return "about.html"
	case PageNotFound:
		return "404.html"
	}
	if lang == "" || lang == "en" {
		return "index.html"
	}
	return lang + "/index.html"
}

// LangResult 为单个语言的构建结果。
type LangResult struct {
	Lang      string  `json:"lang"`
	Path      string  `json:"path,omitempty"`
	Stories   int     `json:"stories"`
	Available bool    `json:"available"`
	Error     string  `json:"error,omitempty"`
	Seconds   float64 `json:"seconds"`
}

// Stats 为构建统计信息。
type Stats struct {
	LanguagesTotal   int       `json:"languages_total"`
	LanguagesBuilt   int       `json:"languages_built"`
	LanguagesSkipped int       `json:"languages_skipped"`
	StoriesTotal     int       `json:"stories_total"`
	Seconds          float64   `json:"seconds"`
	BuiltAt          time.Time `json:"built_at"`
}

// Report 为构建清单（build.json）顶层结构。
type Report struct {
	Stats     Stats        `json:"stats"`
	Languages []LangResult `json:"languages"`
}
