package render

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

// Minifier 压缩完整的 HTML 文档。
type Minifier interface {
	Minify(doc string) (string, error)
}

// MinifierFunc 允许用普通函数实现 Minifier。
type MinifierFunc func(doc string) (string, error)

func (f MinifierFunc) Minify(doc string) (string, error) { return f(doc) }

type htmlMinifier struct {
	m *minify.M
}

// NewMinifier 返回基于 tdewolff/minify 的压缩器（含内联 CSS）。
func NewMinifier() Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &htmlMinifier{m: m}
}

func (h *htmlMinifier) Minify(doc string) (string, error) {
	return h.m.String("text/html", doc)
}
