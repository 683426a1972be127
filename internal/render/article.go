package render

import (
	"context"
	"html/template"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// wikiPrefix 为上游正文中的站内相对链接前缀。
const wikiPrefix = "./"

// newPolicy 基于 UGCPolicy：保留段落/加粗/链接等常见标签，去掉脚本与事件属性。
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("title").OnElements("a")
	return p
}

// WikiBase 返回某语言的条目根地址，如 https://fr.wikipedia.org/wiki/。
func WikiBase(lang, domain string) string {
	return "https://" + lang + "." + domain + "/wiki/"
}

// article 清洗上游 HTML，并将 ./Title 形式的链接改写为对应语言站点的绝对地址。
// 解析失败时退回清洗后的原文，不影响同条新闻的其他字段。
func (r *Renderer) article(ctx context.Context, lang, raw string) template.HTML {
	clean := r.policy.Sanitize(raw)
	if !strings.Contains(clean, wikiPrefix) {
		return template.HTML(clean)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return template.HTML(clean)
	}
	base := WikiBase(lang, r.set.WikiDomain)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, wikiPrefix) {
			return
		}
		title := strings.TrimPrefix(href, wikiPrefix)
		a.SetAttr("href", base+title)
		if r.set.Annotate && r.describer != nil {
			r.annotate(ctx, lang, a, title)
		}
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return template.HTML(clean)
	}
	return template.HTML(out)
}

// annotate 为链接补充 title 提示；查询失败或为空时保持原样。
func (r *Renderer) annotate(ctx context.Context, lang string, a *goquery.Selection, title string) {
	name := title
	if i := strings.IndexAny(name, "#?"); i >= 0 {
		name = name[:i]
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" {
		return
	}
	desc, err := r.describer.Description(ctx, lang, name)
	if err != nil || desc == "" {
		return
	}
	a.SetAttr("title", desc)
}
