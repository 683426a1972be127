// 包 render 负责页面渲染：根据精选内容与语言生成完整 HTML 文档。
// - 页头：标题/标语/语言选择器（含 noscript 回退导航）
// - 正文：news 逐条渲染新闻（字段逐个可缺失），about/404 为固定内容
// - 页脚：来源/关于链接、维基百科署名、构建时间、可选地区徽章
// - 可选压缩：失败时记录警告并使用未压缩结果
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"go-cursory/internal/langs"
	"go-cursory/internal/logx"
	"go-cursory/internal/model"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const (
	siteTitle   = "Cursory"
	tagline     = "A cursory glance at current events."
	unavailable = "There was an error fetching the news. Please try again later."

	imagesFeature = "Images are resized and converted to WebP to keep pages light."
)

// ImageOptimizer 将上游图片转为本地引用；失败时必须返回原始地址。
type ImageOptimizer interface {
	Optimize(ctx context.Context, src, lang string) string
}

// Describer 查询条目简介，用于正文链接的悬停提示。
type Describer interface {
	Description(ctx context.Context, lang, title string) (string, error)
}

// Options 为单次渲染选项。
type Options struct {
	Minify    bool
	ShowBadge bool
}

// Settings 为站点级的固定文案与链接。
type Settings struct {
	SiteURL    string // 以 / 结尾
	SourceURL  string
	AuthorName string
	AuthorURL  string
	BadgeText  string
	WikiDomain string
	// Annotate 开启时为正文链接补充 title 提示（每个链接一次请求）
	Annotate bool
	// OptimizeImages 仅影响 about 页的功能说明
	OptimizeImages bool
}

// Renderer 持有语言目录、模板与可选协作者，构建期内只读。
type Renderer struct {
	catalog   *langs.Catalog
	set       Settings
	images    ImageOptimizer
	describer Describer
	minifier  Minifier
	policy    *bluemonday.Policy
	now       func() time.Time
	tmpls     map[model.PageType]*template.Template
}

// New 创建渲染器；模板解析失败属于编程错误，直接 panic。
func New(cat *langs.Catalog, set Settings) *Renderer {
	if set.WikiDomain == "" {
		set.WikiDomain = "wikipedia.org"
	}
	r := &Renderer{
		catalog:  cat,
		set:      set,
		minifier: NewMinifier(),
		policy:   newPolicy(),
		now:      time.Now,
		tmpls:    make(map[model.PageType]*template.Template, 3),
	}
	pages := map[model.PageType]string{
		model.PageNews:     "templates/news.gohtml",
		model.PageAbout:    "templates/about.gohtml",
		model.PageNotFound: "templates/notfound.gohtml",
	}
	for pt, file := range pages {
		r.tmpls[pt] = template.Must(template.New(string(pt)).ParseFS(templateFS, "templates/layout.gohtml", file))
	}
	return r
}

// SetImageOptimizer 设置图片优化器；为 nil 时直接引用上游缩略图。
func (r *Renderer) SetImageOptimizer(o ImageOptimizer) { r.images = o }

// SetDescriber 设置简介查询；仅在 Settings.Annotate 开启时使用。
func (r *Renderer) SetDescriber(d Describer) { r.describer = d }

// SetMinifier 替换压缩器。
func (r *Renderer) SetMinifier(m Minifier) {
	if m != nil {
		r.minifier = m
	}
}

// SetClock 替换时钟（页脚构建时间）。
func (r *Renderer) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type langOption struct {
	Code     string
	Name     string
	Href     string
	Selected bool
}

type alternate struct {
	Code string
	URL  string
}

type imageView struct {
	Src  string
	Href string
	Alt  string
}

type storyView struct {
	Headline    string
	Subtitle    string
	Article     template.HTML
	Extract     template.HTML
	ContinueURL string
	Image       *imageView
}

type pageView struct {
	Lang        string
	Title       string
	Description string
	Canonical   string
	Alternates  []alternate
	Languages   []langOption
	Available   bool
	Message     string
	Stories     []storyView
	Features    []string
	SourceURL   string
	AuthorName  string
	AuthorURL   string
	BuildTime   string
	ShowBadge   bool
	BadgeText   string
}

// LangHref 返回语言首页的站内路径：en 为 /，其他为 /{lang}。
func LangHref(code string) string {
	if code == "en" {
		return "/"
	}
	return "/" + code
}

// Render 渲染一个页面。about/404 忽略 featured；news 在 featured 为 nil 时渲染错误提示。
func (r *Renderer) Render(ctx context.Context, pt model.PageType, lang string, featured *model.Featured, opts Options) (model.Page, error) {
	tmpl, ok := r.tmpls[pt]
	if !ok {
		return model.Page{}, fmt.Errorf("unknown page type %q", pt)
	}
	if lang == "" {
		lang = "en"
	}
	v := r.baseView(pt, lang, opts)
	switch pt {
	case model.PageNews:
		v.Message = unavailable
		if featured != nil {
			v.Available = true
			v.Stories = make([]storyView, 0, len(featured.News))
			for _, s := range featured.News {
				v.Stories = append(v.Stories, r.story(ctx, lang, s))
			}
		}
	case model.PageAbout:
		v.Features = r.features()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		return model.Page{}, fmt.Errorf("execute %s template: %w", pt, err)
	}
	out := buf.String()
	if opts.Minify {
		out = minifyOrOriginal(r.minifier, lang, out)
	}
	return model.Page{Type: pt, Lang: lang, Path: model.PagePath(pt, lang), HTML: out}, nil
}

func (r *Renderer) baseView(pt model.PageType, lang string, opts Options) pageView {
	v := pageView{
		Lang:        lang,
		Title:       siteTitle,
		Description: tagline,
		SourceURL:   r.set.SourceURL,
		AuthorName:  r.set.AuthorName,
		AuthorURL:   r.set.AuthorURL,
		BuildTime:   r.now().UTC().Format("2006-01-02 15:04:05"),
		ShowBadge:   opts.ShowBadge && r.set.BadgeText != "",
		BadgeText:   r.set.BadgeText,
	}
	for _, e := range r.catalog.Entries() {
		v.Languages = append(v.Languages, langOption{
			Code:     e.Code,
			Name:     e.Name,
			Href:     LangHref(e.Code),
			Selected: e.Code == lang,
		})
	}
	switch pt {
	case model.PageNews:
		v.Canonical = r.langURL(lang)
		if r.set.SiteURL != "" {
			for _, code := range r.catalog.Codes() {
				v.Alternates = append(v.Alternates, alternate{Code: code, URL: r.langURL(code)})
			}
		}
	case model.PageAbout:
		v.Title = "About · " + siteTitle
		v.Canonical = r.absURL("about")
	case model.PageNotFound:
		v.Title = "Page not found · " + siteTitle
	}
	return v
}

// story 构建单条新闻视图，每个字段独立降级。
func (r *Renderer) story(ctx context.Context, lang string, s model.Story) storyView {
	var sv storyView
	headline, hasHeadline := s.Headline()
	if hasHeadline {
		sv.Headline = headline
	}
	if sub, ok := s.Subtitle(); ok {
		sv.Subtitle = sub
	}
	if a, ok := s.ArticleHTML(); ok {
		sv.Article = r.article(ctx, lang, a)
	}
	if ex, ok := s.ExtractHTML(); ok {
		sv.Extract = r.article(ctx, lang, ex)
	}
	if u, ok := s.ContinueReadingURL(); ok {
		sv.ContinueURL = u
	}
	if img, ok := s.Image(); ok {
		src := img.ThumbnailURL
		if r.images != nil {
			src = r.images.Optimize(ctx, src, lang)
		}
		alt := "Image"
		if hasHeadline {
			alt = "Image for " + headline
		}
		sv.Image = &imageView{Src: src, Href: img.OriginalURL, Alt: alt}
	}
	return sv
}

func (r *Renderer) features() []string {
	fs := []string{
		"A short summary of today's most notable news, straight from Wikipedia.",
		fmt.Sprintf("Available in %d languages.", r.catalog.Len()),
		"Works without JavaScript: every page is plain, static HTML.",
		"No ads, no tracking, no cookies.",
	}
	if r.set.OptimizeImages {
		fs = append(fs, imagesFeature)
	}
	return append(fs, "Rebuilt every day.")
}

func (r *Renderer) absURL(p string) string {
	if r.set.SiteURL == "" {
		return ""
	}
	return r.set.SiteURL + p
}

func (r *Renderer) langURL(code string) string {
	if code == "en" {
		return r.absURL("")
	}
	return r.absURL(code + "/")
}

func minifyOrOriginal(m Minifier, lang, doc string) string {
	out, err := m.Minify(doc)
	if err != nil {
		logx.ForLang(lang).Warnf("HTML 压缩失败，使用未压缩版本：%v", err)
		return doc
	}
	return out
}
