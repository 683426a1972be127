// 包 site 负责构建流程编排：
// - 清理输出目录、复制静态资源、下载样式表（失败即终止）
// - 写入 sitemap.xml 与 robots.txt
// - 逐语言抓取并渲染首页，单个语言失败只记录并跳过
// - 渲染 about 与 404 页面
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/otiai10/copy"

	"go-cursory/internal/config"
	"go-cursory/internal/export"
	"go-cursory/internal/fetch"
	"go-cursory/internal/imageopt"
	"go-cursory/internal/langs"
	"go-cursory/internal/logx"
	"go-cursory/internal/model"
	"go-cursory/internal/render"
	"go-cursory/internal/sitemap"
	"go-cursory/internal/wiki"
)

// stylesheetFile 为本地托管的样式表文件名，与模板中的链接一致。
const stylesheetFile = "simple.css"

// Runner 构建执行器，持有配置/语言目录/HTTP 客户端/渲染器。
type Runner struct {
	cfg     *config.Config
	catalog *langs.Catalog
	fetch   *fetch.Client
	wiki    *wiki.Client
	render  *render.Renderer
	date    time.Time
	buf     *Results
}

// New 创建 Runner；cfg 需已通过 Validate。
func New(cfg *config.Config, cl *fetch.Client) *Runner {
	cat := cfg.Catalog()
	wc := wiki.New(cl, cfg.APIBase)
	rd := render.New(cat, render.Settings{
		SiteURL:    cfg.SiteURL,
		SourceURL:  cfg.SourceURL,
		AuthorName: cfg.Author.Name,
		AuthorURL:  cfg.Author.URL,
		BadgeText:  cfg.Badge.Text,
		WikiDomain: cfg.WikiDomain,
		Annotate:   cfg.AnnotateLinks,

		OptimizeImages: cfg.Images.Optimize,
	})
	if cfg.Images.Optimize {
		rd.SetImageOptimizer(imageopt.New(cl, cfg.OutputDir, cfg.Images.MaxWidth, cfg.Images.Quality))
	}
	if cfg.AnnotateLinks {
		rd.SetDescriber(wc)
	}
	return &Runner{
		cfg:     cfg,
		catalog: cat,
		fetch:   cl,
		wiki:    wc,
		render:  rd,
		date:    time.Now().UTC(),
		buf:     NewResults(cat.Codes()),
	}
}

// SetDate 指定抓取内容的日期（默认为启动时的 UTC 当天）。
func (r *Runner) SetDate(d time.Time) { r.date = d.UTC() }

// SetMinifier 替换页面压缩器。
func (r *Runner) SetMinifier(m render.Minifier) { r.render.SetMinifier(m) }

// Run 执行一次完整构建：准备输出目录 → 逐语言构建 → about/404。
// 只有准备阶段的错误会返回；语言级错误体现在报告中。
func (r *Runner) Run(ctx context.Context) (model.Report, error) {
	start := time.Now()
	if err := r.prepare(ctx); err != nil {
		return model.Report{}, err
	}

	codes := r.catalog.Codes()
	logx.Infof("开始构建：语言=%d 日期=%s 并发=%d", len(codes), r.date.Format("2006-01-02"), r.cfg.Concurrency.Build)
	sem := make(chan struct{}, max(1, r.cfg.Concurrency.Build))
	var wg sync.WaitGroup
	for _, code := range codes {
		code := code
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			r.buf.Add(r.buildLang(ctx, code))
		}()
	}
	wg.Wait()

	for _, pt := range []model.PageType{model.PageAbout, model.PageNotFound} {
		if err := r.buildStatic(ctx, pt); err != nil {
			logx.Errorf("构建 %s 页面失败：%v", pt, err)
		}
	}

	seconds := logx.Since(start)
	report := export.Summarize(r.buf.Snapshot(), seconds, time.Now())
	logx.Infof("构建完成：成功=%d 跳过=%d 新闻=%d 用时 %.3fs",
		report.Stats.LanguagesBuilt, report.Stats.LanguagesSkipped, report.Stats.StoriesTotal, seconds)
	return report, nil
}

func (r *Runner) options() render.Options {
	return render.Options{Minify: r.cfg.Minify, ShowBadge: r.cfg.Badge.Show}
}

// buildLang 构建单个语言首页：目录 → 抓取 → 渲染 → 写入。
// 任何错误（含 panic）只影响当前语言。
func (r *Runner) buildLang(ctx context.Context, code string) (res model.LangResult) {
	start := time.Now()
	res.Lang = code
	lg := logx.ForLang(code)
	defer func() {
		if p := recover(); p != nil {
			res.Error = fmt.Sprintf("panic: %v", p)
		}
		res.Seconds = logx.Since(start)
		if res.Error != "" {
			lg.Warnf("已跳过：%s", res.Error)
			return
		}
		lg.Infof("已构建 %s：新闻=%d 用时 %.3fs", res.Path, res.Stories, res.Seconds)
	}()

	dir := filepath.Join(r.cfg.OutputDir, code)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Error = fmt.Sprintf("mkdir %s: %v", dir, err)
		return res
	}
	featured, err := r.wiki.Featured(ctx, code, r.date)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if featured == nil {
		lg.Warnf("上游暂无内容，渲染提示页")
	} else {
		res.Available = true
		res.Stories = len(featured.News)
	}
	page, err := r.render.Render(ctx, model.PageNews, code, featured, r.options())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if _, err := export.WritePage(r.cfg.OutputDir, page); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Path = page.Path
	return res
}

// buildStatic 渲染与语言无关的页面，选择器默认选中 en。
func (r *Runner) buildStatic(ctx context.Context, pt model.PageType) error {
	page, err := r.render.Render(ctx, pt, "en", nil, r.options())
	if err != nil {
		return err
	}
	if _, err := export.WritePage(r.cfg.OutputDir, page); err != nil {
		return err
	}
	logx.Infof("已构建 %s", page.Path)
	return nil
}

// prepare 为全局准备步骤，任何失败都会终止构建。
func (r *Runner) prepare(ctx context.Context) error {
	out := r.cfg.OutputDir
	if r.cfg.CleanOutput {
		start := time.Now()
		if err := os.RemoveAll(out); err != nil {
			logx.Warnf("清理输出目录失败：%s 错误=%v", out, err)
		} else {
			logx.Infof("已清理 %s 用时 %.3fs", out, logx.Since(start))
		}
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", out, err)
	}
	if err := r.copyAssets(); err != nil {
		return err
	}
	if err := r.downloadStylesheet(ctx); err != nil {
		return err
	}
	if r.cfg.Sitemap {
		p := filepath.Join(out, "sitemap.xml")
		if err := export.WriteFile(p, sitemap.Build(r.cfg.SiteURL, r.catalog, r.date)); err != nil {
			return err
		}
		logx.Infof("已生成 sitemap.xml：%d 个语言", r.catalog.Len())
	}
	if r.cfg.RobotsTxt != "" {
		content, warns := sitemap.Robots(r.cfg.RobotsTxt, r.cfg.SiteURL, r.cfg.Sitemap)
		for _, w := range warns {
			logx.Warnf("%s", w)
		}
		if err := export.WriteFile(filepath.Join(out, "robots.txt"), content); err != nil {
			return err
		}
	}
	return nil
}

// copyAssets 将静态资源目录整体复制到输出根目录；目录不存在时仅提示。
func (r *Runner) copyAssets() error {
	src := r.cfg.AssetsDir
	if src == "" {
		return nil
	}
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		logx.Warnf("静态资源目录不存在，跳过复制：%s", src)
		return nil
	}
	start := time.Now()
	if err := copy.Copy(src, r.cfg.OutputDir); err != nil {
		return fmt.Errorf("copy assets %s: %w", src, err)
	}
	logx.Infof("已复制静态资源 用时 %.3fs", logx.Since(start))
	return nil
}

// downloadStylesheet 自托管样式表，避免页面依赖外部 CDN。
func (r *Runner) downloadStylesheet(ctx context.Context) error {
	if r.cfg.StylesheetURL == "" {
		return nil
	}
	start := time.Now()
	b, err := r.fetch.Bytes(ctx, r.cfg.StylesheetURL, 4<<20)
	if err != nil {
		return fmt.Errorf("download stylesheet: %w", err)
	}
	if err := export.WriteFile(filepath.Join(r.cfg.OutputDir, stylesheetFile), string(b)); err != nil {
		return err
	}
	logx.Infof("已下载 %s 用时 %.3fs", stylesheetFile, logx.Since(start))
	return nil
}
