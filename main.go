// 命令行入口：
// - 解析 flags 与 settings.yaml（可选 .env）
// - 初始化日志与 HTTP 客户端
// - 构建全部语言页面，可选导出构建清单（-manifest）
// - 支持 sitemap 调试输出（-sitemap-only）
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go-cursory/internal/config"
	"go-cursory/internal/export"
	"go-cursory/internal/fetch"
	"go-cursory/internal/logx"
	"go-cursory/internal/site"
	"go-cursory/internal/sitemap"
)

func main() {
	var (
		configPath   = flag.String("config", "settings.yaml", "path to settings.yaml")
		dateFlag     = flag.String("date", "", "content date YYYY-MM-DD (UTC), default today")
		manifestPath = flag.String("manifest", "", "write build report json to this path")
		sitemapOnly  = flag.Bool("sitemap-only", false, "print sitemap.xml to stdout and exit")
	)
	flag.Parse()

	// 1) 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	date := time.Now().UTC()
	if *dateFlag != "" {
		d, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("parse -date: %v", err)
		}
		date = d
	}

	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	if *sitemapOnly {
		fmt.Print(sitemap.Build(cfg.SiteURL, cfg.Catalog(), date))
		return
	}

	// 3) 初始化 HTTP 客户端（含代理与 UA）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    25 * time.Second,
		UserAgent:  cfg.UserAgent,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	// 4) 构建；单个语言失败不影响退出码
	run := site.New(cfg, cl)
	run.SetDate(date)
	report, err := run.Run(context.Background())
	if err != nil {
		logx.Errorf("构建失败：%v", err)
		os.Exit(1)
	}

	if *manifestPath != "" {
		if err := export.ToJSONData(report, *manifestPath); err != nil {
			log.Fatalf("export manifest: %v", err)
		}
		logx.Infof("已导出 %s", *manifestPath)
	}
}
