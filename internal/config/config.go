// 包 config 负责加载与校验应用配置（settings.yaml + .env + 环境变量），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-cursory/internal/langs"
)

// 仅保留构建需要的字段（KISS/YAGNI）。
type Config struct {
	SiteURL       string        `yaml:"SITE_URL" validate:"omitempty,url"`
	OutputDir     string        `yaml:"OUTPUT_DIR"`
	AssetsDir     string        `yaml:"ASSETS_DIR"`
	StylesheetURL string        `yaml:"STYLESHEET_URL" validate:"omitempty,url"`
	APIBase       string        `yaml:"API_BASE" validate:"omitempty,url"`
	WikiDomain    string        `yaml:"WIKI_DOMAIN" validate:"omitempty,hostname"`
	SourceURL     string        `yaml:"SOURCE_URL" validate:"omitempty,url"`
	Author        Author        `yaml:"AUTHOR"`
	Sitemap       bool          `yaml:"SITEMAP"`
	Minify        bool          `yaml:"MINIFY"`
	AnnotateLinks bool          `yaml:"ANNOTATE_LINKS"`
	CleanOutput   bool          `yaml:"CLEAN_OUTPUT"`
	RobotsTxt     string        `yaml:"ROBOTS_TXT"`
	Badge         Badge         `yaml:"BADGE"`
	Images        Images        `yaml:"IMAGES"`
	Languages     []langs.Entry `yaml:"LANGUAGES" validate:"dive"`
	LanguagesFile string        `yaml:"LANGUAGES_FILE"` // 非空时优先于 LANGUAGES
	Concurrency   Concurrency   `yaml:"CONCURRENCY"`
	Proxy         Proxy         `yaml:"PROXY"`
	UserAgent     string        `yaml:"USER_AGENT"`
	LogLevel      string        `yaml:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error none silent off"`
	LogFormat     string        `yaml:"LOG_FORMAT" validate:"omitempty,oneof=text json pretty"`
	LogLocale     string        `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor      string        `yaml:"LOG_COLOR" validate:"omitempty,oneof=auto always never"`

	// catalog 由 Validate 根据 Languages 构建，之后只读
	catalog *langs.Catalog
}

type Author struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url" validate:"omitempty,url"`
}

// Badge 为页脚的地区徽章。
type Badge struct {
	Show bool   `yaml:"show"`
	Text string `yaml:"text"`
}

type Images struct {
	// Optimize 关闭时直接引用上游缩略图
	Optimize bool `yaml:"optimize"`
	MaxWidth int  `yaml:"max_width" validate:"gte=0"`
	Quality  int  `yaml:"quality" validate:"gte=0,lte=100"`
}

type Concurrency struct {
	// Build 为同时构建的语言数，默认 1（严格串行）
	Build int `yaml:"build" validate:"gte=0"`
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

var validate = validator.New()

// Load 读取 .env（可选）与 YAML，叠加环境变量覆盖，再进行校验与默认值填充。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	c := Defaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Defaults 返回未读取文件时的默认配置；布尔开关的默认值只能在这里给出。
func Defaults() *Config {
	return &Config{
		Sitemap:     true,
		Minify:      true,
		CleanOutput: true,
		Badge:       Badge{Show: false, Text: "Made in India 🇮🇳"},
		Images:      Images{Optimize: true},
		RobotsTxt:   "User-agent: *\nAllow: /\n",
	}
}

// applyEnv 用 CURSORY_* 环境变量覆盖文件中的值。
func (c *Config) applyEnv() {
	if v := os.Getenv("CURSORY_SITE_URL"); v != "" {
		c.SiteURL = v
	}
	if v := os.Getenv("CURSORY_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("CURSORY_API_BASE"); v != "" {
		c.APIBase = v
	}
}

// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.SiteURL == "" {
		c.SiteURL = "https://cursory.pages.dev/"
	}
	if !strings.HasSuffix(c.SiteURL, "/") {
		c.SiteURL += "/"
	}
	if c.OutputDir == "" {
		c.OutputDir = "site"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.APIBase == "" {
		c.APIBase = "https://api.wikimedia.org"
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	if c.WikiDomain == "" {
		c.WikiDomain = "wikipedia.org"
	}
	if c.SourceURL == "" {
		c.SourceURL = "https://github.com/j-eo/cursory"
	}
	if c.Author.Name == "" {
		c.Author = Author{Name: "Jake Anto", URL: "https://itsjake.me/"}
	}
	if c.Images.MaxWidth == 0 {
		c.Images.MaxWidth = 400
	}
	if c.Images.Quality == 0 {
		c.Images.Quality = 80
	}
	if c.Concurrency.Build <= 0 {
		c.Concurrency.Build = 1
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	if c.LanguagesFile != "" {
		cat, err := langs.Load(c.LanguagesFile)
		if err != nil {
			return fmt.Errorf("LANGUAGES_FILE: %w", err)
		}
		c.catalog = cat
		c.Languages = cat.Entries()
		return nil
	}
	if len(c.Languages) == 0 {
		c.catalog = langs.Default()
		c.Languages = c.catalog.Entries()
		return nil
	}
	cat, err := langs.New(c.Languages)
	if err != nil {
		return fmt.Errorf("LANGUAGES: %w", err)
	}
	c.catalog = cat
	return nil
}

// Catalog 返回校验后的语言目录；未经 Validate 时回退到内置目录。
func (c *Config) Catalog() *langs.Catalog {
	if c.catalog == nil {
		return langs.Default()
	}
	return c.catalog
}
