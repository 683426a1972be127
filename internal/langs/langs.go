// 包 langs 提供语言目录：语言代码 → 展示名称的有序映射。
// 目录在启动时构建一次，之后只读，并显式传给选择器、渲染与站点地图。
package langs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// Entry 为目录中的一项。
type Entry struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Catalog 为不可变的语言目录，保留配置中的顺序。
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// defaultEntries 为内置目录，en 固定在首位。
var defaultEntries = []Entry{
	{Code: "en", Name: "🇺🇸 English"},
	{Code: "bn", Name: "🇧🇩 বাংলা"},
	{Code: "de", Name: "🇩🇪 Deutsch"},
	{Code: "es", Name: "🇪🇸 Español"},
	{Code: "fi", Name: "🇫🇮 Suomi"},
	{Code: "fr", Name: "🇫🇷 Français"},
	{Code: "he", Name: "🇮🇱 עברית"},
	{Code: "it", Name: "🇮🇹 Italiano"},
	{Code: "ja", Name: "🇯🇵 日本語"},
	{Code: "nl", Name: "🇳🇱 Nederlands"},
	{Code: "pl", Name: "🇵🇱 Polski"},
	{Code: "pt", Name: "🇵🇹 Português"},
	{Code: "ru", Name: "🇷🇺 Русский"},
	{Code: "sv", Name: "🇸🇪 Svenska"},
	{Code: "tr", Name: "🇹🇷 Türkçe"},
	{Code: "uk", Name: "🇺🇦 Українська"},
	{Code: "vi", Name: "🇻🇳 Tiếng Việt"},
	{Code: "zh", Name: "🇨🇳 中文"},
}

// Default 返回内置目录。
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// New 校验并构建目录：
// - 代码非空且不可重复（不区分大小写）
// - 名称为空时使用该语言的本地名称；simple 等非 BCP 47 代码回退为代码本身
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("language catalog is empty")
	}
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		code := strings.ToLower(strings.TrimSpace(e.Code))
		if code == "" {
			return nil, errors.New("language code must not be empty")
		}
		if _, dup := c.index[code]; dup {
			return nil, fmt.Errorf("duplicate language code %q", code)
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			if tag, err := language.Parse(code); err == nil {
				name = display.Self.Name(tag)
			}
		}
		if name == "" {
			name = code
		}
		c.index[code] = len(c.entries)
		c.entries = append(c.entries, Entry{Code: code, Name: name})
	}
	return c, nil
}

// Load 从 YAML 文件加载目录（列表形式：- code: fr / name: Français）。
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open languages %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read languages %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal languages %s: %w", path, err)
	}
	return New(entries)
}

// Entries 返回目录副本。
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Codes 按目录顺序返回语言代码。
func (c *Catalog) Codes() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Code)
	}
	return out
}

// Len 返回语言数量。
func (c *Catalog) Len() int { return len(c.entries) }

// Has 判断语言是否在目录中（不区分大小写）。
func (c *Catalog) Has(code string) bool {
	_, ok := c.index[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Name 按代码获取展示名称（不区分大小写），不存在时返回代码本身。
func (c *Catalog) Name(code string) string {
	if i, ok := c.index[strings.ToLower(strings.TrimSpace(code))]; ok {
		return c.entries[i].Name
	}
	return code
}
