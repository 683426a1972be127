// 包 sitemap 生成静态站点地图与 robots.txt 检查。
// 每个语言首页一条 <url>，并为目录中的每个语言（含自身）各带一条 hreflang 备用链接。
package sitemap

import (
	"encoding/xml"
	"strings"
	"time"

	"go-cursory/internal/langs"
)

const (
	nsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	nsXHTML   = "http://www.w3.org/1999/xhtml"
)

// URLSet 为 sitemap 根元素。
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr"`
	URLs    []URL    `xml:"url"`
}

// URL 为单条地址。
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
	Links      []Link `xml:"xhtml:link"`
}

// Link 为 hreflang 备用链接。
type Link struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// LangURL 返回语言首页的绝对地址：en 为站点根，其他为 {canonical}{lang}/。
func LangURL(canonical, code string) string {
	if !strings.HasSuffix(canonical, "/") {
		canonical += "/"
	}
	if code == "en" {
		return canonical
	}
	return canonical + code + "/"
}

// Model 构建 sitemap 结构：N 条语言地址（各带 N 条备用链接）+ 1 条 about。
func Model(canonical string, cat *langs.Catalog, now time.Time) URLSet {
	if !strings.HasSuffix(canonical, "/") {
		canonical += "/"
	}
	day := now.UTC().Format("2006-01-02")
	codes := cat.Codes()
	alternates := make([]Link, 0, len(codes))
	for _, code := range codes {
		alternates = append(alternates, Link{Rel: "alternate", HrefLang: code, Href: LangURL(canonical, code)})
	}
	set := URLSet{XMLNS: nsSitemap, XHTML: nsXHTML}
	for _, code := range codes {
		set.URLs = append(set.URLs, URL{
			Loc:        LangURL(canonical, code),
			LastMod:    day,
			ChangeFreq: "daily",
			Priority:   "1.0",
			Links:      alternates,
		})
	}
	set.URLs = append(set.URLs, URL{
		Loc:        canonical + "about",
		LastMod:    day,
		ChangeFreq: "monthly",
		Priority:   "0.5",
	})
	return set
}

// Build 返回 sitemap.xml 文本。只做字符串构建，没有失败路径。
func Build(canonical string, cat *langs.Catalog, now time.Time) string {
	b, err := xml.MarshalIndent(Model(canonical, cat, now), "", "  ")
	if err != nil {
		// 结构体均为字符串字段，不会出现编码错误
		panic(err)
	}
	return xml.Header + string(b) + "\n"
}
