package sitemap

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cursory/internal/langs"
)

var now = time.Date(2024, 3, 8, 1, 0, 0, 0, time.UTC)

// parsed 用于反序列化校验（命名空间前缀在解析时会被拆分）。
type parsed struct {
	URLs []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
		Links   []struct {
			Rel      string `xml:"rel,attr"`
			HrefLang string `xml:"hreflang,attr"`
			Href     string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"url"`
}

func TestBuild_EntriesAndAlternates(t *testing.T) {
	cat := langs.Default()
	n := cat.Len()
	out := Build("https://cursory.example", cat, now)
	require.True(t, strings.HasPrefix(out, xml.Header))

	var p parsed
	require.NoError(t, xml.Unmarshal([]byte(out), &p))
	require.Len(t, p.URLs, n+1)

	for i, code := range cat.Codes() {
		u := p.URLs[i]
		assert.Equal(t, LangURL("https://cursory.example/", code), u.Loc)
		assert.Equal(t, "2024-03-08", u.LastMod)
		// 备用链接包含自身：每条语言地址都有 N 条
		require.Len(t, u.Links, n, code)
		self := 0
		for _, l := range u.Links {
			assert.Equal(t, "alternate", l.Rel)
			if l.HrefLang == code {
				self++
				assert.Equal(t, u.Loc, l.Href)
			}
		}
		assert.Equal(t, 1, self, code)
	}
	about := p.URLs[n]
	assert.Equal(t, "https://cursory.example/about", about.Loc)
	assert.Empty(t, about.Links)
}

func TestBuild_RootForEnglish(t *testing.T) {
	cat, err := langs.New([]langs.Entry{{Code: "en"}, {Code: "fr"}})
	require.NoError(t, err)
	out := Build("https://cursory.example/", cat, now)
	assert.Contains(t, out, "<loc>https://cursory.example/</loc>")
	assert.Contains(t, out, "<loc>https://cursory.example/fr/</loc>")
	assert.Contains(t, out, `<xhtml:link rel="alternate" hreflang="fr" href="https://cursory.example/fr/"></xhtml:link>`)
	assert.Contains(t, out, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Equal(t, 3, strings.Count(out, "<url>"))
}

func TestBuild_Deterministic(t *testing.T) {
	cat := langs.Default()
	assert.Equal(t, Build("https://a/", cat, now), Build("https://a/", cat, now))
}

func TestRobots(t *testing.T) {
	out, warns := Robots("User-agent: *\nAllow: /", "https://cursory.example", true)
	assert.Empty(t, warns)
	assert.Contains(t, out, "Sitemap: https://cursory.example/sitemap.xml\n")

	out, warns = Robots("User-agent: *\nAllow: /\nSitemap: https://x/s.xml\n", "https://cursory.example/", true)
	assert.Empty(t, warns)
	assert.Equal(t, 1, strings.Count(out, "Sitemap:"))

	out, warns = Robots("User-agent: *\nDisallow: /\n", "https://cursory.example/", false)
	assert.NotEmpty(t, warns)
	assert.NotContains(t, out, "Sitemap:")
}
