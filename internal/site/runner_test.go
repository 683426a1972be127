package site

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cursory/internal/config"
	"go-cursory/internal/fetch"
	"go-cursory/internal/langs"
	"go-cursory/internal/logx"
	"go-cursory/internal/model"
	"go-cursory/internal/render"
)

var day = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

// upstream 模拟内容接口与样式表：en 返回 404，fr 返回一条仅有标题的新闻，de 返回非法 JSON。
func upstream(t *testing.T, cssStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed/v1/wikipedia/en/featured/2024/03/08", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/feed/v1/wikipedia/fr/featured/2024/03/08", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"news":[{"story":"<b>s</b>","links":[{"titles":{"normalized":"Test"}}]}]}`))
	})
	mux.HandleFunc("/feed/v1/wikipedia/de/featured/2024/03/08", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"news":[`))
	})
	mux.HandleFunc("/simple.css", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(cssStatus)
		_, _ = w.Write([]byte("body{margin:0}"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newRunner(t *testing.T, srv *httptest.Server, entries []langs.Entry, build int) (*Runner, *config.Config) {
	t.Helper()
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "favicon.ico"), []byte("ico"), 0o644))
	cfg := &config.Config{
		SiteURL:       "https://cursory.example/",
		OutputDir:     filepath.Join(t.TempDir(), "site"),
		AssetsDir:     assets,
		StylesheetURL: srv.URL + "/simple.css",
		APIBase:       srv.URL,
		Sitemap:       true,
		CleanOutput:   true,
		RobotsTxt:     "User-agent: *\nAllow: /\n",
		Languages:     entries,
		Concurrency:   config.Concurrency{Build: build},
	}
	require.NoError(t, cfg.Validate())
	cl, err := fetch.New(fetch.Options{Timeout: 3 * time.Second})
	require.NoError(t, err)
	run := New(cfg, cl)
	run.SetDate(day)
	return run, cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err, path)
	return string(b)
}

func TestRun_EndToEnd(t *testing.T) {
	srv := upstream(t, http.StatusOK)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "en", Name: "English"}, {Code: "fr", Name: "French"}}, 1)

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	out := cfg.OutputDir

	fr := readFile(t, filepath.Join(out, "fr", "index.html"))
	assert.Equal(t, 1, strings.Count(fr, "Test"))
	assert.NotContains(t, fr, "<img")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fr))
	require.NoError(t, err)
	opt := doc.Find(`select option[value="/"]`)
	require.Equal(t, 1, opt.Length())
	assert.Equal(t, "English", strings.TrimSpace(opt.Text()))

	en := readFile(t, filepath.Join(out, "index.html"))
	assert.Contains(t, en, "There was an error fetching the news. Please try again later.")

	for _, name := range []string{"about.html", "404.html", "sitemap.xml", "robots.txt", "simple.css", "favicon.ico"} {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Equal(t, "body{margin:0}", readFile(t, filepath.Join(out, "simple.css")))
	assert.Contains(t, readFile(t, filepath.Join(out, "robots.txt")), "Sitemap: https://cursory.example/sitemap.xml")
	assert.Contains(t, readFile(t, filepath.Join(out, "sitemap.xml")), "<loc>https://cursory.example/fr/</loc>")

	require.Len(t, report.Languages, 2)
	assert.Equal(t, "en", report.Languages[0].Lang)
	assert.False(t, report.Languages[0].Available)
	assert.Equal(t, "fr", report.Languages[1].Lang)
	assert.Equal(t, 1, report.Languages[1].Stories)
	assert.Equal(t, 2, report.Stats.LanguagesBuilt)
	assert.Zero(t, report.Stats.LanguagesSkipped)
}

func TestRun_CleansStaleOutput(t *testing.T) {
	srv := upstream(t, http.StatusOK)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "en"}}, 1)
	stale := filepath.Join(cfg.OutputDir, "old", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	_, err := run.Run(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_LanguageFailureIsIsolated(t *testing.T) {
	srv := upstream(t, http.StatusOK)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "en"}, {Code: "de"}, {Code: "fr"}}, 1)

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Languages, 3)
	assert.NotEmpty(t, report.Languages[1].Error)
	assert.Equal(t, 2, report.Stats.LanguagesBuilt)
	assert.Equal(t, 1, report.Stats.LanguagesSkipped)

	_, err = os.Stat(filepath.Join(cfg.OutputDir, "de", "index.html"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "fr", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "about.html"))
	assert.NoError(t, err)
}

func TestRun_PanicIsIsolated(t *testing.T) {
	srv := upstream(t, http.StatusOK)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "en"}, {Code: "fr"}}, 1)
	cfg.Minify = true
	run.SetMinifier(render.MinifierFunc(func(doc string) (string, error) {
		if strings.Contains(doc, `<html lang="fr"`) {
			panic("boom")
		}
		return doc, nil
	}))

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Languages, 2)
	assert.Empty(t, report.Languages[0].Error)
	assert.Contains(t, report.Languages[1].Error, "boom")
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "index.html"))
	assert.NoError(t, err)
}

func TestRun_MinifyFailureWritesOriginal(t *testing.T) {
	var buf bytes.Buffer
	logx.InitWriter(&buf, "info", "pretty", "en", "never")
	t.Cleanup(func() { logx.InitWriter(os.Stdout, "off", "pretty", "en", "never") })

	srv := upstream(t, http.StatusOK)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "fr"}}, 1)
	cfg.Minify = true
	run.SetMinifier(render.MinifierFunc(func(string) (string, error) {
		return "", assert.AnError
	}))

	report, err := run.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Languages[0].Error)
	fr := readFile(t, filepath.Join(cfg.OutputDir, "fr", "index.html"))
	assert.Contains(t, fr, "Test")
	assert.Contains(t, buf.String(), "[WARN] [fr] HTML")
}

func TestRun_StylesheetFailureAborts(t *testing.T) {
	srv := upstream(t, http.StatusInternalServerError)
	run, cfg := newRunner(t, srv, []langs.Entry{{Code: "en"}}, 1)

	_, err := run.Run(context.Background())
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "index.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ConcurrentBuild(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/feed/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"news":[]}`))
	})
	mux.HandleFunc("/simple.css", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a{}"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	entries := []langs.Entry{{Code: "en"}, {Code: "fr"}, {Code: "de"}, {Code: "es"}, {Code: "it"}}
	run, cfg := newRunner(t, srv, entries, 3)
	report, err := run.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(len(entries)), hits.Load())
	assert.Equal(t, len(entries), report.Stats.LanguagesBuilt)
	for i, e := range entries {
		assert.Equal(t, e.Code, report.Languages[i].Lang)
		_, err := os.Stat(filepath.Join(cfg.OutputDir, model.PagePath(model.PageNews, e.Code)))
		assert.NoError(t, err, e.Code)
	}
}
