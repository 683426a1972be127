package site

import (
	"sync"

	"go-cursory/internal/model"
)

// Results 收集各语言的构建结果；并发构建时由多个 goroutine 写入。
type Results struct {
	mu     sync.Mutex
	order  []string
	byLang map[string]model.LangResult // key: lang
}

// NewResults 以目录顺序初始化，Snapshot 时按该顺序输出。
func NewResults(order []string) *Results {
	return &Results{
		order:  append([]string(nil), order...),
		byLang: make(map[string]model.LangResult, len(order)),
	}
}

func (b *Results) Add(r model.LangResult) {
	if r.Lang == "" {
		return
	}
	b.mu.Lock()
	if _, known := b.byLang[r.Lang]; !known && !contains(b.order, r.Lang) {
		b.order = append(b.order, r.Lang)
	}
	b.byLang[r.Lang] = r
	b.mu.Unlock()
}

// Snapshot 返回副本，按目录顺序排列，未构建的语言不出现。
func (b *Results) Snapshot() []model.LangResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.LangResult, 0, len(b.byLang))
	for _, lang := range b.order {
		if r, ok := b.byLang[lang]; ok {
			out = append(out, r)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
