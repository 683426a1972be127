package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-cursory/internal/model"
)

// Summarize 根据各语言结果计算统计信息。
func Summarize(results []model.LangResult, seconds float64, builtAt time.Time) model.Report {
	st := model.Stats{
		LanguagesTotal: len(results),
		Seconds:        seconds,
		BuiltAt:        builtAt.UTC(),
	}
	for _, r := range results {
		if r.Error != "" {
			st.LanguagesSkipped++
			continue
		}
		st.LanguagesBuilt++
		st.StoriesTotal += r.Stories
	}
	return model.Report{Stats: st, Languages: results}
}

// ToJSONData 将构建清单写成带缩进的 JSON。
func ToJSONData(report model.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}
