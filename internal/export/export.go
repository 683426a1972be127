// 包 export 负责构建产物落盘：页面 HTML 与构建清单 build.json。
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-cursory/internal/model"
)

// WritePage 将页面写入 root 下的 page.Path（整体覆盖，必要时创建目录）。
// 非法 UTF-8 字节被丢弃而不是导致写入失败。
func WritePage(root string, page model.Page) (string, error) {
	if page.Path == "" {
		return "", fmt.Errorf("page %s/%s has no path", page.Type, page.Lang)
	}
	dst := filepath.Join(root, filepath.FromSlash(page.Path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	if err := WriteFile(dst, page.HTML); err != nil {
		return "", err
	}
	return dst, nil
}

// WriteFile 以 UTF-8 写入文本文件（覆盖）。
func WriteFile(path, text string) error {
	text = strings.ToValidUTF8(text, "")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
