// 包 imageopt 负责新闻配图的本地化：下载 → 等比缩小 → 编码为 WebP → 写入 {lang}/ 目录。
// 优化是尽力而为的：任何失败都返回原始地址，不影响页面构建。
package imageopt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"go-cursory/internal/fetch"
	"go-cursory/internal/logx"
)

// maxDownload 为单张图片下载上限。
const maxDownload = 16 << 20

// Optimizer 持有 HTTP 客户端与输出根目录；无共享计数器，可并发使用。
type Optimizer struct {
	fetch    *fetch.Client
	root     string
	maxWidth int
	quality  int
}

// Result 为一次优化的结果：失败时 Ref 为原始地址，Err 为原因。
type Result struct {
	Ref string
	Err error
}

// New 创建优化器。maxWidth<=0 表示不缩放，quality 取值 1..100。
func New(cl *fetch.Client, root string, maxWidth, quality int) *Optimizer {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Optimizer{fetch: cl, root: root, maxWidth: maxWidth, quality: quality}
}

// Optimize 返回可嵌入页面的图片引用：成功为 /{lang}/{id}.webp，失败为 src 本身。
func (o *Optimizer) Optimize(ctx context.Context, src, lang string) string {
	res := o.Process(ctx, src, lang)
	if res.Err != nil {
		logx.ForLang(lang).Warnf("图片优化失败，使用原图：%s 错误=%v", src, res.Err)
	}
	return res.Ref
}

// Process 执行下载与转码，并返回携带原始地址的结果。
func (o *Optimizer) Process(ctx context.Context, src, lang string) Result {
	ref, err := o.process(ctx, src, lang)
	if err != nil {
		return Result{Ref: src, Err: err}
	}
	return Result{Ref: ref}
}

func (o *Optimizer) process(ctx context.Context, src, lang string) (string, error) {
	if src == "" {
		return "", errors.New("empty image url")
	}
	if lang == "" || lang != filepath.Base(lang) {
		return "", fmt.Errorf("invalid language dir %q", lang)
	}
	data, err := o.fetch.Bytes(ctx, src, maxDownload)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	img = o.resize(img)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(o.quality)}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	dir := filepath.Join(o.root, lang)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	name := uuid.NewString() + ".webp"
	if err := writeAtomic(filepath.Join(dir, name), buf.Bytes()); err != nil {
		return "", err
	}
	return "/" + path.Join(lang, name), nil
}

// resize 等比缩小到 maxWidth（不放大），算法与图片代理保持一致（CatmullRom）。
func (o *Optimizer) resize(img image.Image) image.Image {
	b := img.Bounds()
	if o.maxWidth <= 0 || b.Dx() <= o.maxWidth {
		return img
	}
	h := b.Dy() * o.maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, o.maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// writeAtomic 先写临时文件再改名，失败时清理临时文件，目录中不会残留半成品。
func writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".img-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}
