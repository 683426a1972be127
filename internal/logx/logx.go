// 包 logx 是对标准库 slog 的薄封装：
// - 级别/格式/语言/颜色可配置，输出目标可替换（测试时捕获构建日志）
// - pretty 格式输出中英文等级标签，lang 属性渲染为 [fr] 前缀
// - 构建流程中的所有降级（图片/压缩/跳过语言）统一走 Warnf
package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// LangKey 为语言属性名；pretty 输出中作为消息前缀而非 k=v。
const LangKey = "lang"

// levelOff 高于任何实际等级，用于静默。
const levelOff slog.Level = 100

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
	"none":    levelOff,
	"silent":  levelOff,
	"off":     levelOff,
}

// Init 初始化全局日志器，输出到标准输出。
func Init(level, format, locale, colorMode string) {
	InitWriter(os.Stdout, level, format, locale, colorMode)
}

// InitWriter 与 Init 相同，但允许指定输出目标。
func InitWriter(w io.Writer, level, format, locale, colorMode string) {
	if w == nil {
		w = os.Stdout
	}
	lv := ParseLevel(level)
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	case "text":
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	default:
		h = NewPrettyHandler(w, lv, locale, colorMode)
	}
	slog.SetDefault(slog.New(h))
}

// ParseLevel 解析配置中的级别，未知值按 info 处理。
func ParseLevel(s string) slog.Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return slog.LevelInfo
}

// Since 返回自 start 起经过的秒数（毫秒精度）。
func Since(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds()) / 1000
}

func logf(attrs []any, l slog.Level, format string, v ...any) {
	ctx := context.Background()
	lg := slog.Default()
	if !lg.Enabled(ctx, l) {
		return
	}
	lg.Log(ctx, l, fmt.Sprintf(format, v...), attrs...)
}

func Debugf(format string, v ...any) { logf(nil, slog.LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(nil, slog.LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(nil, slog.LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(nil, slog.LevelError, format, v...) }

// Lang 为绑定到单个语言的日志器，并发构建时用于区分输出来源。
type Lang struct {
	attrs []any
}

// ForLang 返回带 lang 属性的日志器。
func ForLang(code string) Lang {
	return Lang{attrs: []any{slog.String(LangKey, code)}}
}

func (l Lang) Debugf(format string, v ...any) { logf(l.attrs, slog.LevelDebug, format, v...) }
func (l Lang) Infof(format string, v ...any)  { logf(l.attrs, slog.LevelInfo, format, v...) }
func (l Lang) Warnf(format string, v ...any)  { logf(l.attrs, slog.LevelWarn, format, v...) }
func (l Lang) Errorf(format string, v ...any) { logf(l.attrs, slog.LevelError, format, v...) }

// PrettyHandler 面向终端的单行输出：时间 等级 [lang] 消息 k=v...
type PrettyHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Level
	labels labelSet
	color  bool
	lang   string
	attrs  []slog.Attr
	group  string
}

// NewPrettyHandler 创建 PrettyHandler，locale 以 zh 开头（或为空）时使用中文标签。
func NewPrettyHandler(w io.Writer, lv slog.Leveler, locale, colorMode string) slog.Handler {
	if w == nil {
		w = os.Stdout
	}
	return &PrettyHandler{
		w:      w,
		mu:     &sync.Mutex{},
		level:  lv.Level(),
		labels: labelsFor(locale),
		color:  shouldColor(w, colorMode),
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.level < levelOff && l >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	lang := h.lang
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == LangKey && h.group == "" {
			lang = a.Value.String()
			return true
		}
		attrs = append(attrs, h.qualify(a))
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(ts.Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(h.label(r.Level))
	buf.WriteByte(' ')
	if lang != "" {
		buf.WriteString("[" + lang + "] ")
	}
	buf.WriteString(r.Message)
	for _, a := range attrs {
		fmt.Fprintf(&buf, " %s=%s", a.Key, a.Value.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if a.Key == LangKey && h.group == "" {
			cp.lang = a.Value.String()
			continue
		}
		cp.attrs = append(cp.attrs, h.qualify(a))
	}
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.group = strings.TrimPrefix(h.group+"."+name, ".")
	return &cp
}

func (h *PrettyHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *PrettyHandler) label(l slog.Level) string {
	s := h.labels.of(l)
	if !h.color {
		return s
	}
	return "\x1b[" + colorCode(l) + "m" + s + "\x1b[0m"
}

// labelSet 按 debug/info/warn/error 顺序存放等级标签。
type labelSet [4]string

var (
	labelsZH = labelSet{"[调试]", "[信息]", "[警告]", "[错误]"}
	labelsEN = labelSet{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"}
)

func labelsFor(locale string) labelSet {
	loc := strings.ToLower(strings.TrimSpace(locale))
	if loc == "" || strings.HasPrefix(loc, "zh") {
		return labelsZH
	}
	return labelsEN
}

func (s labelSet) of(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return s[0]
	case slog.LevelInfo:
		return s[1]
	case slog.LevelWarn:
		return s[2]
	case slog.LevelError:
		return s[3]
	}
	return fmt.Sprintf("[L%d]", l)
}

func colorCode(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "31"
	case l >= slog.LevelWarn:
		return "33"
	case l >= slog.LevelInfo:
		return "36"
	}
	return "90"
}

// shouldColor 遵循 LOG_COLOR 与 NO_COLOR；auto 时仅对终端着色。
func shouldColor(w io.Writer, mode string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "auto", "":
		f, ok := w.(*os.File)
		if !ok {
			return false
		}
		fi, err := f.Stat()
		return err == nil && fi.Mode()&os.ModeCharDevice != 0
	}
	return false
}
