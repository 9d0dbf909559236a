// Package render turns post markdown into sanitised HTML.
package render

import (
	"bytes"
	htmlstd "html"
	"html/template"
	"math"
	"strings"

	"github.com/inkwell/internal/video"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	contentPolicy = buildContentSanitizer()
	textPolicy    = bluemonday.StrictPolicy()
)

// 视频嵌入以原始 HTML 插入 markdown，因此渲染器需要 WithUnsafe，安全性由 bluemonday 兜底。
func buildContentSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-embed", "data-video-platform", "data-video-aspect", "data-video-source").OnElements("div")
	policy.AllowAttrs("src").Matching(video.EmbedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy", "sandbox").OnElements("iframe")
	return policy
}

// Markdown renders post content, expanding standalone video links into players.
func Markdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(content)), &buf); err != nil {
		return "", err
	}
	return template.HTML(contentPolicy.SanitizeBytes(buf.Bytes())), nil
}

// PlainText strips every tag and returns unescaped text.
func PlainText(input string) string {
	return htmlstd.UnescapeString(textPolicy.Sanitize(input))
}

// HasMarkup reports whether input would lose anything to PlainText: tags,
// entities, or a bare "<" the HTML tokenizer reads as the start of a tag.
// Reader text such as comments is rejected rather than rewritten.
func HasMarkup(input string) bool {
	return PlainText(input) != input
}

// ReadingTime 估算阅读分钟数：中文按 300 字/分钟，其余按 200 词/分钟。
func ReadingTime(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}

	cjk := 0
	words := 0
	inWord := false
	for _, r := range content {
		switch {
		case isCJK(r):
			cjk++
			inWord = false
		case r == ' ' || r == '\n' || r == '\t' || r == '\r':
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}

	minutes := float64(cjk)/300 + float64(words)/200
	return int(math.Max(1, math.Ceil(minutes)))
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF) || (r >= 0x3040 && r <= 0x30FF) || (r >= 0xAC00 && r <= 0xD7AF)
}
