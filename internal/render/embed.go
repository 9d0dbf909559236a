package render

import (
	"fmt"
	htmlstd "html"
	"regexp"
	"strings"

	"github.com/inkwell/internal/video"
)

var (
	embedLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s]+)>?\s*$`)
	listIndexPattern = regexp.MustCompile(`^\d+\.\s+`)
)

// applyVideoEmbeds replaces lines consisting of a single video link with a
// player block. Fenced code, indented code, quotes and list items are left alone.
func applyVideoEmbeds(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fenceMarker := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := detectFenceMarker(trimmed); marker != "" {
			switch {
			case fenceMarker == "":
				fenceMarker = marker
			case strings.HasPrefix(trimmed, fenceMarker):
				fenceMarker = ""
			}
			continue
		}
		if fenceMarker != "" || isIndentedCodeLine(line) || shouldSkipEmbedLine(trimmed) {
			continue
		}

		match := embedLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embed, ok := video.Resolve(match[1])
		if !ok {
			continue
		}
		lines[i] = embedHTML(embed)
	}

	return strings.Join(lines, "\n")
}

func detectFenceMarker(line string) string {
	if strings.HasPrefix(line, "```") {
		return "```"
	}
	if strings.HasPrefix(line, "~~~") {
		return "~~~"
	}
	return ""
}

func isIndentedCodeLine(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func shouldSkipEmbedLine(line string) bool {
	switch {
	case line == "":
		return true
	case strings.HasPrefix(line, ">"):
		return true
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "+ "):
		return true
	}
	return listIndexPattern.MatchString(line)
}

func embedHTML(embed video.Embed) string {
	sandbox := ""
	if embed.Platform == "bilibili" {
		sandbox = ` sandbox="allow-scripts allow-same-origin allow-presentation"`
	}
	return fmt.Sprintf(
		`<div class="video-embed" data-video-embed="true" data-video-platform="%s" data-video-aspect="%s" data-video-source="%s">`+
			`<iframe src="%s" title="%s video player" loading="lazy" allow="accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin"%s></iframe>`+
			`</div>`,
		htmlstd.EscapeString(embed.Platform),
		htmlstd.EscapeString(embed.Aspect),
		htmlstd.EscapeString(embed.Source),
		htmlstd.EscapeString(embed.EmbedURL),
		htmlstd.EscapeString(embed.Platform),
		sandbox,
	)
}
