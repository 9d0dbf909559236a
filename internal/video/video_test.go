package video

import (
	"strings"
	"testing"
)

func TestIsValidURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "youtube watch", raw: "https://www.youtube.com/watch?v=abc123", want: true},
		{name: "youtube short link", raw: "https://youtu.be/abc123", want: true},
		{name: "vimeo", raw: "https://vimeo.com/76979871", want: true},
		{name: "tiktok", raw: "https://www.tiktok.com/@creator/video/7234567890", want: true},
		{name: "facebook", raw: "https://www.facebook.com/page/videos/123456/", want: true},
		{name: "instagram", raw: "https://www.instagram.com/reel/Cabc123/", want: true},
		{name: "bilibili", raw: "https://www.bilibili.com/video/BV1x5411c7mD", want: true},
		{name: "schemeless youtube", raw: "youtube.com/watch?v=abc123", want: true},
		{name: "empty", raw: "", want: false},
		{name: "foreign host", raw: "https://example.com/video.mp4", want: false},
		{name: "lookalike domain", raw: "https://notyoutube.com/watch?v=abc123", want: false},
		{name: "host in query only", raw: "https://evil.example/?next=youtube.com", want: false},
		{name: "ftp scheme", raw: "ftp://youtube.com/watch?v=abc123", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValidURL(tt.raw); got != tt.want {
				t.Fatalf("IsValidURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToEmbedURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "youtube watch", raw: "https://www.youtube.com/watch?v=abc123", want: "https://www.youtube.com/embed/abc123"},
		{name: "youtube short link", raw: "https://youtu.be/abc123", want: "https://www.youtube.com/embed/abc123"},
		{name: "youtube shorts", raw: "https://youtube.com/shorts/abc123", want: "https://www.youtube.com/embed/abc123"},
		{name: "youtube start time", raw: "https://www.youtube.com/watch?v=abc123&t=1m2s", want: "https://www.youtube.com/embed/abc123?start=62"},
		{name: "youtube embed unchanged", raw: "https://www.youtube.com/embed/abc123?rel=0", want: "https://www.youtube.com/embed/abc123?rel=0"},
		{name: "vimeo", raw: "https://vimeo.com/76979871", want: "https://player.vimeo.com/video/76979871"},
		{name: "vimeo channel", raw: "https://vimeo.com/channels/staffpicks/76979871", want: "https://player.vimeo.com/video/76979871"},
		{name: "vimeo player unchanged", raw: "https://player.vimeo.com/video/1", want: "https://player.vimeo.com/video/1"},
		{name: "tiktok", raw: "https://www.tiktok.com/@creator/video/7234567890", want: "https://www.tiktok.com/embed/v2/7234567890"},
		{name: "instagram post", raw: "https://www.instagram.com/p/Cabc123/", want: "https://www.instagram.com/p/Cabc123/embed"},
		{name: "douyin modal id", raw: "douyin.com/modal_id=7602245594001771802", want: "https://www.iesdouyin.com/share/video/7602245594001771802"},
		{name: "youtube channel unchanged", raw: "https://www.youtube.com/@golang", want: "https://www.youtube.com/@golang"},
		{name: "foreign unchanged", raw: "https://example.com/v/1", want: "https://example.com/v/1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ToEmbedURL(tt.raw); got != tt.want {
				t.Fatalf("ToEmbedURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToEmbedURLFacebookEscapesSource(t *testing.T) {
	got := ToEmbedURL("https://www.facebook.com/page/videos/123456/")
	if !strings.HasPrefix(got, "https://www.facebook.com/plugins/video.php?") {
		t.Fatalf("expected facebook plugin url, got %q", got)
	}
	if !strings.Contains(got, "href=https%3A%2F%2Fwww.facebook.com%2Fpage%2Fvideos%2F123456%2F") {
		t.Fatalf("expected escaped href, got %q", got)
	}
	if !EmbedSrcPattern.MatchString(got) {
		t.Fatalf("embed src pattern should accept %q", got)
	}
}

func TestResolveAspectAndCategory(t *testing.T) {
	embed, ok := Resolve("https://www.tiktok.com/@creator/video/7234567890")
	if !ok {
		t.Fatalf("expected tiktok to resolve")
	}
	if embed.Aspect != AspectPortrait || embed.Category != CategoryShortForm {
		t.Fatalf("unexpected embed %+v", embed)
	}

	embed, ok = Resolve("https://vimeo.com/76979871")
	if !ok || embed.Category != CategoryProfessional || embed.Aspect != AspectLandscape {
		t.Fatalf("unexpected vimeo embed %+v ok=%v", embed, ok)
	}

	if _, ok := Resolve("https://www.youtube.com/@golang"); ok {
		t.Fatalf("channel page has no video id and must not resolve")
	}
}

func TestEmbedSrcPatternAcceptsResolvedURLs(t *testing.T) {
	for _, raw := range []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://vimeo.com/76979871",
		"https://www.tiktok.com/@creator/video/7234567890",
		"https://www.instagram.com/reel/Cabc123/",
		"https://www.bilibili.com/video/BV1x5411c7mD",
		"https://www.douyin.com/video/7234567890123456789",
	} {
		embed, ok := Resolve(raw)
		if !ok {
			t.Fatalf("expected %q to resolve", raw)
		}
		if !EmbedSrcPattern.MatchString(embed.EmbedURL) {
			t.Fatalf("embed src pattern rejects %q", embed.EmbedURL)
		}
	}
}
