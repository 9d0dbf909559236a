// Package video recognises links to supported video platforms and rewrites
// them into URLs that can be placed in an iframe.
package video

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	AspectLandscape = "16:9"
	AspectPortrait  = "9:16"
)

// Platform categories.
const (
	CategoryGeneric      = "generic"
	CategoryProfessional = "professional"
	CategoryShortForm    = "short-form"
	CategorySocial       = "social"
)

// Embed describes a resolved video reference.
type Embed struct {
	Platform string `json:"platform"`
	Category string `json:"category"`
	Source   string `json:"source"`
	EmbedURL string `json:"embed_url"`
	Aspect   string `json:"aspect"`
}

type platform struct {
	name     string
	category string
	domains  []string
	isEmbed  func(u *url.URL) bool
	resolve  func(u *url.URL, source string) (string, string, bool)
}

var platforms = []platform{
	{name: "youtube", category: CategoryGeneric, domains: []string{"youtube.com", "youtu.be", "youtube-nocookie.com"}, isEmbed: youtubeIsEmbed, resolve: resolveYouTube},
	{name: "vimeo", category: CategoryProfessional, domains: []string{"vimeo.com"}, isEmbed: vimeoIsEmbed, resolve: resolveVimeo},
	{name: "tiktok", category: CategoryShortForm, domains: []string{"tiktok.com"}, isEmbed: tiktokIsEmbed, resolve: resolveTikTok},
	{name: "facebook", category: CategorySocial, domains: []string{"facebook.com", "fb.watch"}, isEmbed: facebookIsEmbed, resolve: resolveFacebook},
	{name: "instagram", category: CategorySocial, domains: []string{"instagram.com"}, isEmbed: instagramIsEmbed, resolve: resolveInstagram},
	{name: "bilibili", category: CategoryGeneric, domains: []string{"bilibili.com"}, isEmbed: bilibiliIsEmbed, resolve: resolveBilibili},
	{name: "douyin", category: CategoryShortForm, domains: []string{"douyin.com", "iesdouyin.com"}, isEmbed: douyinIsEmbed, resolve: resolveDouyin},
}

// EmbedSrcPattern matches every iframe src this package can produce.
var EmbedSrcPattern = regexp.MustCompile(
	`^https://(?:www\.)?(?:youtube\.com/embed/|youtube-nocookie\.com/embed/|player\.vimeo\.com/video/|tiktok\.com/embed/|facebook\.com/plugins/video\.php|instagram\.com/(?:p|reel)/[^/]+/embed|player\.bilibili\.com/player\.html(?:\?|$)|iesdouyin\.com/share/video/|douyin\.com/video/|v\.douyin\.com/)`,
)

// IsValidURL reports whether raw is an http(s) URL hosted on a supported platform.
func IsValidURL(raw string) bool {
	_, _, ok := lookup(raw)
	return ok
}

// ToEmbedURL rewrites a watch URL into its embeddable form. Embed URLs,
// unrecognised shapes and foreign hosts are returned unchanged.
func ToEmbedURL(raw string) string {
	if embed, ok := Resolve(raw); ok {
		return embed.EmbedURL
	}
	return raw
}

// Resolve maps raw to an Embed. It fails for foreign hosts and for links on
// supported hosts whose shape carries no video id.
func Resolve(raw string) (Embed, bool) {
	u, p, ok := lookup(raw)
	if !ok {
		return Embed{}, false
	}
	source := strings.TrimSpace(raw)

	embed := Embed{Platform: p.name, Category: p.category, Source: source, Aspect: AspectLandscape}
	if p.isEmbed(u) {
		embed.EmbedURL = source
		if p.category == CategoryShortForm {
			embed.Aspect = AspectPortrait
		}
		return embed, true
	}

	embedURL, aspect, ok := p.resolve(u, Normalize(source))
	if !ok {
		return Embed{}, false
	}
	embed.EmbedURL = embedURL
	embed.Aspect = aspect
	return embed, true
}

// Normalize adds an https scheme to bare links on supported hosts.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "<")
	trimmed = strings.TrimSuffix(trimmed, ">")
	if trimmed == "" {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	host := lower
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	for _, p := range platforms {
		for _, domain := range p.domains {
			if isHostOrSubdomain(host, domain) {
				return "https://" + trimmed
			}
		}
	}
	return trimmed
}

func lookup(raw string) (*url.URL, platform, bool) {
	normalized := Normalize(raw)
	if normalized == "" {
		return nil, platform{}, false
	}
	u, err := url.Parse(normalized)
	if err != nil || u == nil {
		return nil, platform{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, platform{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, platform{}, false
	}
	for _, p := range platforms {
		for _, domain := range p.domains {
			if isHostOrSubdomain(host, domain) {
				return u, p, true
			}
		}
	}
	return nil, platform{}, false
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	domain = strings.ToLower(strings.TrimSpace(domain))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func pathSegments(u *url.URL) []string {
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
