package video

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var youtubeTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`) // t=1h2m3s

func youtubeIsEmbed(u *url.URL) bool {
	return strings.HasPrefix(u.Path, "/embed/")
}

func resolveYouTube(u *url.URL, _ string) (string, string, bool) {
	host := strings.ToLower(u.Hostname())
	var videoID string

	switch {
	case host == "youtu.be":
		if segments := pathSegments(u); len(segments) > 0 {
			videoID = segments[0]
		}
	default:
		segments := pathSegments(u)
		if len(segments) == 0 {
			return "", "", false
		}
		switch segments[0] {
		case "watch":
			videoID = u.Query().Get("v")
		case "shorts", "live", "v":
			if len(segments) > 1 {
				videoID = segments[1]
			}
		}
	}

	if videoID == "" {
		return "", "", false
	}

	embedURL := "https://www.youtube.com/embed/" + url.PathEscape(videoID)
	if start := youtubeStart(u); start > 0 {
		embedURL += "?start=" + strconv.Itoa(start)
	}
	return embedURL, AspectLandscape, true
}

func youtubeStart(u *url.URL) int {
	query := u.Query()
	if value := query.Get("start"); value != "" {
		return parseYouTubeTime(value)
	}
	if value := query.Get("t"); value != "" {
		return parseYouTubeTime(value)
	}
	return 0
}

func parseYouTubeTime(value string) int {
	trimmed := strings.TrimSpace(value)
	if onlyDigits(trimmed) {
		seconds, err := strconv.Atoi(trimmed)
		if err == nil && seconds > 0 {
			return seconds
		}
		return 0
	}

	total := 0
	for _, match := range youtubeTimePattern.FindAllStringSubmatch(trimmed, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n <= 0 {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

func vimeoIsEmbed(u *url.URL) bool {
	return strings.EqualFold(u.Hostname(), "player.vimeo.com")
}

// vimeo.com/<id> and vimeo.com/channels/<name>/<id>; the numeric id is the last segment.
func resolveVimeo(u *url.URL, _ string) (string, string, bool) {
	segments := pathSegments(u)
	for i := len(segments) - 1; i >= 0; i-- {
		if onlyDigits(segments[i]) {
			return "https://player.vimeo.com/video/" + segments[i], AspectLandscape, true
		}
	}
	return "", "", false
}

func tiktokIsEmbed(u *url.URL) bool {
	return strings.HasPrefix(u.Path, "/embed/")
}

func resolveTikTok(u *url.URL, _ string) (string, string, bool) {
	segments := pathSegments(u)
	for i, segment := range segments {
		if segment == "video" && i+1 < len(segments) && onlyDigits(segments[i+1]) {
			return "https://www.tiktok.com/embed/v2/" + segments[i+1], AspectPortrait, true
		}
	}
	return "", "", false
}

func facebookIsEmbed(u *url.URL) bool {
	return strings.HasPrefix(u.Path, "/plugins/video.php")
}

func resolveFacebook(u *url.URL, source string) (string, string, bool) {
	host := strings.ToLower(u.Hostname())
	isVideo := host == "fb.watch" ||
		strings.Contains(u.Path, "/videos/") ||
		strings.HasPrefix(u.Path, "/watch") ||
		strings.HasPrefix(u.Path, "/reel/")
	if !isVideo {
		return "", "", false
	}
	values := url.Values{}
	values.Set("href", source)
	values.Set("show_text", "false")
	return "https://www.facebook.com/plugins/video.php?" + values.Encode(), AspectLandscape, true
}

func instagramIsEmbed(u *url.URL) bool {
	return strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/embed")
}

func resolveInstagram(u *url.URL, _ string) (string, string, bool) {
	segments := pathSegments(u)
	if len(segments) < 2 || segments[1] == "" {
		return "", "", false
	}
	switch segments[0] {
	case "p", "tv":
		return fmt.Sprintf("https://www.instagram.com/p/%s/embed", segments[1]), AspectLandscape, true
	case "reel":
		return fmt.Sprintf("https://www.instagram.com/reel/%s/embed", segments[1]), AspectPortrait, true
	}
	return "", "", false
}

func bilibiliIsEmbed(u *url.URL) bool {
	return strings.EqualFold(u.Hostname(), "player.bilibili.com")
}

func resolveBilibili(u *url.URL, _ string) (string, string, bool) {
	segments := pathSegments(u)
	if len(segments) < 2 || segments[0] != "video" || segments[1] == "" {
		return "", "", false
	}

	rawID := segments[1]
	values := url.Values{}
	lowerID := strings.ToLower(rawID)
	switch {
	case strings.HasPrefix(lowerID, "bv"):
		values.Set("bvid", rawID)
	case strings.HasPrefix(lowerID, "av"):
		values.Set("aid", strings.TrimPrefix(lowerID, "av"))
	case onlyDigits(rawID):
		values.Set("aid", rawID)
	default:
		return "", "", false
	}

	page := 1
	if p, err := strconv.Atoi(u.Query().Get("p")); err == nil && p > 0 {
		page = p
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("high_quality", "1")
	values.Set("danmaku", "0")
	values.Set("autoplay", "0")

	return "https://player.bilibili.com/player.html?" + values.Encode(), AspectLandscape, true
}

func douyinIsEmbed(u *url.URL) bool {
	return strings.HasPrefix(u.Path, "/share/video/")
}

func resolveDouyin(u *url.URL, source string) (string, string, bool) {
	host := strings.ToLower(u.Hostname())
	segments := pathSegments(u)
	videoID := ""
	for i, segment := range segments {
		if segment == "video" && i+1 < len(segments) {
			videoID = segments[i+1]
			break
		}
		if strings.HasPrefix(segment, "modal_id=") {
			videoID = strings.TrimPrefix(segment, "modal_id=")
			break
		}
	}
	if videoID == "" {
		videoID = u.Query().Get("modal_id")
	}

	switch {
	case videoID != "":
		return "https://www.iesdouyin.com/share/video/" + videoID, AspectPortrait, true
	case host == "v.douyin.com":
		// 短链无法离线解析出视频 ID，直接交给抖音页面处理。
		return source, AspectPortrait, true
	}
	return "", "", false
}
