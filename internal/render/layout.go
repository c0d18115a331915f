// Package render turns resolved metadata into human-readable strings for
// manifests and page templates: localized dates, author phrases, and the
// machine-readable modified time used in meta tags.
package render

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// defaultLayout is the fallback when a language has no table entry.
const defaultLayout = "January 2, 2006"

// dateLayouts maps language codes to long-form date layouts. Keys are
// lowercase with "-" separators.
var dateLayouts = map[string]string{
	"en":    "January 2, 2006",
	"en-gb": "2 January 2006",

	"zh-cn": "2006年1月2日",
	"zh-tw": "2006年1月2日",
	"ja":    "2006年1月2日",
	"ko":    "2006년 1월 2일",

	"hi": "2 January 2006",
	"bn": "2 January 2006",
	"ta": "2 January 2006",

	"th": "2 January 2006",
	"vi": "2 January, 2006",
	"id": "2 January 2006",
	"ms": "2 January 2006",

	"es": "2 de January de 2006",
	"fr": "2 January 2006",
	"pt": "2 de January de 2006",
	"it": "2 January 2006",
	"ro": "2 January 2006",
	"nl": "2 January 2006",
	"de": "2. January 2006",
	"sv": "2 January 2006",
	"no": "2. January 2006",
	"cs": "2. January 2006",
	"hu": "2006. January 2.",
	"pl": "2 January 2006",

	"el": "2 January 2006",
	"ru": "2 January 2006 г.",
	"uk": "2 January 2006 р.",
	"tr": "2 January 2006",

	"ar": "2 January 2006",
	"fa": "2 January 2006",
	"he": "2 בJanuary 2006",

	"sw": "2 January 2006",
}

var layoutMatcher language.Matcher
var layoutTags []string

func init() {
	tags := make([]language.Tag, 0, len(dateLayouts))
	// "en" first so it wins ties as the matcher default.
	layoutTags = append(layoutTags, "en")
	tags = append(tags, language.English)
	for key := range dateLayouts {
		if key == "en" {
			continue
		}
		tag, err := language.Parse(key)
		if err != nil {
			continue
		}
		layoutTags = append(layoutTags, key)
		tags = append(tags, tag)
	}
	layoutMatcher = language.NewMatcher(tags)
}

// Layout returns the date layout for a language code. Exact table entries win;
// otherwise the closest supported language is matched, falling back to the
// English default.
func Layout(lang string) string {
	if lang == "" {
		return defaultLayout
	}
	key := strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
	if layout, ok := dateLayouts[key]; ok {
		return layout
	}
	tag, err := language.Parse(key)
	if err != nil {
		return defaultLayout
	}
	_, index, conf := layoutMatcher.Match(tag)
	if conf == language.No {
		return defaultLayout
	}
	if layout, ok := dateLayouts[layoutTags[index]]; ok {
		return layout
	}
	return defaultLayout
}

// FormatDate renders a timestamp in the given language and location.
func FormatDate(ts time.Time, lang string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(Layout(lang))
}

// ModifiedTime renders a timestamp in RFC 3339 for machine consumers such as
// article:modified_time meta tags.
func ModifiedTime(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(time.RFC3339)
}

// Location resolves a timezone name, defaulting to UTC for the empty string.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
