package render

import (
	"strings"
	"time"
)

// AuthorPhrase joins author names into a natural-language list:
// "A", "A and B", "A, B, and C".
func AuthorPhrase(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// LastUpdatedLine composes the full "last updated" string for a page. With a
// full author list the phrasing is "<date>, edited by A, B, and C"; with only
// the most recent author it is "<date> by A"; with neither, just the date.
func LastUpdatedLine(ts time.Time, primaryAuthor string, allAuthors []string, lang string, loc *time.Location) string {
	dateStr := FormatDate(ts, lang, loc)
	switch {
	case len(allAuthors) > 0:
		return dateStr + ", edited by " + AuthorPhrase(allAuthors)
	case primaryAuthor != "":
		return dateStr + " by " + primaryAuthor
	default:
		return dateStr
	}
}
