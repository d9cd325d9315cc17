// Package classify holds the text filters applied to every search hit.
// All checks are substring matches over lower-cased text, so "room" also
// matches "classroom".
package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLocation is returned when no locality keyword matches.
const DefaultLocation = "London, UK"

// Order matters: the first hit wins, so districts come before the bare city.
var locationKeywords = []string{
	"central london", "east london", "west london",
	"north london", "south london", "greater london", "london",
}

var studyKeywords = []string{
	"study", "studying", "student", "university", "college",
	"exam", "course", "lecture", "tutorial",
	"library", "campus", "academic", "research", "assignment",
	"revision", "dissertation", "masters", "phd", "bachelor",
}

var onlineKeywords = []string{
	"online", "virtual", "remote", "zoom", "teams",
	"discord", "skype", "webcam", "video call",
}

// DefaultExclusions are off-topic language, job and housing terms.
var DefaultExclusions = []string{
	"language", "french", "spanish", "german", "italian", "portuguese", "russian",
	"chinese", "japanese", "korean", "arabic", "hindi", "urdu", "bengali",
	"turkish", "dutch", "swedish", "norwegian", "danish", "polish", "greek",
	"job", "jobs", "work", "hiring", "internship", "intern", "career", "careers",
	"rent", "flatmate", "housing", "accommodation", "room", "rooms", "house", "houses",
}

var titleCaser = cases.Title(language.English)

// Text builds the lower-cased blob every check runs against.
func Text(title, body string) string {
	return strings.ToLower(title + " " + body)
}

// ExtractLocation returns the first locality keyword found, title-cased.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range locationKeywords {
		if strings.Contains(lower, kw) {
			return titleCaser.String(kw)
		}
	}
	return DefaultLocation
}

func IsStudyRelated(text string) bool {
	return containsAny(text, studyKeywords)
}

// IsOnline reports whether the post asks for virtual or remote participation.
func IsOnline(text string) bool {
	return containsAny(text, onlineKeywords)
}

// Classifier carries the exclusion list, which can be overridden from CSV.
type Classifier struct {
	exclusions []string
}

func New(exclusions []string) *Classifier {
	if len(exclusions) == 0 {
		exclusions = DefaultExclusions
	}
	lowered := make([]string, 0, len(exclusions))
	for _, kw := range exclusions {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Classifier{exclusions: lowered}
}

func (c *Classifier) IsExcluded(text string) bool {
	return containsAny(text, c.exclusions)
}

// Exclusions returns the active exclusion keywords.
func (c *Classifier) Exclusions() []string { return c.exclusions }

// ImageURL keeps url only when it points at an image.
func ImageURL(url string) string {
	for _, ext := range []string{".jpg", ".png", ".jpeg", ".gif"} {
		if strings.HasSuffix(url, ext) {
			return url
		}
	}
	if strings.Contains(url, "i.redd.it") {
		return url
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
