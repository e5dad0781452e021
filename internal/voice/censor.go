package voice

import (
	"regexp"
	"strings"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
)

var replyWordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)

// ReplyFilter masks profane words in model replies. Each word is checked on
// its own so profanity never matches across word boundaries.
type ReplyFilter struct {
	detector *goaway.ProfanityDetector
}

// NewReplyFilter creates a ReplyFilter.
func NewReplyFilter() *ReplyFilter {
	return &ReplyFilter{
		detector: goaway.NewProfanityDetector().
			WithSanitizeSpaces(false).
			WithSanitizeLeetSpeak(false).
			WithSanitizeSpecialCharacters(true).
			WithSanitizeAccents(false),
	}
}

// Clean returns s with every profane word replaced by asterisks.
func (f *ReplyFilter) Clean(s string) string {
	return replyWordPattern.ReplaceAllStringFunc(s, func(word string) string {
		if !f.detector.IsProfane(word) {
			return word
		}
		return strings.Repeat("*", utf8.RuneCountInString(word))
	})
}
