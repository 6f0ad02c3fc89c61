package source

import (
	"fmt"
	"regexp"
	"strings"
)

// Accepted link shapes. Scheme and www/m prefixes are optional, matching is
// case-insensitive, and the video ID is always 11 characters.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:[^#]*&)?v=([\w-]{11})(?:[&#?].*)?$`),
	regexp.MustCompile(`(?i)^(?:https?://)?youtu\.be/([\w-]{11})(?:[&#?].*)?$`),
	regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([\w-]{11})(?:[&#?/].*)?$`),
}

// Reference is a validated locator for a remote video. It can only be
// obtained through Classify and is immutable afterwards.
type Reference struct {
	id string
}

// ID returns the 11-character video identifier.
func (r Reference) ID() string { return r.id }

// URL returns the canonical watch URL for the video.
func (r Reference) URL() string {
	return "https://www.youtube.com/watch?v=" + r.id
}

func (r Reference) String() string { return r.id }

// Classify decides whether text is a retrievable video link. It accepts
// canonical watch links, youtu.be short links, and shorts links; anything
// else returns ErrNotAReference. No network access.
func Classify(text string) (Reference, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reference{}, fmt.Errorf("%w: empty input", ErrNotAReference)
	}

	for _, p := range linkPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return Reference{id: m[1]}, nil
		}
	}

	return Reference{}, fmt.Errorf("%w: %q", ErrNotAReference, truncateForError(text))
}

// truncateForError keeps error messages readable for arbitrarily long input.
func truncateForError(s string) string {
	const max = 80
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
