// Package moderation masks blocked words in text echoed back to chat users.
// Task titles and descriptions come from the web side unfiltered, so outbound
// notifications run through the censor before delivery.
package moderation

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// NewModerator builds the Aho-Corasick automaton over the lowercased word list.
// An empty list yields a pass-through moderator.
func NewModerator(blockedWords []string, censoredChar rune) (*Moderator, error) {
	if len(blockedWords) == 0 {
		return &Moderator{censoredChar: censoredChar}, nil
	}

	patterns := make([][]rune, len(blockedWords))
	for i, word := range blockedWords {
		patterns[i] = []rune(strings.ToLower(strings.TrimSpace(word)))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar}, nil
}

// LoadWords reads one blocked word per line, skipping blanks and # comments.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// Censor replaces every matched span with the censor character.
// Matching is case-insensitive; the original casing and length are preserved
// outside the masked spans. A nil or empty moderator returns the input as-is.
func (m *Moderator) Censor(original string) string {
	if m == nil || m.matcher == nil || original == "" {
		return original
	}

	origRunes := []rune(original)
	lowered := make([]rune, len(origRunes))
	for i, r := range origRunes {
		lowered[i] = unicode.ToLower(r)
	}

	spans := m.matcher.MultiPatternSearch(lowered, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(origRunes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}
