package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
)

var (
	// Global instance for reuse (thread-safe)
	defaultFilter *Filter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded file: %s", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		log.Fatalf("Failed to unmarshal JSON: %s", err)
	}
	return bannedWords
}

type Filter struct {
	regex *regexp.Regexp
}

func NewFilter() *Filter {
	once.Do(func() {
		defaultFilter = &Filter{
			regex: buildMasterRegex(),
		}
	})

	return defaultFilter
}

func (f *Filter) ContainsProfanity(text string) bool {
	if text == "" {
		return false
	}

	normalized := normalizeText(text)
	return f.regex.MatchString(normalized)
}

func normalizeText(text string) string {
	s := strings.ToLower(text)

	// Replace common leetspeak in one pass
	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e",
		"1", "i", "!", "i", "|", "i",
		"0", "o",
		"$", "s", "5", "s",
		"7", "t", "+", "t",
	).Replace(s)

	// Collapse whitespace and common separators
	s = regexp.MustCompile(`[\s_.\-*/\\|]+`).ReplaceAllString(s, " ")

	return s
}

func buildMasterRegex() *regexp.Regexp {
	patterns := make([]string, 0, 64)

	for _, base := range loadBannedWords() {
		word := strings.ToLower(base)

		// Allow doubled letters (fuuck) and non-letter separators between
		// letters (f u c k, f.u.c.k after normalization).
		letters := make([]string, 0, len(word))
		for _, r := range word {
			letters = append(letters, regexp.QuoteMeta(string(r))+`+`)
		}
		patterns = append(patterns, strings.Join(letters, `[^\p{L}]*`))
	}

	expression := `(?:^|\W)(` + strings.Join(patterns, "|") + `)(?:$|\W)`
	return regexp.MustCompile(expression)
}
