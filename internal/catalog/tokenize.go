package catalog

import (
	"regexp"
	"strings"
)

// wordRegex matches alphanumeric runs, the same "split on non-letters" rule
// spec §4.3/§4.7 assume when they talk about "words".
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Tokenize lowercases text and splits it into words, matching the word
// notion spec §4.3's keyword contract and §3's corpus word set both rely on.
func Tokenize(text string) []string {
	return wordRegex.FindAllString(strings.ToLower(text), -1)
}
