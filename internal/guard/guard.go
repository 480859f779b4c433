package guard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Message body bounds, enforced before anything touches the store.
const (
	MaxWords = 50
	MaxChars = 300
)

// WordCount counts whitespace-separated words after trimming. An empty
// or whitespace-only body counts as zero words.
func WordCount(body string) int {
	return len(strings.Fields(strings.TrimSpace(body)))
}

// ValidateBody returns every violated constraint. Word and character
// violations are reported together when both apply; an empty slice
// means the body is sendable.
func ValidateBody(body string) []string {
	var problems []string

	words := WordCount(body)
	if words == 0 {
		problems = append(problems, "message cannot be empty")
	} else if words > MaxWords {
		problems = append(problems, fmt.Sprintf("message exceeds %d words", MaxWords))
	}

	// Characters are what the sender sees in the composer, so the
	// bound counts runes, not bytes.
	if utf8.RuneCountInString(body) > MaxChars {
		problems = append(problems, fmt.Sprintf("message exceeds %d characters", MaxChars))
	}

	return problems
}
