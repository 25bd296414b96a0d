package insights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/budgetly/budgetly/backend/pkg/utils"
)

const (
	minPromptLength = 5
	maxPromptLength = 500
)

// validateGenerate checks a /generate body: userId is a required non-empty
// string, prompt a required string of 5 to 500 characters, nothing else allowed.
// The returned message is empty when the body is valid.
func validateGenerate(f utils.Fields) (userID, prompt, message string) {
	userID, message = requiredString(f, "userId")
	if message != "" {
		return "", "", message
	}

	prompt, message = requiredString(f, "prompt")
	if message != "" {
		return "", "", message
	}
	if message = promptLength(prompt); message != "" {
		return "", "", message
	}

	extra := make([]string, 0)
	for key := range f {
		if key != "userId" && key != "prompt" {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return "", "", fmt.Sprintf("%q is not allowed", extra[0])
	}
	return userID, prompt, ""
}

func promptLength(prompt string) string {
	// lengths are counted in UTF-16 code units, like the web client does
	n := len(utf16.Encode([]rune(prompt)))
	switch {
	case n < minPromptLength:
		return fmt.Sprintf("%q length must be at least %d characters long", "prompt", minPromptLength)
	case n > maxPromptLength:
		return fmt.Sprintf("%q length must be less than or equal to %d characters long", "prompt", maxPromptLength)
	}
	return ""
}

func requiredString(f utils.Fields, key string) (string, string) {
	raw, ok := f[key]
	if !ok {
		return "", fmt.Sprintf("%q is required", key)
	}

	var value string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &value) != nil {
		return "", fmt.Sprintf("%q must be a string", key)
	}
	if value == "" {
		return "", fmt.Sprintf("%q is not allowed to be empty", key)
	}
	return value, ""
}
