package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONPayload is returned when no JSON object can be recovered from model output
var ErrNoJSONPayload = errors.New("no JSON payload found")

var (
	fencedJSONPattern  = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedPattern      = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingComma      = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey        = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlCharPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON extracts a JSON object from model output and decodes it into target.
// Handles pure JSON, markdown fences, chatty preambles, trailing commas,
// unquoted keys and replies cut off before the closing brace.
func ParseAIJSON(input string, target interface{}) error {
	payload, err := ExtractJSONPayload(input)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// ExtractJSONPayload returns the first syntactically valid JSON object it can
// recover from input, trying progressively more aggressive repairs.
func ExtractJSONPayload(input string) (string, error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrNoJSONPayload)
	}

	for _, candidate := range candidates(s) {
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) && strings.HasPrefix(candidate, "{") {
			return candidate, nil
		}
		if cleaned := cleanAndFixJSON(candidate); json.Valid([]byte(cleaned)) && strings.HasPrefix(cleaned, "{") {
			return cleaned, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoJSONPayload, truncateString(s, 100))
}

func candidates(s string) []string {
	out := []string{s}
	if fenced := extractFromMarkdown(s); fenced != "" {
		out = append(out, fenced)
	}
	if start := strings.Index(s, "{"); start >= 0 {
		tail := s[start:]
		if balanced := extractBalancedBraces(tail, '{', '}'); balanced != "" {
			out = append(out, balanced)
		}
		out = append(out, closeUnbalanced(strings.TrimSuffix(strings.TrimSpace(tail), "```")))
	}
	return out
}

// extractFromMarkdown extracts JSON from markdown code blocks
func extractFromMarkdown(input string) string {
	if matches := fencedJSONPattern.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if matches := fencedPattern.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") {
			return content
		}
	}
	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// closeUnbalanced appends whatever closing quotes, brackets and braces a
// truncated reply is missing.
func closeUnbalanced(input string) string {
	var stack []rune
	inString := false
	escape := false

	for _, ch := range input {
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == ch {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(input, " \t\r\n,:"))
	if inString {
		b.WriteRune('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteRune(stack[i])
	}
	return b.String()
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlCharPattern.ReplaceAllString(s, "")
}

// fixSingleQuotes converts single-quoted delimiters to double quotes outside strings
func fixSingleQuotes(input string) string {
	runes := []rune(input)
	inDoubleQuote := false
	escape := false

	for i, ch := range runes {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inDoubleQuote = !inDoubleQuote
		case ch == '\'' && !inDoubleQuote && isQuoteDelimiter(runes, i):
			runes[i] = '"'
		}
	}

	return string(runes)
}

// isQuoteDelimiter tells an apostrophe inside a word from a quote around a token
func isQuoteDelimiter(runes []rune, i int) bool {
	prev := rune(0)
	for j := i - 1; j >= 0; j-- {
		if runes[j] != ' ' {
			prev = runes[j]
			break
		}
	}
	if prev == 0 || strings.ContainsRune(":,[{", prev) {
		return true
	}
	for j := i + 1; j < len(runes); j++ {
		if runes[j] != ' ' {
			return strings.ContainsRune(":,]}", runes[j])
		}
	}
	return true
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
