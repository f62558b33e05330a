package generation

import (
	"regexp"
	"strings"
)

const fence = "```"

// fencedBlock matches the first markdown code block with an optional language tag.
var fencedBlock = regexp.MustCompile("(?s)" + fence + `[A-Za-z]*[ \t]*\r?\n?(.*?)` + fence)

// StripCodeFence isolates the JSON payload in a provider response. In order:
//  1. the inner content of the first fenced block
//  2. for an unterminated opening fence, everything after the fence line when it
//     starts with '{' or '['
//  3. the span from the first '{' to the last '}'
//  4. the trimmed input
//
// It never fails.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	if strings.HasPrefix(trimmed, fence) {
		rest := ""
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			rest = trimmed[i+1:]
		}
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), fence))
		if strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "[") {
			return rest
		}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
