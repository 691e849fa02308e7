// Package sanitize parses, repairs, and validates the free-form text
// that providers return for generation calls. Providers are unreliable
// text generators, not structured-output APIs, so the repair path
// assumes malformed, truncated, or markdown-wrapped JSON.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Response is the only shape ever handed to downstream consumers.
type Response struct {
	StorySegment string   `json:"storySegment"`
	Choices      []string `json:"choices"`
}

var (
	fenceRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	choicesRe = regexp.MustCompile(`"choices"\s*:\s*\[([^\]]*)\]`)
	numberRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// Sanitize runs the raw provider output through an ordered sequence of
// repairs and returns the validated response, or nil if the input is
// unrecoverable. Each stage short-circuits: a fast-path parse wins
// immediately, and once the targeted repairs have been applied a final
// failed parse is terminal. No open-ended guessing.
func Sanitize(raw string) *Response {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil
	}

	if resp := tryParse(candidate); resp != nil {
		return resp
	}

	candidate = stripFence(candidate)

	candidate, ok := trimToBraces(candidate)
	if !ok {
		return nil
	}

	candidate = repairChoices(candidate)

	return tryParse(candidate)
}

// tryParse attempts a direct parse and structural validation.
func tryParse(s string) *Response {
	var resp Response
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		return nil
	}
	if !valid(&resp) {
		return nil
	}
	return &resp
}

func valid(resp *Response) bool {
	if resp.StorySegment == "" {
		return false
	}
	if len(resp.Choices) < 2 {
		return false
	}
	for _, c := range resp.Choices {
		if c == "" {
			return false
		}
	}
	return true
}

// stripFence extracts the interior of a fenced code block, if any.
func stripFence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// trimToBraces narrows the candidate to the outermost JSON object. A
// missing opening brace is unrecoverable. A missing closing brace gets
// one appended when the text ends in a quote or closing bracket; that
// heuristic can produce structurally valid but semantically wrong JSON
// for input truncated mid-string, which the final validation may still
// reject.
func trimToBraces(s string) (string, bool) {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")

	if first == -1 {
		return "", false
	}

	if last == -1 || last < first {
		if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "]") {
			return s + "}", true
		}
		return s, true
	}

	return s[first : last+1], true
}

// repairChoices rewrites the choices array in place: drops a dangling
// trailing comma, keeps double-quoted items, converts single-quoted
// items (escaping embedded double quotes), passes bare numbers
// through, and double-quotes anything else.
func repairChoices(s string) string {
	m := choicesRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	original := m[0]
	content := strings.TrimSpace(m[1])
	content = strings.TrimSuffix(content, ",")
	content = strings.TrimSpace(content)

	var fixed []string
	for _, item := range strings.Split(content, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		switch {
		case strings.HasPrefix(item, `"`) && strings.HasSuffix(item, `"`):
			fixed = append(fixed, item)
		case strings.HasPrefix(item, "'") && strings.HasSuffix(item, "'") && len(item) >= 2:
			inner := strings.ReplaceAll(item[1:len(item)-1], `"`, `\"`)
			fixed = append(fixed, `"`+inner+`"`)
		case numberRe.MatchString(item):
			fixed = append(fixed, item)
		default:
			escaped := strings.ReplaceAll(item, `"`, `\"`)
			fixed = append(fixed, `"`+escaped+`"`)
		}
	}

	repaired := `"choices": [` + strings.Join(fixed, ", ") + `]`
	return strings.Replace(s, original, repaired, 1)
}
