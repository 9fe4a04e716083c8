package coverage

import "strings"

// ParseSummary scrapes line and function coverage percentages from the free
// text printed by a coverage summarizer such as `lcov --summary`.
//
// A line containing both "lines" and "%" is a line-coverage candidate;
// otherwise a line containing both "functions" and "%" is a function-coverage
// candidate. The first whitespace-separated token ending in "%" is taken
// verbatim. The first candidate that yields a token wins for each field.
//
// The match is deliberately loose: any unrelated line mentioning "lines" next
// to a percent sign is also accepted.
func ParseSummary(text string) (line, function string) {
	for _, raw := range strings.Split(text, "\n") {
		if line != "" && function != "" {
			break
		}
		if !strings.Contains(raw, "%") {
			continue
		}
		switch {
		case strings.Contains(raw, "lines"):
			if line == "" {
				line = firstPercentToken(raw)
			}
		case strings.Contains(raw, "functions"):
			if function == "" {
				function = firstPercentToken(raw)
			}
		}
	}
	return line, function
}

func firstPercentToken(s string) string {
	for _, field := range strings.Fields(s) {
		if strings.HasSuffix(field, "%") {
			return field
		}
	}
	return ""
}
