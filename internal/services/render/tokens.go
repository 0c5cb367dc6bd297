package render

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// tokenRegex matches {{...}} placeholders. Nested braces are not tokens.
var tokenRegex = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// ExtractTokens returns the distinct token names appearing in the body, in
// order of first appearance. Surrounding whitespace inside the braces is not
// part of the name.
func ExtractTokens(body string) []string {
	matches := tokenRegex.FindAllStringSubmatch(body, -1)

	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if name := strings.TrimSpace(m[1]); name != "" {
			tokens = append(tokens, name)
		}
	}

	return lo.Uniq(tokens)
}

// splitToken breaks a dotted token into its source prefix and field path.
// "weather.main.temp" yields ("weather", ["main", "temp"]); an undotted
// token has no field path.
func splitToken(token string) (string, []string) {
	parts := strings.Split(token, ".")
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0], parts[1:]
}
