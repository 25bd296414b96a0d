package conversation

import "regexp"

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	bulletPattern = regexp.MustCompile(`(?m)^\* `)
)

// Clean strips markdown bold markers and turns "* " bullets at the start of a
// line into "- " bullets. Bold spans never cross a newline.
func Clean(raw string) string {
	out := boldPattern.ReplaceAllString(raw, "$1")
	return bulletPattern.ReplaceAllString(out, "- ")
}
