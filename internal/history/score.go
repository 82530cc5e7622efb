package history

import (
	"regexp"
	"strconv"
)

// scorePatterns are tried in priority order; the first matching pattern
// wins, so an explicit "Overall Score: 4/10" beats a bare "9/10" appearing
// elsewhere in the text.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Overall Score:\s*(\d+)/10`),
	regexp.MustCompile(`(?i)Score:\s*(\d+)/10`),
	regexp.MustCompile(`(?i)Rating:\s*(\d+)/10`),
	regexp.MustCompile(`(?i)(\d+)/10`),
}

// ExtractScore pulls an N/10 score out of review text. The second return is
// false when no pattern matches.
func ExtractScore(text string) (int, bool) {
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
