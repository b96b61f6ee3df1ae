package analyzer

import (
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// ImportanceScore rates newsworthiness in [0,1] from keyword rules only.
func ImportanceScore(title, content string) float64 {
	score := 0.5
	text := strings.ToLower(title + " " + content)

	score += min(float64(countPresent(text, highImportanceKeywords))*0.2, 0.4)
	score += min(float64(countPresent(text, mediumImportanceKeywords))*0.1, 0.2)

	if countPresent(text, breakingIndicators) > 0 {
		score += 0.15
	}

	score += min(float64(countPresent(text, marketIndicators))*0.05, 0.15)

	// Likely ticker symbol in the headline.
	if tickerPattern.MatchString(title) {
		score += 0.1
	}

	return clamp(score, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
