package enricher

import (
	"regexp"
	"strings"
)

// Dataset titles carry MovieLens formatting that the search API chokes on:
// "Batman/Superman Movie, The (1998)" must become "Batman Superman Movie".
var (
	yearSuffixRe = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	theSuffixRe  = regexp.MustCompile(`,\s*The\s*$`)
)

// NormalizeTitle rewrites a catalog title into the form sent to the metadata
// search API. The transformation is idempotent. It affects only the outbound
// query; cache keys remain the original title.
func NormalizeTitle(title string) string {
	s := yearSuffixRe.ReplaceAllString(title, "")
	s = theSuffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, ",", "")
	return strings.Join(strings.Fields(s), " ")
}

const placeholderBaseURL = "https://via.placeholder.com/342x513/1e3c72/ffffff?text="

// PlaceholderPosterURL generates the fallback poster image URL used when no
// metadata is available for a title.
func PlaceholderPosterURL(title string) string {
	return placeholderBaseURL + strings.ReplaceAll(title, " ", "+")
}
