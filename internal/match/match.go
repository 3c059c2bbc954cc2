// package match implements name normalization and fuzzy matching for
// artist and album titles coming back from MusicBrainz and Lidarr.
package match

import (
	"regexp"
	"strings"
)

// AlbumSimilarityThreshold is the minimum normalized similarity for two
// album titles to be considered the same release.
const AlbumSimilarityThreshold = 0.85

// scoreFloor is the minimum MusicBrainz search score a candidate needs
// before it can win by score alone.
const scoreFloor = 80

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)
var multiSpace = regexp.MustCompile(`\s+`)

// Normalize lowercases a name, strips everything outside [a-z0-9\s],
// collapses runs of whitespace, and trims the ends. Applying it twice
// yields the same result as applying it once.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Candidate is a search result under consideration, typically a
// MusicBrainz artist with its search score.
type Candidate struct {
	ID    string
	Name  string
	Score int
}

// BestMatch picks the candidate most likely to be the artist named by
// query. Exact normalized equality wins outright; failing that, the
// first candidate whose normalized name contains (or is contained by)
// the normalized query; failing that, the top-ranked candidate if its
// search score clears the floor. Returns false when nothing qualifies.
func BestMatch(query string, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	q := Normalize(query)
	for _, c := range candidates {
		if Normalize(c.Name) == q {
			return c, true
		}
	}
	if q != "" {
		for _, c := range candidates {
			n := Normalize(c.Name)
			if n == "" {
				continue
			}
			if strings.Contains(n, q) || strings.Contains(q, n) {
				return c, true
			}
		}
	}
	if candidates[0].Score > scoreFloor {
		return candidates[0], true
	}
	return Candidate{}, false
}

// Similarity returns a score in [0, 1] for two titles, computed as
// 1 - levenshtein/maxLen over their normalized forms. Two empty
// normalized strings are identical.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}
	longest := max(len(na), len(nb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(na, nb))/float64(longest)
}

// SameAlbum reports whether two album titles refer to the same release.
// Normalized equality wins; one title containing the other also counts,
// which pairs reissues like "Abbey Road (Remastered)" with "Abbey Road";
// otherwise similarity must clear the threshold.
func SameAlbum(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return true
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return true
	}
	return Similarity(a, b) >= AlbumSimilarityThreshold
}

// levenshtein computes the edit distance between two strings using a
// two-row dynamic programming table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
