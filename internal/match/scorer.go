package match

import (
	"sort"
	"strings"

	"github.com/rlafferty/freshtracks/internal/model"
)

// Score weighting. Artist and title containment carry most of the score;
// per-word credit tops an exact match up to 1.0 before format bonuses.
const (
	artistWeight = 0.4
	titleWeight  = 0.4
	wordWeight   = 0.2

	losslessBonus = 0.10
	mp3Bonus      = 0.05

	minWordLen = 3
)

var losslessExtensions = map[string]bool{
	"flac": true,
	"wav":  true,
	"ape":  true,
	"aiff": true,
}

// Thresholds is the two-tier candidate acceptance policy: a candidate
// must score at least Primary to be picked outright; when no candidate
// clears Primary the best one at or above Fallback is taken instead.
type Thresholds struct {
	Primary  float64
	Fallback float64
}

// DefaultThresholds returns the standard acceptance tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{Primary: 0.5, Fallback: 0.3}
}

// Score rates how well a candidate file matches a wanted track, returning
// a value in [0, 1]. It is deterministic and performs no I/O.
//
// The candidate's base filename and the track's artist/title are
// normalized the same way as track keys. Credit is awarded for the
// filename containing the full artist string, the full title string, and
// a share of the individual artist/title words, then small bonuses for
// lossless or mp3 extensions and for reported bitrate tiers. The result
// is clamped to 1.0.
func Score(c model.CandidateFile, w model.WantedTrack) float64 {
	name := model.Normalize(c.BaseName())
	artist := model.Normalize(w.Artist)
	title := model.Normalize(w.Title)

	if name == "" || (artist == "" && title == "") {
		return 0
	}

	var score float64
	if artist != "" && strings.Contains(name, artist) {
		score += artistWeight
	}
	if title != "" && strings.Contains(name, title) {
		score += titleWeight
	}

	words := significantWords(artist, title)
	if len(words) == 0 {
		// Nothing longer than two characters to check word-by-word;
		// a full containment match still counts as exact.
		if score >= artistWeight+titleWeight {
			score += wordWeight
		}
	} else {
		found := 0
		for _, word := range words {
			if strings.Contains(name, word) {
				found++
			}
		}
		score += wordWeight * float64(found) / float64(len(words))
	}

	ext := c.Ext()
	switch {
	case losslessExtensions[ext]:
		score += losslessBonus
	case ext == "mp3":
		score += mp3Bonus
	}

	switch {
	case c.BitRate >= 320:
		score += 0.10
	case c.BitRate >= 256:
		score += 0.07
	case c.BitRate >= 192:
		score += 0.05
	}

	if score > 1 {
		score = 1
	}
	return score
}

func significantWords(artist, title string) []string {
	var words []string
	for _, field := range []string{artist, title} {
		for _, word := range strings.Fields(field) {
			if len(word) >= minWordLen {
				words = append(words, word)
			}
		}
	}
	return words
}

// Scored pairs a candidate with its match score.
type Scored struct {
	Candidate model.CandidateFile
	Score     float64
}

// Rank scores all candidates against the wanted track and returns them
// sorted descending by score. The sort is stable, so equal scores keep
// their first-seen order.
func Rank(candidates []model.CandidateFile, w model.WantedTrack) []Scored {
	ranked := make([]Scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = Scored{Candidate: c, Score: Score(c, w)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Best picks the highest-scoring candidate that passes the quality filter
// and clears the primary threshold, falling back to the fallback
// threshold when nothing clears the primary bar. The boolean result is
// false when no acceptable candidate reaches even the fallback tier.
func Best(candidates []model.CandidateFile, w model.WantedTrack, filter *Filter, th Thresholds) (Scored, bool) {
	var acceptable []Scored
	for _, s := range Rank(candidates, w) {
		if filter.Acceptable(s.Candidate) {
			acceptable = append(acceptable, s)
		}
	}

	for _, bar := range []float64{th.Primary, th.Fallback} {
		for _, s := range acceptable {
			if s.Score >= bar {
				return s, true
			}
		}
	}
	return Scored{}, false
}
