package library

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rlafferty/freshtracks/internal/model"
)

// Strategy names how files are chosen when the count cap forces
// rotations beyond the age-based selection.
type Strategy string

const (
	// StrategyOldestFirst rotates the files with the oldest modification
	// times first.
	StrategyOldestFirst Strategy = "oldest_first"

	// StrategyRandom rotates a uniform random selection.
	StrategyRandom Strategy = "random"

	// StrategyLeastPlayed falls back to oldest_first: no play-count
	// signal is available from the collaborators this system talks to.
	StrategyLeastPlayed Strategy = "least_played"
)

// Policy bounds the current collection.
type Policy struct {
	// MaxTracks caps the file count. Zero means uncapped.
	MaxTracks int

	// MaxAge rotates any file older than this. Zero means no age cap.
	MaxAge time.Duration

	// Strategy picks the extra files when the age cap alone leaves the
	// collection over MaxTracks.
	Strategy Strategy
}

// SelectForRotation returns the files that must leave the current
// collection under the policy: every file older than the age cap, plus
// enough additional files (chosen by strategy) to bring the remainder
// down to the count cap. Pure function; now is injected for testability.
func SelectForRotation(files []model.CollectionFile, p Policy, now time.Time) []model.CollectionFile {
	var selected []model.CollectionFile
	var remaining []model.CollectionFile

	if p.MaxAge > 0 {
		cutoff := now.Add(-p.MaxAge)
		for _, f := range files {
			if f.ModifiedAt.Before(cutoff) {
				selected = append(selected, f)
			} else {
				remaining = append(remaining, f)
			}
		}
	} else {
		remaining = append(remaining, files...)
	}

	if p.MaxTracks <= 0 || len(remaining) <= p.MaxTracks {
		return selected
	}

	excess := len(remaining) - p.MaxTracks

	switch p.Strategy {
	case StrategyRandom:
		shuffled := append([]model.CollectionFile(nil), remaining...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		selected = append(selected, shuffled[:excess]...)
	default:
		// oldest_first, and least_played which has no play-count signal
		// to act on.
		byAge := append([]model.CollectionFile(nil), remaining...)
		sort.Slice(byAge, func(i, j int) bool {
			return byAge[i].ModifiedAt.Before(byAge[j].ModifiedAt)
		})
		selected = append(selected, byAge[:excess]...)
	}

	return selected
}
