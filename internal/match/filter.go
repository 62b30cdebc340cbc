package match

import "github.com/rlafferty/freshtracks/internal/model"

// Quality floors. Files below either floor are almost always truncated
// transfers or mislabeled junk.
const (
	MinBitRate  = 128
	MinFileSize = 1 << 20 // 1 MiB
)

// Filter rejects candidates that cannot be acceptable downloads
// regardless of how well their filename matches.
//
// Unknown bitrate or size (reported as zero) never causes rejection:
// many peers simply do not report them.
type Filter struct {
	minBitRate int
	minSize    int64
}

// NewFilter creates a Filter with the given floors. Zero values fall back
// to the package defaults.
func NewFilter(minBitRate int, minSize int64) *Filter {
	if minBitRate <= 0 {
		minBitRate = MinBitRate
	}
	if minSize <= 0 {
		minSize = MinFileSize
	}
	return &Filter{minBitRate: minBitRate, minSize: minSize}
}

// Acceptable reports whether the candidate passes the format, bitrate and
// size floors.
func (f *Filter) Acceptable(c model.CandidateFile) bool {
	if !model.IsAudioFile(c.BaseName()) {
		return false
	}
	if c.BitRate > 0 && c.BitRate < f.minBitRate {
		return false
	}
	if c.Size > 0 && c.Size < f.minSize {
		return false
	}
	return true
}
