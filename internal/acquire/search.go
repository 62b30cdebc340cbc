package acquire

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/model"
	"github.com/rlafferty/freshtracks/internal/slskd"
)

// SearchBackend is the slice of the download daemon's API the search
// coordinator needs.
type SearchBackend interface {
	StartSearch(ctx context.Context, searchText string, timeout time.Duration) (slskd.Search, error)
	GetSearch(ctx context.Context, id string) (slskd.Search, error)
	SearchResponses(ctx context.Context, id string) ([]slskd.SearchResponse, error)
	DeleteSearch(ctx context.Context, id string) error
}

// SearchConfig bounds the search protocol.
type SearchConfig struct {
	// PollInterval is the delay between search state polls.
	PollInterval time.Duration

	// MaxPolls caps how many times the search state is polled before
	// the attempt is abandoned.
	MaxPolls int

	// RequestTimeout is the timeout hint sent to the backend with the
	// search query.
	RequestTimeout time.Duration
}

// DefaultSearchConfig polls every 3 seconds for up to 15 polls, bounding
// total wait around 45 seconds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		PollInterval:   3 * time.Second,
		MaxPolls:       15,
		RequestTimeout: 15 * time.Second,
	}
}

// Searcher drives the submit → poll → collect → delete search protocol
// against the download backend.
//
// Every failure mode, including the backend never completing the search
// within the poll budget, yields an empty result rather than an error:
// retry policy lives one level up in the orchestrator.
type Searcher struct {
	backend SearchBackend
	cfg     SearchConfig
	clock   Clock
	log     zerolog.Logger
}

// NewSearcher creates a Searcher. A nil clock falls back to the system
// clock.
func NewSearcher(backend SearchBackend, cfg SearchConfig, clock Clock, log zerolog.Logger) *Searcher {
	if clock == nil {
		clock = SystemClock()
	}
	return &Searcher{backend: backend, cfg: cfg, clock: clock, log: log}
}

// Search submits a query for the track and returns the candidates offered
// by responding peers, flattened across peers. Returns nil when the
// search fails, completes empty, or does not complete within the budget.
//
// The search resource is always deleted on the backend before returning,
// whether or not results were collected.
func (s *Searcher) Search(ctx context.Context, track model.WantedTrack) []model.CandidateFile {
	search, err := s.backend.StartSearch(ctx, track.Query(), s.cfg.RequestTimeout)
	if err != nil {
		s.log.Warn().Err(err).Str("track", track.String()).Msg("search submission failed")
		return nil
	}

	defer func() {
		if err := s.backend.DeleteSearch(ctx, search.ID); err != nil {
			s.log.Debug().Err(err).Str("search_id", search.ID).Msg("failed to delete search")
		}
	}()

	if !s.waitComplete(ctx, search.ID) {
		s.log.Info().Str("track", track.String()).Msg("search did not complete within budget")
		return nil
	}

	responses, err := s.backend.SearchResponses(ctx, search.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("search_id", search.ID).Msg("collecting search responses failed")
		return nil
	}

	var candidates []model.CandidateFile
	for _, resp := range responses {
		for _, f := range resp.Files {
			candidates = append(candidates, model.CandidateFile{
				Filename: f.Filename,
				Username: resp.Username,
				Size:     f.Size,
				BitRate:  f.BitRate,
			})
		}
	}

	s.log.Debug().
		Str("track", track.String()).
		Int("peers", len(responses)).
		Int("candidates", len(candidates)).
		Msg("search collected")

	return candidates
}

func (s *Searcher) waitComplete(ctx context.Context, id string) bool {
	for i := 0; i < s.cfg.MaxPolls; i++ {
		if err := s.clock.Sleep(ctx, s.cfg.PollInterval); err != nil {
			return false
		}

		state, err := s.backend.GetSearch(ctx, id)
		if err != nil {
			s.log.Debug().Err(err).Str("search_id", id).Msg("search state poll failed")
			continue
		}
		if state.IsComplete {
			return true
		}
	}
	return false
}
