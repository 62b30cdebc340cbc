package acquire

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/model"
	"github.com/rlafferty/freshtracks/internal/slskd"
)

// TransferBackend is the slice of the download daemon's API the transfer
// monitor needs.
type TransferBackend interface {
	EnqueueDownload(ctx context.Context, username string, files []slskd.QueueRequest) error
	Downloads(ctx context.Context) ([]slskd.UserDownloads, error)
}

// TransferConfig bounds the transfer monitoring loop.
type TransferConfig struct {
	// PollInterval is the delay between download queue polls.
	PollInterval time.Duration

	// GracePeriod is how long a transfer may stay unobserved in the
	// queue after initiation before it is treated as never started.
	GracePeriod time.Duration
}

// DefaultTransferConfig polls the queue every 10 seconds with a 30 second
// grace period.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		PollInterval: 10 * time.Second,
		GracePeriod:  30 * time.Second,
	}
}

// Monitor drives the initiate → poll → terminal-state protocol for one
// chosen candidate.
type Monitor struct {
	backend TransferBackend
	cfg     TransferConfig
	clock   Clock
	log     zerolog.Logger
}

// NewMonitor creates a Monitor. A nil clock falls back to the system
// clock.
func NewMonitor(backend TransferBackend, cfg TransferConfig, clock Clock, log zerolog.Logger) *Monitor {
	if clock == nil {
		clock = SystemClock()
	}
	return &Monitor{backend: backend, cfg: cfg, clock: clock, log: log}
}

// Initiate requests a transfer of the candidate from its owning peer.
// Returns true when the backend accepted the request.
func (m *Monitor) Initiate(ctx context.Context, c model.CandidateFile) bool {
	err := m.backend.EnqueueDownload(ctx, c.Username, []slskd.QueueRequest{
		{Filename: c.Filename, Size: c.Size},
	})
	if err != nil {
		m.log.Warn().Err(err).
			Str("peer", c.Username).
			Str("file", c.BaseName()).
			Msg("transfer initiation failed")
		return false
	}
	return true
}

// AwaitCompletion polls the backend's download queue until the transfer
// matching the candidate (by peer and filename) reaches a terminal state
// or the timeout budget elapses.
//
// Returns true only for a successful terminal state. A transfer never
// observed in the queue within the grace period counts as failed.
// Partial-progress numbers are logged for diagnostics but do not affect
// the outcome.
func (m *Monitor) AwaitCompletion(ctx context.Context, c model.CandidateFile, timeout time.Duration) bool {
	deadline := m.clock.Now().Add(timeout)
	graceDeadline := m.clock.Now().Add(m.cfg.GracePeriod)
	seen := false

	for m.clock.Now().Before(deadline) {
		if err := m.clock.Sleep(ctx, m.cfg.PollInterval); err != nil {
			return false
		}

		queue, err := m.backend.Downloads(ctx)
		if err != nil {
			m.log.Debug().Err(err).Msg("download queue poll failed")
			continue
		}

		transfer, ok := findTransfer(queue, c)
		if !ok {
			if !seen && m.clock.Now().After(graceDeadline) {
				m.log.Warn().
					Str("peer", c.Username).
					Str("file", c.BaseName()).
					Msg("transfer never appeared in queue")
				return false
			}
			continue
		}
		seen = true

		if transfer.Terminal() {
			if transfer.Succeeded() {
				return true
			}
			m.log.Info().
				Str("peer", c.Username).
				Str("file", c.BaseName()).
				Str("state", transfer.State).
				Msg("transfer failed")
			return false
		}

		m.log.Debug().
			Str("file", c.BaseName()).
			Str("state", transfer.State).
			Int64("bytes", transfer.BytesTransferred).
			Int64("size", transfer.Size).
			Msg("transfer in progress")
	}

	m.log.Warn().
		Str("peer", c.Username).
		Str("file", c.BaseName()).
		Msg("transfer timed out")
	return false
}

func findTransfer(queue []slskd.UserDownloads, c model.CandidateFile) (slskd.Transfer, bool) {
	for _, user := range queue {
		if user.Username != c.Username {
			continue
		}
		for _, dir := range user.Directories {
			for _, tr := range dir.Files {
				if tr.Filename == c.Filename {
					return tr, true
				}
			}
		}
	}
	return slskd.Transfer{}, false
}
