package acquire

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/match"
	"github.com/rlafferty/freshtracks/internal/model"
	"github.com/rlafferty/freshtracks/internal/slskd"
)

type fakeImporter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeImporter) Import(ctx context.Context, track model.WantedTrack, srcPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, srcPath)
	if f.err != nil {
		return "", f.err
	}
	return "/music/current/" + track.Artist + " - " + track.Title + ".flac", nil
}

func testOrchestratorConfig() Config {
	return Config{
		MaxAttempts:        3,
		BaseRetryDelay:     time.Second,
		StuckThreshold:     10 * time.Minute,
		AttachPollInterval: time.Second,
		DownloadTimeout:    5 * time.Minute,
		BatchSize:          2,
		BatchPause:         time.Second,
		Thresholds:         match.DefaultThresholds(),
	}
}

func newTestOrchestrator(backend *fakeBackend, importer Importer) (*Orchestrator, *fakeClock) {
	clock := newFakeClock()
	log := zerolog.Nop()

	searchCfg := SearchConfig{PollInterval: time.Second, MaxPolls: 3, RequestTimeout: 10 * time.Second}
	transferCfg := TransferConfig{PollInterval: 10 * time.Second, GracePeriod: 30 * time.Second}

	return NewOrchestrator(
		testOrchestratorConfig(),
		NewTracker(clock),
		NewSearcher(backend, searchCfg, clock, log),
		NewMonitor(backend, transferCfg, clock, log),
		match.NewFilter(0, 0),
		importer,
		"/downloads",
		clock,
		log,
		nil,
	), clock
}

func goodSearchResponses() []slskd.SearchResponse {
	return []slskd.SearchResponse{
		{
			Username: "peer1",
			Files: []slskd.File{
				{Filename: `share\Foo - Bar.flac`, Size: 8 << 20, BitRate: 900},
			},
		},
	}
}

func TestOrchestrator_HappyPathSingleAttempt(t *testing.T) {
	backend := &fakeBackend{
		completeAfter: 1,
		responses:     goodSearchResponses(),
		queueTimeline: [][]slskd.UserDownloads{
			queueWith("peer1", `share\Foo - Bar.flac`, "InProgress", 1 << 20, 8 << 20),
			queueWith("peer1", `share\Foo - Bar.flac`, "Completed, Succeeded", 8 << 20, 8 << 20),
		},
	}
	importer := &fakeImporter{}
	o, _ := newTestOrchestrator(backend, importer)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	if !o.Acquire(context.Background(), track) {
		t.Fatal("Acquire = false, want true")
	}
	if backend.startCalls != 1 {
		t.Errorf("searched %d times, want 1", backend.startCalls)
	}
	if got := o.Tracker().Lookup(track.Key()); got != StateCompleted {
		t.Errorf("tracker state = %v, want %v", got, StateCompleted)
	}
	if len(importer.calls) != 1 || importer.calls[0] != "/downloads/Foo - Bar.flac" {
		t.Errorf("importer calls = %v", importer.calls)
	}
}

func TestOrchestrator_NoResultsExhaustsAttempts(t *testing.T) {
	backend := &fakeBackend{completeAfter: 1} // searches complete, zero responses
	o, _ := newTestOrchestrator(backend, nil)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	if o.Acquire(context.Background(), track) {
		t.Fatal("Acquire = true, want false")
	}
	if backend.startCalls != 3 {
		t.Errorf("searched %d times, want exactly MaxAttempts (3)", backend.startCalls)
	}
	if got := o.Tracker().Lookup(track.Key()); got != StateFailed {
		t.Errorf("tracker state = %v, want %v", got, StateFailed)
	}
}

func TestOrchestrator_CompletedShortCircuits(t *testing.T) {
	backend := &fakeBackend{}
	o, _ := newTestOrchestrator(backend, nil)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	o.Tracker().MarkCompleted(track.Key())

	if !o.Acquire(context.Background(), track) {
		t.Fatal("Acquire = false for completed track")
	}
	if backend.startCalls+backend.enqueueCalls+backend.downloadCalls != 0 {
		t.Error("completed track must not touch the backend")
	}
}

func TestOrchestrator_FailureIsCached(t *testing.T) {
	backend := &fakeBackend{completeAfter: 1}
	o, _ := newTestOrchestrator(backend, nil)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	if o.Acquire(context.Background(), track) {
		t.Fatal("first Acquire should fail")
	}
	searchesAfterFirst := backend.startCalls

	if o.Acquire(context.Background(), track) {
		t.Fatal("second Acquire should fail")
	}
	if backend.startCalls != searchesAfterFirst {
		t.Error("cached failure must not re-search")
	}
}

func TestOrchestrator_TransferFailureRetries(t *testing.T) {
	backend := &fakeBackend{
		completeAfter: 1,
		responses:     goodSearchResponses(),
		queueTimeline: [][]slskd.UserDownloads{
			queueWith("peer1", `share\Foo - Bar.flac`, "Completed, Errored", 0, 8 << 20),
		},
	}
	o, _ := newTestOrchestrator(backend, nil)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	if o.Acquire(context.Background(), track) {
		t.Fatal("Acquire = true despite failing transfers")
	}
	if backend.enqueueCalls != 3 {
		t.Errorf("initiated %d transfers, want one per attempt (3)", backend.enqueueCalls)
	}
}

func TestOrchestrator_ImportFailureIsNonFatal(t *testing.T) {
	backend := &fakeBackend{
		completeAfter: 1,
		responses:     goodSearchResponses(),
		queueTimeline: [][]slskd.UserDownloads{
			queueWith("peer1", `share\Foo - Bar.flac`, "Completed, Succeeded", 8 << 20, 8 << 20),
		},
	}
	importer := &fakeImporter{err: errors.New("tagging tool exploded")}
	o, _ := newTestOrchestrator(backend, importer)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	if !o.Acquire(context.Background(), track) {
		t.Error("Acquire = false, want true: import failures are warnings")
	}
	if got := o.Tracker().Lookup(track.Key()); got != StateCompleted {
		t.Errorf("tracker state = %v, want %v", got, StateCompleted)
	}
}

func TestOrchestrator_StuckActiveIsReclaimed(t *testing.T) {
	backend := &fakeBackend{
		completeAfter: 1,
		responses:     goodSearchResponses(),
		queueTimeline: [][]slskd.UserDownloads{
			queueWith("peer1", `share\Foo - Bar.flac`, "Completed, Succeeded", 8 << 20, 8 << 20),
		},
	}
	o, clock := newTestOrchestrator(backend, nil)
	track := model.WantedTrack{Artist: "Foo", Title: "Bar"}

	// Simulate an acquisition that got stuck long ago.
	o.Tracker().MarkActive(track.Key())
	clock.Advance(time.Hour)

	if !o.Acquire(context.Background(), track) {
		t.Fatal("Acquire = false, want reclaim and fresh acquisition")
	}
	if backend.startCalls != 1 {
		t.Errorf("searched %d times, want 1", backend.startCalls)
	}
}

func TestOrchestrator_AcquireAllBatches(t *testing.T) {
	backend := &fakeBackend{completeAfter: 1} // all searches come back empty
	o, _ := newTestOrchestrator(backend, nil)

	tracks := []model.WantedTrack{
		{Artist: "A", Title: "One"},
		{Artist: "B", Title: "Two"},
		{Artist: "C", Title: "Three"},
		{Artist: "D", Title: "Four"},
		{Artist: "E", Title: "Five"},
	}

	summary := o.AcquireAll(context.Background(), tracks)

	if len(summary.Acquired) != 0 {
		t.Errorf("acquired %d tracks, want 0", len(summary.Acquired))
	}
	if len(summary.Failed) != len(tracks) {
		t.Errorf("failed %d tracks, want %d", len(summary.Failed), len(tracks))
	}
	// Each track retried MaxAttempts times.
	if backend.startCalls != len(tracks)*3 {
		t.Errorf("searched %d times, want %d", backend.startCalls, len(tracks)*3)
	}
}

func TestOrchestrator_AcquireAllDeduplicates(t *testing.T) {
	backend := &fakeBackend{
		completeAfter: 1,
		responses:     goodSearchResponses(),
		queueTimeline: [][]slskd.UserDownloads{
			queueWith("peer1", `share\Foo - Bar.flac`, "Completed, Succeeded", 8 << 20, 8 << 20),
		},
	}
	o, _ := newTestOrchestrator(backend, nil)

	// The same track spelled two ways lands in different batches and must
	// be acquired only once.
	tracks := []model.WantedTrack{
		{Artist: "Foo", Title: "Bar"},
		{Artist: "Other", Title: "Thing"},
		{Artist: "foo!", Title: "BAR"},
	}

	summary := o.AcquireAll(context.Background(), tracks)

	var fooAcquired int
	for _, tr := range summary.Acquired {
		if tr.Key() == "foo|bar" {
			fooAcquired++
		}
	}
	if fooAcquired != 2 {
		t.Errorf("both spellings should report acquired, got %d", fooAcquired)
	}
}
