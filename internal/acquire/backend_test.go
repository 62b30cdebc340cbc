package acquire

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rlafferty/freshtracks/internal/slskd"
)

// fakeBackend is a scriptable stand-in for the slskd client implementing
// both SearchBackend and TransferBackend.
type fakeBackend struct {
	mu sync.Mutex

	// search behavior
	startErr      error
	completeAfter int // state polls before the search reports complete
	responses     []slskd.SearchResponse
	responsesErr  error

	// transfer behavior
	enqueueErr error
	// queueTimeline holds successive Downloads() results; the last entry
	// repeats once exhausted.
	queueTimeline [][]slskd.UserDownloads
	downloadsErr  error

	// call accounting
	startCalls    int
	getCalls      int
	deleteCalls   int
	deletedIDs    []string
	enqueueCalls  int
	downloadCalls int
}

var errFakeBackend = errors.New("fake backend failure")

func (f *fakeBackend) StartSearch(ctx context.Context, text string, timeout time.Duration) (slskd.Search, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return slskd.Search{}, f.startErr
	}
	return slskd.Search{ID: "search-1", State: "InProgress"}, nil
}

func (f *fakeBackend) GetSearch(ctx context.Context, id string) (slskd.Search, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	return slskd.Search{ID: id, IsComplete: f.getCalls > f.completeAfter}, nil
}

func (f *fakeBackend) SearchResponses(ctx context.Context, id string) ([]slskd.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.responsesErr != nil {
		return nil, f.responsesErr
	}
	return f.responses, nil
}

func (f *fakeBackend) DeleteSearch(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeBackend) EnqueueDownload(ctx context.Context, username string, files []slskd.QueueRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueueCalls++
	return f.enqueueErr
}

func (f *fakeBackend) Downloads(ctx context.Context) ([]slskd.UserDownloads, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadCalls++
	if f.downloadsErr != nil {
		return nil, f.downloadsErr
	}
	if len(f.queueTimeline) == 0 {
		return nil, nil
	}
	idx := f.downloadCalls - 1
	if idx >= len(f.queueTimeline) {
		idx = len(f.queueTimeline) - 1
	}
	return f.queueTimeline[idx], nil
}

// queueWith builds a one-peer download queue holding a single transfer.
func queueWith(username, filename, state string, transferred, size int64) []slskd.UserDownloads {
	return []slskd.UserDownloads{
		{
			Username: username,
			Directories: []slskd.Directory{
				{
					Directory: "share",
					Files: []slskd.Transfer{
						{Filename: filename, State: state, BytesTransferred: transferred, Size: size},
					},
				},
			},
		},
	}
}
