package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidpilot_backend/internal/services/dto"
)

// fakeDiscoveryAPI эмулирует discovery-эндпоинты с асинхронным сканом.
type fakeDiscoveryAPI struct {
	mu            sync.Mutex
	scanning      bool
	pollsLeft     int // сколько опросов статуса вернут scanning=true
	scanError     string
	tenders       []*dto.TenderResponse
	statusQueries int
}

func (f *fakeDiscoveryAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/discovery/scan", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.scanning {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":{"code":"CONFLICT","domain":"discovery","message":"Scan already in progress for this tenant"}}`))
			return
		}
		f.scanning = true
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"Scan started"}`))
	})

	mux.HandleFunc("GET /api/v1/discovery/scan/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.statusQueries++
		if f.scanning {
			if f.pollsLeft > 0 {
				f.pollsLeft--
			} else {
				f.scanning = false
			}
		}
		json.NewEncoder(w).Encode(dto.ScanStatusResponse{
			Scanning:  f.scanning,
			LastError: f.scanError,
		})
	})

	mux.HandleFunc("GET /api/v1/discovery/tenders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(dto.TenderListResponse{
			Tenders: f.tenders,
			Total:   int64(len(f.tenders)),
		})
	})

	mux.HandleFunc("POST /api/v1/discovery/tenders/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Tender approved"}`))
	})
	mux.HandleFunc("POST /api/v1/discovery/tenders/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Tender rejected"}`))
	})
	mux.HandleFunc("DELETE /api/v1/discovery/tenders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Tender deleted"}`))
	})

	return mux
}

func newTestBoard(t *testing.T, fake *fakeDiscoveryAPI) *TenderBoard {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	return NewTenderBoard(New(server.URL), NopNotifier{}, PollConfig{
		Initial: 5 * time.Millisecond,
		MaxWait: 2 * time.Second,
	})
}

func TestTenderBoard_ScanPollsUntilDone(t *testing.T) {
	fake := &fakeDiscoveryAPI{
		pollsLeft: 3,
		tenders: []*dto.TenderResponse{
			{ID: "t-1", Title: "IT modernization"},
			{ID: "t-2", Title: "Road construction"},
		},
	}
	board := newTestBoard(t, fake)

	require.NoError(t, board.Scan(context.Background()))

	fake.mu.Lock()
	polls := fake.statusQueries
	fake.mu.Unlock()
	assert.GreaterOrEqual(t, polls, 3, "Статус должен опрашиваться до завершения скана")

	// По завершении список перезагружен
	assert.Len(t, board.Tenders(), 2)
	assert.False(t, board.Scanning())
}

func TestTenderBoard_ScanReportsServerError(t *testing.T) {
	fake := &fakeDiscoveryAPI{pollsLeft: 1, scanError: "portal timeout"}
	board := newTestBoard(t, fake)

	err := board.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal timeout")
}

func TestTenderBoard_ScanConflict(t *testing.T) {
	fake := &fakeDiscoveryAPI{scanning: true, pollsLeft: 1000}
	board := newTestBoard(t, fake)

	err := board.Scan(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)
}

func TestTenderBoard_LocalDoubleScanGuard(t *testing.T) {
	fake := &fakeDiscoveryAPI{pollsLeft: 50}
	board := newTestBoard(t, fake)

	done := make(chan error, 1)
	go func() { done <- board.Scan(context.Background()) }()

	// Дожидаемся, пока первый скан займет контроллер
	deadline := time.Now().Add(time.Second)
	for !board.Scanning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, board.Scanning())

	assert.ErrorIs(t, board.Scan(context.Background()), ErrScanInProgress)
	require.NoError(t, <-done)
}

func TestTenderBoard_ModerationRemovesLocally(t *testing.T) {
	fake := &fakeDiscoveryAPI{
		tenders: []*dto.TenderResponse{
			{ID: "t-1", Title: "First"},
			{ID: "t-2", Title: "Second"},
			{ID: "t-3", Title: "Third"},
		},
	}
	board := newTestBoard(t, fake)
	ctx := context.Background()

	require.NoError(t, board.Reload(ctx))
	require.Len(t, board.Tenders(), 3)

	require.NoError(t, board.Approve(ctx, "t-1"))
	assert.Len(t, board.Tenders(), 2, "Одобренный тендер уходит из списка сразу, без reload")

	require.NoError(t, board.Reject(ctx, "t-2"))
	assert.Len(t, board.Tenders(), 1)

	// Delete без подтверждения не выполняется
	declined := false
	require.NoError(t, board.Delete(ctx, "t-3", func() bool { declined = true; return false }))
	assert.True(t, declined)
	assert.Len(t, board.Tenders(), 1)

	require.NoError(t, board.Delete(ctx, "t-3", func() bool { return true }))
	assert.Empty(t, board.Tenders())
}
