package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bidpilot_backend/internal/services"
	"bidpilot_backend/pkg/apperrors"
)

// stubDiscoveryService блокируется на канале, чтобы тест мог удерживать
// скан "в полете" сколько нужно.
type stubDiscoveryService struct {
	services.DiscoveryService

	mu      sync.Mutex
	calls   int
	release chan struct{}
	err     error
}

func (s *stubDiscoveryService) Scan(ctx context.Context, db *gorm.DB, tenantID string) (int, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.release != nil {
		<-s.release
	}
	return 3, s.err
}

func (s *stubDiscoveryService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func waitForIdle(t *testing.T, w *DiscoveryWorker, tenantID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !w.Status(tenantID).Scanning {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("скан не завершился за отведенное время")
}

func TestDiscoveryWorker_SingleFlightPerTenant(t *testing.T) {
	stub := &stubDiscoveryService{release: make(chan struct{})}
	worker := NewDiscoveryWorker(nil, stub, 0)

	require.NoError(t, worker.Trigger(context.Background(), "tenant-a"))

	// Пока первый скан не завершен, повторный запуск отклоняется
	err := worker.Trigger(context.Background(), "tenant-a")
	assert.ErrorIs(t, err, apperrors.ErrScanInFlight)

	// Другой арендатор не блокируется
	require.NoError(t, worker.Trigger(context.Background(), "tenant-b"))

	close(stub.release)
	waitForIdle(t, worker, "tenant-a")
	waitForIdle(t, worker, "tenant-b")

	assert.Equal(t, 2, stub.callCount())

	// После завершения скан можно запустить снова
	stub.release = nil
	require.NoError(t, worker.Trigger(context.Background(), "tenant-a"))
	waitForIdle(t, worker, "tenant-a")
}

func TestDiscoveryWorker_StatusReportsLastError(t *testing.T) {
	stub := &stubDiscoveryService{err: errors.New("portal unreachable")}
	worker := NewDiscoveryWorker(nil, stub, 0)

	// До первого скана статус пустой
	status := worker.Status("tenant-x")
	assert.False(t, status.Scanning)
	assert.Nil(t, status.LastScanAt)

	require.NoError(t, worker.Trigger(context.Background(), "tenant-x"))
	waitForIdle(t, worker, "tenant-x")

	status = worker.Status("tenant-x")
	assert.Equal(t, "portal unreachable", status.LastError)
	assert.NotNil(t, status.LastScanAt)

	// Успешный скан сбрасывает ошибку
	stub.err = nil
	require.NoError(t, worker.Trigger(context.Background(), "tenant-x"))
	waitForIdle(t, worker, "tenant-x")

	status = worker.Status("tenant-x")
	assert.Empty(t, status.LastError)
}
