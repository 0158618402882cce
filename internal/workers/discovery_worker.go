package workers

import (
	"context"
	"sync"
	"time"

	"bidpilot_backend/internal/logger"
	"bidpilot_backend/internal/services"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// tenantScanState - состояние сканирования одного арендатора.
type tenantScanState struct {
	scanning   bool
	lastScanAt *time.Time
	lastError  string
}

// DiscoveryWorker выполняет сканирование порталов в фоне.
// Для каждого арендатора одновременно идет не больше одного скана.
type DiscoveryWorker struct {
	db               *gorm.DB
	discoveryService services.DiscoveryService
	rescanInterval   time.Duration

	mu     sync.Mutex
	states map[string]*tenantScanState
}

func NewDiscoveryWorker(db *gorm.DB, discoveryService services.DiscoveryService, rescanInterval time.Duration) *DiscoveryWorker {
	return &DiscoveryWorker{
		db:               db,
		discoveryService: discoveryService,
		rescanInterval:   rescanInterval,
		states:           make(map[string]*tenantScanState),
	}
}

// Trigger запускает скан для арендатора в фоне.
// Если скан уже идет, возвращает ErrScanInFlight.
func (w *DiscoveryWorker) Trigger(ctx context.Context, tenantID string) error {
	w.mu.Lock()
	state, ok := w.states[tenantID]
	if !ok {
		state = &tenantScanState{}
		w.states[tenantID] = state
	}
	if state.scanning {
		w.mu.Unlock()
		return apperrors.ErrScanInFlight
	}
	state.scanning = true
	w.mu.Unlock()

	go w.runScan(tenantID)
	return nil
}

// Status возвращает текущее состояние скана арендатора.
func (w *DiscoveryWorker) Status(tenantID string) dto.ScanStatusResponse {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, ok := w.states[tenantID]
	if !ok {
		return dto.ScanStatusResponse{}
	}
	return dto.ScanStatusResponse{
		Scanning:   state.scanning,
		LastScanAt: state.lastScanAt,
		LastError:  state.lastError,
	}
}

// Start запускает периодическое пересканирование известных арендаторов.
// При rescanInterval == 0 фоновый цикл выключен, сканы идут только по Trigger.
func (w *DiscoveryWorker) Start(ctx context.Context) {
	if w.rescanInterval <= 0 {
		return
	}
	go w.rescanLoop(ctx)
}

func (w *DiscoveryWorker) rescanLoop(ctx context.Context) {
	ticker := time.NewTicker(w.rescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("discovery worker stopped")
			return
		case <-ticker.C:
			for _, tenantID := range w.knownTenants() {
				// Занятые арендаторы пропускаются, это не ошибка
				_ = w.Trigger(ctx, tenantID)
			}
		}
	}
}

func (w *DiscoveryWorker) knownTenants() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tenants := make([]string, 0, len(w.states))
	for tenantID := range w.states {
		tenants = append(tenants, tenantID)
	}
	return tenants
}

func (w *DiscoveryWorker) runScan(tenantID string) {
	ctx := logger.WithTenantID(context.Background(), tenantID)

	created, err := w.discoveryService.Scan(ctx, w.db, tenantID)

	now := time.Now()
	w.mu.Lock()
	state := w.states[tenantID]
	state.scanning = false
	state.lastScanAt = &now
	if err != nil {
		state.lastError = err.Error()
	} else {
		state.lastError = ""
	}
	w.mu.Unlock()

	if err != nil {
		logger.WorkerLog("discovery_worker", "scan", err)
		return
	}
	logger.Info("discovery scan completed", "tenant_id", tenantID, "new_tenders", created)
}
