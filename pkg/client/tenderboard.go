package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"bidpilot_backend/internal/services/dto"
)

// ErrScanInProgress возвращается при попытке запустить скан, пока идет предыдущий.
var ErrScanInProgress = errors.New("scan already in progress")

// ErrScanTimeout возвращается, если скан не завершился за отведенное окно опроса.
var ErrScanTimeout = errors.New("scan did not finish within polling window")

// PollConfig - параметры опроса статуса скана.
// Вместо фиксированного интервала используется экспоненциальный
// backoff с верхней границей общего времени ожидания.
type PollConfig struct {
	Initial time.Duration
	MaxWait time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Initial: 500 * time.Millisecond,
		MaxWait: 30 * time.Second,
	}
}

// TenderBoard - контроллер доски находок: список тендеров,
// запуск сканирования и модерация.
type TenderBoard struct {
	api      *Client
	notifier Notifier
	poll     PollConfig

	mu       sync.Mutex
	tenders  []*dto.TenderResponse
	filter   string
	scanning bool
}

func NewTenderBoard(api *Client, notifier Notifier, poll PollConfig) *TenderBoard {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if poll.Initial <= 0 {
		poll = DefaultPollConfig()
	}
	return &TenderBoard{api: api, notifier: notifier, poll: poll}
}

// Tenders возвращает снимок текущего списка.
func (b *TenderBoard) Tenders() []*dto.TenderResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*dto.TenderResponse, len(b.tenders))
	copy(out, b.tenders)
	return out
}

func (b *TenderBoard) Scanning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scanning
}

// SetFilter меняет фильтр по статусу и перезагружает список.
func (b *TenderBoard) SetFilter(ctx context.Context, status string) error {
	b.mu.Lock()
	b.filter = status
	b.mu.Unlock()
	return b.Reload(ctx)
}

func (b *TenderBoard) Reload(ctx context.Context) error {
	b.mu.Lock()
	filter := b.filter
	b.mu.Unlock()

	list, err := b.api.ListTenders(ctx, filter)
	if err != nil {
		b.notifier.Error("Failed to load tenders")
		return err
	}

	b.mu.Lock()
	b.tenders = list.Tenders
	b.mu.Unlock()
	return nil
}

// Scan запускает сканирование и дожидается его завершения,
// опрашивая статус с экспоненциальным backoff. По окончании
// список перезагружается независимо от исхода скана.
func (b *TenderBoard) Scan(ctx context.Context) error {
	b.mu.Lock()
	if b.scanning {
		b.mu.Unlock()
		return ErrScanInProgress
	}
	b.scanning = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.scanning = false
		b.mu.Unlock()
		_ = b.Reload(ctx)
	}()

	if err := b.api.TriggerScan(ctx); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			b.notifier.Info("Scan already running")
			return ErrScanInProgress
		}
		b.notifier.Error("Failed to start scan")
		return err
	}
	b.notifier.Info("Scan started")

	status, err := b.waitForScan(ctx)
	if err != nil {
		b.notifier.Error("Scan polling failed")
		return err
	}
	if status.LastError != "" {
		b.notifier.Error("Scan finished with error: " + status.LastError)
		return fmt.Errorf("scan failed: %s", status.LastError)
	}

	b.notifier.Success("Scan complete")
	return nil
}

func (b *TenderBoard) waitForScan(ctx context.Context) (*dto.ScanStatusResponse, error) {
	backoff := retry.NewExponential(b.poll.Initial)
	backoff = retry.WithCappedDuration(5*time.Second, backoff)
	backoff = retry.WithMaxDuration(b.poll.MaxWait, backoff)

	var last *dto.ScanStatusResponse
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, err := b.api.ScanStatus(ctx)
		if err != nil {
			// Сетевые сбои не прерывают опрос
			return retry.RetryableError(err)
		}
		last = status
		if status.Scanning {
			return retry.RetryableError(ErrScanTimeout)
		}
		return nil
	})
	if err != nil {
		if last != nil && last.Scanning {
			return nil, ErrScanTimeout
		}
		return nil, err
	}
	return last, nil
}

// Approve одобряет тендер и оптимистично убирает его из списка PENDING.
func (b *TenderBoard) Approve(ctx context.Context, tenderID string) error {
	if err := b.api.ApproveTender(ctx, tenderID); err != nil {
		b.notifier.Error("Failed to approve tender")
		return err
	}
	b.removeLocal(tenderID)
	b.notifier.Success("Tender approved")
	return nil
}

// Reject отклоняет тендер и оптимистично убирает его из списка.
func (b *TenderBoard) Reject(ctx context.Context, tenderID string) error {
	if err := b.api.RejectTender(ctx, tenderID); err != nil {
		b.notifier.Error("Failed to reject tender")
		return err
	}
	b.removeLocal(tenderID)
	b.notifier.Success("Tender rejected")
	return nil
}

// Delete удаляет тендер после подтверждения. Без confirm не выполняется.
func (b *TenderBoard) Delete(ctx context.Context, tenderID string, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	if err := b.api.DeleteTender(ctx, tenderID); err != nil {
		b.notifier.Error("Failed to delete tender")
		return err
	}
	b.removeLocal(tenderID)
	b.notifier.Success("Tender deleted")
	return nil
}

func (b *TenderBoard) removeLocal(tenderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filtered := b.tenders[:0]
	for _, t := range b.tenders {
		if t.ID != tenderID {
			filtered = append(filtered, t)
		}
	}
	b.tenders = filtered
}
