package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bidpilot_backend/database"
	"bidpilot_backend/internal/composer"
	"bidpilot_backend/internal/email"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
)

type sentStatusEmail struct {
	To     string
	Title  string
	Status string
}

// recordingEmailProvider копит уведомления о смене статуса для проверок.
type recordingEmailProvider struct {
	mu   sync.Mutex
	sent []sentStatusEmail
}

func (p *recordingEmailProvider) Send(e *email.Email) error           { return nil }
func (p *recordingEmailProvider) SendWelcome(to, fullName string) error { return nil }
func (p *recordingEmailProvider) Validate() error                     { return nil }
func (p *recordingEmailProvider) Close() error                        { return nil }

func (p *recordingEmailProvider) SendResponseStatusChanged(to, responseTitle, newStatus string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentStatusEmail{To: to, Title: responseTitle, Status: newStatus})
	return nil
}

func (p *recordingEmailProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *recordingEmailProvider) last() sentStatusEmail {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[len(p.sent)-1]
}

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:respsvc?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Не удалось открыть тестовую БД")
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		for _, table := range []string{"workflow_histories", "review_comments", "responses", "requirements", "tender_attachments", "tenders", "users"} {
			db.Exec("DELETE FROM " + table)
		}
	})
	return db
}

func TestResponseService_EmailsSubmitterOnStatusChange(t *testing.T) {
	db := newServiceTestDB(t)
	provider := &recordingEmailProvider{}

	svc := NewResponseService(
		repositories.NewResponseRepository(),
		repositories.NewTenderRepository(),
		repositories.NewUserRepository(),
		composer.NewTemplateComposer("Test Co"),
		provider,
	)

	writer := &models.User{
		Email:        "writer@test.com",
		FullName:     "Bid Writer",
		PasswordHash: "irrelevant",
		Role:         models.UserRoleUser,
		TenantID:     "tenant-1",
		IsActive:     true,
	}
	require.NoError(t, db.Create(writer).Error)

	manager := &models.User{
		Email:        "manager@test.com",
		FullName:     "Review Manager",
		PasswordHash: "irrelevant",
		Role:         models.UserRoleManager,
		TenantID:     "tenant-1",
		IsActive:     true,
	}
	require.NoError(t, db.Create(manager).Error)

	tender := &models.Tender{
		TenantID:      "tenant-1",
		ExternalRefID: "TEND-EMAIL-1",
		SourcePortal:  "test-portal",
		Title:         "Notification test tender",
		Status:        models.TenderStatusApproved,
	}
	require.NoError(t, db.Create(tender).Error)

	response := &models.Response{
		TenderID: tender.ID,
		TenantID: "tenant-1",
		Title:    "General Response",
		Text:     "Draft response text",
		Version:  1,
		Status:   models.ResponseStatusDraft,
		Mode:     models.GenerationModeBalanced,
		Tone:     models.ResponseToneProfessional,
	}
	require.NoError(t, db.Create(response).Error)

	writerActor := Actor{UserID: writer.ID, TenantID: "tenant-1", Role: models.UserRoleUser}
	_, err := svc.Submit(db, response.ID, writerActor)
	require.NoError(t, err)

	// Отправка письма асинхронная, переход статуса ее не ждет
	require.Eventually(t, func() bool { return provider.count() == 1 },
		time.Second, 10*time.Millisecond, "Submit должен слать письмо автору")

	sent := provider.last()
	assert.Equal(t, "writer@test.com", sent.To)
	assert.Equal(t, "General Response", sent.Title)
	assert.Equal(t, string(models.ResponseStatusPendingReview), sent.Status)

	// Одобрение менеджером уведомляет автора отправки, а не менеджера
	managerActor := Actor{UserID: manager.ID, TenantID: "tenant-1", Role: models.UserRoleManager}
	_, err = svc.Approve(db, response.ID, managerActor)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return provider.count() == 2 },
		time.Second, 10*time.Millisecond, "Approve должен слать письмо автору отправки")

	sent = provider.last()
	assert.Equal(t, "writer@test.com", sent.To)
	assert.Equal(t, string(models.ResponseStatusApproved), sent.Status)
}

func TestResponseService_RegenerateOverridesModeAndTone(t *testing.T) {
	db := newServiceTestDB(t)

	svc := NewResponseService(
		repositories.NewResponseRepository(),
		repositories.NewTenderRepository(),
		repositories.NewUserRepository(),
		composer.NewTemplateComposer("Test Co"),
		&recordingEmailProvider{},
	)

	tender := &models.Tender{
		TenantID:      "tenant-1",
		ExternalRefID: "TEND-REGEN-1",
		SourcePortal:  "test-portal",
		Title:         "Regeneration test tender",
		Status:        models.TenderStatusApproved,
	}
	require.NoError(t, db.Create(tender).Error)

	response := &models.Response{
		TenderID: tender.ID,
		TenantID: "tenant-1",
		Title:    "General Response",
		Text:     "Original draft",
		Version:  1,
		Status:   models.ResponseStatusDraft,
		Mode:     models.GenerationModeBalanced,
		Tone:     models.ResponseToneProfessional,
	}
	require.NoError(t, db.Create(response).Error)

	actor := Actor{UserID: "user-1", TenantID: "tenant-1", Role: models.UserRoleUser}

	// Без параметров перегенерация идет с сохраненными настройками
	regenerated, err := svc.Regenerate(context.Background(), db, response.ID, "", "", actor)
	require.NoError(t, err)
	assert.Equal(t, string(models.GenerationModeBalanced), regenerated.Mode)
	assert.Equal(t, 2, regenerated.Version)

	regenerated, err = svc.Regenerate(context.Background(), db, response.ID, models.GenerationModeAggressive, models.ResponseToneAcademic, actor)
	require.NoError(t, err)
	assert.Equal(t, string(models.GenerationModeAggressive), regenerated.Mode)
	assert.Equal(t, string(models.ResponseToneAcademic), regenerated.Tone)
	assert.Equal(t, 3, regenerated.Version)
	assert.Contains(t, regenerated.Text, "proven delivery record")

	// Новые настройки сохранены
	stored, err := svc.GetResponse(db, response.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.GenerationModeAggressive), stored.Mode)
	assert.Equal(t, string(models.ResponseToneAcademic), stored.Tone)
}
