package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bidpilot_backend/internal/models"
)

// CreateUser создает пользователя с автоматическим хешированием пароля.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("Не удалось хешировать пароль: %v", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	user.IsActive = true

	result := db.Create(user)
	if result.Error != nil {
		t.Logf("ОШИБКА: не удалось создать пользователя %s: %v", user.Email, result.Error)
		return result.Error
	}

	return nil
}

// CreateAndLoginUser создает пользователя и логинит его через API.
func CreateAndLoginUser(t *testing.T, ts *TestServer, db *gorm.DB, fullName, email, password, tenantID string, role models.UserRole) (string, *models.User) {
	user := &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: password, // сырой, хешируется в CreateUser
		Role:         role,
		TenantID:     tenantID,
	}
	err := CreateUser(t, db, user)
	assert.NoError(t, err, "Создание тестового пользователя не должно вызывать ошибку")

	loginBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", loginBody)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Логин должен быть успешным. Ответ: "+bodyStr)

	var loginResponse struct {
		Token string `json:"token"`
	}
	err = json.Unmarshal([]byte(bodyStr), &loginResponse)
	assert.NoError(t, err, "Не удалось распарсить JSON")
	assert.NotEmpty(t, loginResponse.Token, "Токен не должен быть пустым")

	return loginResponse.Token, user
}

// UniqueEmail генерирует уникальный email для изоляции тестов.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// CreateTestTender создает тендер в нужном статусе напрямую в БД.
func CreateTestTender(t *testing.T, db *gorm.DB, tenantID string, status models.TenderStatus) *models.Tender {
	tender := &models.Tender{
		TenantID:      tenantID,
		ExternalRefID: fmt.Sprintf("TEND-TEST-%d", time.Now().UnixNano()),
		SourcePortal:  "test-portal",
		Title:         "Test tender for integration suite",
		Customer:      "Test Customer",
		Category:      "IT",
		Status:        status,
		MatchScore:    50,
		MatchLabel:    "Related",
	}
	if err := db.Create(tender).Error; err != nil {
		t.Fatalf("Не удалось создать тестовый тендер: %v", err)
	}
	return tender
}

// CreateTestResponse создает отклик в нужном статусе напрямую в БД.
func CreateTestResponse(t *testing.T, db *gorm.DB, tender *models.Tender, status models.ResponseStatus) *models.Response {
	response := &models.Response{
		TenderID: tender.ID,
		TenantID: tender.TenantID,
		Title:    "Test response",
		Text:     "Initial generated response text for testing purposes.",
		Version:  1,
		Status:   status,
		Mode:     models.GenerationModeBalanced,
		Tone:     models.ResponseToneProfessional,
	}
	if err := db.Create(response).Error; err != nil {
		t.Fatalf("Не удалось создать тестовый отклик: %v", err)
	}
	return response
}
