package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidpilot_backend/internal/models"
	"bidpilot_backend/test/helpers"
)

// waitScanFinished опрашивает статус скана, пока воркер не закончит.
func waitScanFinished(t *testing.T, ts *helpers.TestServer, token string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/scan/status", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		var status struct {
			Scanning  bool   `json:"scanning"`
			LastError string `json:"last_error"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &status))

		if !status.Scanning {
			require.Empty(t, status.LastError, "Скан не должен завершаться с ошибкой")
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("Скан не завершился за отведенное время")
}

func TestDiscovery_ScanAndList(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	token, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Scan User", helpers.UniqueEmail("scan"), "password123", "tenant-scan", models.UserRoleUser)

	// Запуск скана принимается асинхронно
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/discovery/scan", token, nil)
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	waitScanFinished(t, ts, token)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/tenders", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var list struct {
		Tenders []struct {
			ID            string `json:"id"`
			ExternalRefID string `json:"external_ref_id"`
			Title         string `json:"title"`
			Customer      string `json:"customer"`
			MatchScore    int    `json:"match_score"`
			MatchLabel    string `json:"match_label"`
			Status        string `json:"status"`
			Attachments   []struct {
				FileName string `json:"file_name"`
			} `json:"attachments"`
		} `json:"tenders"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Tenders, 2, "Мок-портал отдает два тендера. Ответ: "+body)

	byRef := map[string]int{}
	for i, tender := range list.Tenders {
		byRef[tender.ExternalRefID] = i
		assert.Equal(t, "PENDING", tender.Status, "Новые находки ждут модерации")
		assert.NotEmpty(t, tender.MatchLabel)
	}

	defense := list.Tenders[byRef["TEND-2024-001"]]
	assert.Equal(t, "Ministry of Defense", defense.Customer)
	assert.Len(t, defense.Attachments, 2, "У тендера минобороны два вложения")

	cloud := list.Tenders[byRef["TEND-2024-002"]]
	assert.Equal(t, "Public Health Authority", cloud.Customer)
	assert.Len(t, cloud.Attachments, 1)

	// Повторный скан не плодит дубликатов
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/discovery/scan", token, nil)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	waitScanFinished(t, ts, token)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/tenders", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Tenders, 2, "Повторный скан должен дедуплицировать по external_ref_id")
}

func TestDiscovery_Moderation(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	userToken, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Plain User", helpers.UniqueEmail("user"), "password123", "tenant-mod", models.UserRoleUser)
	managerToken, manager := helpers.CreateAndLoginUser(t, ts, ts.DB, "Manager", helpers.UniqueEmail("manager"), "password123", "tenant-mod", models.UserRoleManager)

	tender := helpers.CreateTestTender(t, ts.DB, "tenant-mod", models.TenderStatusPending)
	approvePath := fmt.Sprintf("/api/v1/discovery/tenders/%s/approve", tender.ID)

	// Обычному пользователю модерация запрещена
	res, _ := ts.SendRequest(t, http.MethodPost, approvePath, userToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Менеджер одобряет
	res, _ = ts.SendRequest(t, http.MethodPost, approvePath, managerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var stored models.Tender
	require.NoError(t, ts.DB.First(&stored, "id = ?", tender.ID).Error)
	assert.Equal(t, models.TenderStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, manager.ID, *stored.ReviewedBy)
	assert.NotNil(t, stored.ReviewedAt)

	// Повторная модерация уже решенного тендера
	res, _ = ts.SendRequest(t, http.MethodPost, approvePath, managerToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "Модерация разрешена только из PENDING")

	// Отклонение второго тендера
	rejected := helpers.CreateTestTender(t, ts.DB, "tenant-mod", models.TenderStatusPending)
	res, _ = ts.SendRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/discovery/tenders/%s/reject", rejected.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.NoError(t, ts.DB.First(&stored, "id = ?", rejected.ID).Error)
	assert.Equal(t, models.TenderStatusRejected, stored.Status)

	// Удаление
	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/discovery/tenders/"+rejected.ID, managerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/tenders/"+rejected.ID, managerToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDiscovery_StatusFilter(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	token, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Filter User", helpers.UniqueEmail("filter"), "password123", "tenant-filter", models.UserRoleUser)

	helpers.CreateTestTender(t, ts.DB, "tenant-filter", models.TenderStatusPending)
	helpers.CreateTestTender(t, ts.DB, "tenant-filter", models.TenderStatusApproved)
	helpers.CreateTestTender(t, ts.DB, "tenant-filter", models.TenderStatusApproved)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/tenders?status=APPROVED", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var list struct {
		Tenders []struct {
			Status string `json:"status"`
		} `json:"tenders"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Tenders, 2)
	assert.EqualValues(t, 2, list.Total)

	// Невалидный статус отклоняется валидатором
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/discovery/tenders?status=BOGUS", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
