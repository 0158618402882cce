package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidpilot_backend/internal/models"
	"bidpilot_backend/test/helpers"
)

type responseBody struct {
	ID          string  `json:"id"`
	TenderID    string  `json:"tender_id"`
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Version     int     `json:"version"`
	Status      string  `json:"status"`
	ApprovedBy  *string `json:"approved_by"`
	SubmittedAt *string `json:"submitted_at"`
}

func TestResponse_GenerateForApprovedTender(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	token, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Bid Writer", helpers.UniqueEmail("writer"), "password123", "tenant-gen", models.UserRoleUser)
	tender := helpers.CreateTestTender(t, ts.DB, "tenant-gen", models.TenderStatusApproved)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/responses/generate", token, map[string]interface{}{
		"tender_id": tender.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "Генерация должна вернуть 201. Ответ: "+body)

	var generated struct {
		Responses []responseBody `json:"responses"`
		Total     int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &generated))
	require.Len(t, generated.Responses, 1, "Без требований создается один общий отклик")

	first := generated.Responses[0]
	assert.Equal(t, "General Response", first.Title)
	assert.Equal(t, "DRAFT", first.Status)
	assert.Equal(t, 1, first.Version)
	assert.NotEmpty(t, first.Text)

	// Повторная генерация не плодит новые черновики, а поднимает версию
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/responses/generate", token, map[string]interface{}{
		"tender_id": tender.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &generated))
	require.Len(t, generated.Responses, 1)
	assert.Equal(t, 2, generated.Responses[0].Version)

	// Для тендера без одобрения генерация запрещена
	pending := helpers.CreateTestTender(t, ts.DB, "tenant-gen", models.TenderStatusPending)
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/responses/generate", token, map[string]interface{}{
		"tender_id": pending.ID,
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "Отклики пишутся только под одобренные тендеры")
}

func TestResponse_RegenerateWithModeAndTone(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	token, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Bid Writer", helpers.UniqueEmail("regen"), "password123", "tenant-regen", models.UserRoleUser)
	tender := helpers.CreateTestTender(t, ts.DB, "tenant-regen", models.TenderStatusApproved)
	response := helpers.CreateTestResponse(t, ts.DB, tender, models.ResponseStatusDraft)

	var regenerated struct {
		responseBody
		Mode string `json:"mode"`
		Tone string `json:"tone"`
	}

	// Без тела перегенерация идет с сохраненными настройками
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/responses/"+response.ID+"/regenerate", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "Перегенерация должна вернуть 200. Ответ: "+body)
	require.NoError(t, json.Unmarshal([]byte(body), &regenerated))
	assert.Equal(t, 2, regenerated.Version)
	assert.Equal(t, "balanced", regenerated.Mode)

	// Явные mode/tone перезаписывают настройки генерации
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/responses/"+response.ID+"/regenerate", token, map[string]interface{}{
		"mode": "creative",
		"tone": "casual",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+body)
	require.NoError(t, json.Unmarshal([]byte(body), &regenerated))
	assert.Equal(t, 3, regenerated.Version)
	assert.Equal(t, "creative", regenerated.Mode)
	assert.Equal(t, "casual", regenerated.Tone)

	// Значения вне набора отклоняются валидатором
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/responses/"+response.ID+"/regenerate", token, map[string]interface{}{
		"mode": "summary",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "Режим вне набора должен давать 400")
}

func TestResponse_EditSubmitApproveFlow(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	writerToken, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Writer", helpers.UniqueEmail("flow_writer"), "password123", "tenant-flow", models.UserRoleUser)
	managerToken, manager := helpers.CreateAndLoginUser(t, ts, ts.DB, "Manager", helpers.UniqueEmail("flow_manager"), "password123", "tenant-flow", models.UserRoleManager)

	tender := helpers.CreateTestTender(t, ts.DB, "tenant-flow", models.TenderStatusApproved)
	response := helpers.CreateTestResponse(t, ts.DB, tender, models.ResponseStatusDraft)
	basePath := "/api/v1/responses/" + response.ID

	// Правка текста поднимает версию
	res, body := ts.SendRequest(t, http.MethodPut, basePath, writerToken, map[string]interface{}{
		"text": "Edited response text, first revision.",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+body)

	var updated responseBody
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "DRAFT", updated.Status)

	// Одобрить черновик нельзя даже менеджеру
	res, _ = ts.SendRequest(t, http.MethodPost, basePath+"/approve", managerToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "Одобрение возможно только из PENDING_REVIEW")

	// Отправка на ревью
	res, body = ts.SendRequest(t, http.MethodPost, basePath+"/submit", writerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.Equal(t, "PENDING_REVIEW", updated.Status)
	assert.NotNil(t, updated.SubmittedAt)

	// Повторный submit
	res, _ = ts.SendRequest(t, http.MethodPost, basePath+"/submit", writerToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Обычному пользователю одобрение недоступно
	res, _ = ts.SendRequest(t, http.MethodPost, basePath+"/approve", writerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Менеджер одобряет
	res, body = ts.SendRequest(t, http.MethodPost, basePath+"/approve", managerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &updated))
	assert.Equal(t, "APPROVED", updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, manager.ID, *updated.ApprovedBy)

	// Одобренный отклик больше не редактируется
	res, _ = ts.SendRequest(t, http.MethodPut, basePath, writerToken, map[string]interface{}{
		"text": "Attempt to edit approved response",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Журнал workflow зафиксировал оба перехода
	res, body = ts.SendRequest(t, http.MethodGet, basePath+"/history", writerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var historyResp struct {
		History []struct {
			FromStatus string `json:"from_status"`
			ToStatus   string `json:"to_status"`
			ActorID    string `json:"actor_id"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &historyResp))
	require.Len(t, historyResp.History, 2)
	assert.Equal(t, "PENDING_REVIEW", historyResp.History[0].ToStatus)
	assert.Equal(t, "APPROVED", historyResp.History[1].ToStatus)
	assert.Equal(t, manager.ID, historyResp.History[1].ActorID)
}

func TestResponse_RejectWithReason(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	managerToken, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Manager", helpers.UniqueEmail("reject_manager"), "password123", "tenant-reject", models.UserRoleManager)

	tender := helpers.CreateTestTender(t, ts.DB, "tenant-reject", models.TenderStatusApproved)
	response := helpers.CreateTestResponse(t, ts.DB, tender, models.ResponseStatusPendingReview)

	res, body := ts.SendRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/responses/%s/reject", response.ID), managerToken, map[string]interface{}{
		"reason": "Pricing section is missing",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "Ответ: "+body)

	var rejected responseBody
	require.NoError(t, json.Unmarshal([]byte(body), &rejected))
	assert.Equal(t, "REJECTED", rejected.Status)

	var history []models.WorkflowHistory
	require.NoError(t, ts.DB.Where("response_id = ?", response.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "Pricing section is missing", history[0].Note)
}

func TestResponse_AuditorReadOnly(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	auditorToken, _ := helpers.CreateAndLoginUser(t, ts, ts.DB, "Auditor", helpers.UniqueEmail("auditor"), "password123", "tenant-audit", models.UserRoleAuditor)

	tender := helpers.CreateTestTender(t, ts.DB, "tenant-audit", models.TenderStatusApproved)
	response := helpers.CreateTestResponse(t, ts.DB, tender, models.ResponseStatusDraft)
	basePath := "/api/v1/responses/" + response.ID

	// Чтение доступно
	res, _ := ts.SendRequest(t, http.MethodGet, basePath, auditorToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	// Любая запись запрещена
	res, _ = ts.SendRequest(t, http.MethodPut, basePath, auditorToken, map[string]interface{}{"text": "audit edit"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, basePath+"/submit", auditorToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodDelete, basePath, auditorToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestResponse_DeleteCascades(t *testing.T) {
	ts := GetTestServer(t)
	ts.ClearTables()

	token, user := helpers.CreateAndLoginUser(t, ts, ts.DB, "Owner", helpers.UniqueEmail("cascade"), "password123", "tenant-cascade", models.UserRoleUser)

	tender := helpers.CreateTestTender(t, ts.DB, "tenant-cascade", models.TenderStatusApproved)
	response := helpers.CreateTestResponse(t, ts.DB, tender, models.ResponseStatusDraft)

	comment := models.ReviewComment{ResponseID: response.ID, AuthorID: user.ID, Text: "to be cascaded"}
	require.NoError(t, ts.DB.Create(&comment).Error)
	entry := models.WorkflowHistory{ResponseID: response.ID, ToStatus: models.ResponseStatusPendingReview, ActorID: user.ID}
	require.NoError(t, ts.DB.Create(&entry).Error)

	res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/responses/"+response.ID, token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var count int64
	ts.DB.Model(&models.ReviewComment{}).Where("response_id = ?", response.ID).Count(&count)
	assert.Zero(t, count, "Комментарии должны удаляться вместе с откликом")

	ts.DB.Model(&models.WorkflowHistory{}).Where("response_id = ?", response.ID).Count(&count)
	assert.Zero(t, count, "Журнал должен удаляться вместе с откликом")

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/responses/"+response.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
