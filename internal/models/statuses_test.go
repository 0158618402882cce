package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenderStatusTransitions(t *testing.T) {
	assert.True(t, TenderStatusPending.CanTransition(TenderStatusApproved))
	assert.True(t, TenderStatusPending.CanTransition(TenderStatusRejected))
	assert.True(t, TenderStatusApproved.CanTransition(TenderStatusArchived))

	// Решенные тендеры обратно в модерацию не возвращаются
	assert.False(t, TenderStatusApproved.CanTransition(TenderStatusPending))
	assert.False(t, TenderStatusRejected.CanTransition(TenderStatusApproved))
	assert.False(t, TenderStatusArchived.CanTransition(TenderStatusPending))
}

func TestResponseStatusTransitions(t *testing.T) {
	assert.True(t, ResponseStatusDraft.CanTransition(ResponseStatusPendingReview))
	assert.True(t, ResponseStatusPendingReview.CanTransition(ResponseStatusApproved))
	assert.True(t, ResponseStatusPendingReview.CanTransition(ResponseStatusRejected))
	assert.True(t, ResponseStatusRejected.CanTransition(ResponseStatusPendingReview))

	// APPROVED - терминальный статус
	assert.False(t, ResponseStatusApproved.CanTransition(ResponseStatusDraft))
	assert.False(t, ResponseStatusApproved.CanTransition(ResponseStatusPendingReview))

	// Черновик нельзя одобрить в обход ревью
	assert.False(t, ResponseStatusDraft.CanTransition(ResponseStatusApproved))
}

func TestResponseStatusIsEditable(t *testing.T) {
	assert.True(t, ResponseStatusDraft.IsEditable())
	assert.True(t, ResponseStatusPendingReview.IsEditable())
	assert.False(t, ResponseStatusApproved.IsEditable())
	assert.False(t, ResponseStatusRejected.IsEditable())
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, UserRoleAdmin.CanApprove())
	assert.True(t, UserRoleManager.CanApprove())
	assert.False(t, UserRoleUser.CanApprove())
	assert.False(t, UserRoleAuditor.CanApprove())

	assert.True(t, UserRoleAuditor.IsReadOnly())
	assert.False(t, UserRoleUser.IsReadOnly())
}
