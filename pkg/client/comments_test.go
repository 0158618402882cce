package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidpilot_backend/internal/services/dto"
)

type fakeCommentAPI struct {
	mu       sync.Mutex
	comments []*dto.CommentResponse
	listHits int
	nextID   int
}

func (f *fakeCommentAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/responses/resp-1/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listHits++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"comments": f.comments,
			"total":    len(f.comments),
		})
	})

	mux.HandleFunc("POST /api/v1/responses/resp-1/comments", func(w http.ResponseWriter, r *http.Request) {
		var req dto.AddCommentRequest
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		comment := &dto.CommentResponse{
			ID:         "c-" + string(rune('0'+f.nextID)),
			ResponseID: "resp-1",
			Text:       req.Text,
		}
		f.comments = append(f.comments, comment)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(comment)
	})

	mux.HandleFunc("POST /api/v1/comments/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Comment resolved"}`))
	})

	return mux
}

func newTestThread(t *testing.T, fake *fakeCommentAPI) *CommentThread {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewCommentThread(New(server.URL), NopNotifier{}, "resp-1")
}

func TestCommentThread_LazyLoadOnExpand(t *testing.T) {
	fake := &fakeCommentAPI{
		comments: []*dto.CommentResponse{
			{ID: "c-1", Text: "existing comment"},
		},
	}
	thread := newTestThread(t, fake)
	ctx := context.Background()

	// До раскрытия запросов нет
	assert.Zero(t, fake.listHits)
	assert.Empty(t, thread.Comments())

	require.NoError(t, thread.Toggle(ctx))
	assert.True(t, thread.Expanded())
	assert.Len(t, thread.Comments(), 1)
	assert.Equal(t, 1, fake.listHits)

	// Повторное раскрытие не перезагружает
	require.NoError(t, thread.Toggle(ctx))
	assert.False(t, thread.Expanded())
	require.NoError(t, thread.Toggle(ctx))
	assert.Equal(t, 1, fake.listHits)
}

func TestCommentThread_AddRejectsBlank(t *testing.T) {
	fake := &fakeCommentAPI{}
	thread := newTestThread(t, fake)
	ctx := context.Background()

	assert.ErrorIs(t, thread.Add(ctx, "   "), ErrEmptyComment)
	assert.Empty(t, fake.comments, "Пустой комментарий не должен уходить на сервер")

	require.NoError(t, thread.Add(ctx, "real remark"))
	assert.Len(t, thread.Comments(), 1)
}

func TestCommentThread_BlankCommentNotifiesUser(t *testing.T) {
	fake := &fakeCommentAPI{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	notifier := &recordingNotifier{}
	thread := NewCommentThread(New(server.URL), notifier, "resp-1")

	assert.ErrorIs(t, thread.Add(context.Background(), "  "), ErrEmptyComment)

	// Локальный отказ сразу виден пользователю
	require.NotEmpty(t, notifier.Errors(), "Пустой комментарий должен давать уведомление об ошибке")
	assert.Contains(t, notifier.Errors()[0], "empty")
}

func TestCommentThread_ResolveIsLocalOneWay(t *testing.T) {
	fake := &fakeCommentAPI{
		comments: []*dto.CommentResponse{
			{ID: "c-1", Text: "first"},
			{ID: "c-2", Text: "second"},
		},
	}
	thread := newTestThread(t, fake)
	ctx := context.Background()

	require.NoError(t, thread.Toggle(ctx))
	assert.Equal(t, 2, thread.Unresolved())

	require.NoError(t, thread.Resolve(ctx, "c-1"))
	assert.Equal(t, 1, thread.Unresolved())

	comments := thread.Comments()
	assert.True(t, comments[0].Resolved)
	assert.NotNil(t, comments[0].ResolvedAt)
	assert.False(t, comments[1].Resolved)
}
