package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"bidpilot_backend/internal/services/dto"
)

// ErrEmptyComment - попытка отправить пустой комментарий.
var ErrEmptyComment = errors.New("comment text is empty")

// CommentThread - контроллер треда комментариев ревью.
// Комментарии загружаются лениво, при первом раскрытии треда.
type CommentThread struct {
	api        *Client
	notifier   Notifier
	responseID string

	expanded bool
	loaded   bool
	comments []*dto.CommentResponse
}

func NewCommentThread(api *Client, notifier Notifier, responseID string) *CommentThread {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &CommentThread{api: api, notifier: notifier, responseID: responseID}
}

func (t *CommentThread) Expanded() bool { return t.expanded }

// Comments возвращает снимок загруженных комментариев.
func (t *CommentThread) Comments() []*dto.CommentResponse {
	out := make([]*dto.CommentResponse, len(t.comments))
	copy(out, t.comments)
	return out
}

// Unresolved считает нерешенные комментарии (для бейджа на кнопке).
func (t *CommentThread) Unresolved() int {
	n := 0
	for _, c := range t.comments {
		if !c.Resolved {
			n++
		}
	}
	return n
}

// Toggle раскрывает или сворачивает тред. Первое раскрытие
// подтягивает комментарии с сервера.
func (t *CommentThread) Toggle(ctx context.Context) error {
	if t.expanded {
		t.expanded = false
		return nil
	}
	t.expanded = true
	if !t.loaded {
		return t.Reload(ctx)
	}
	return nil
}

func (t *CommentThread) Reload(ctx context.Context) error {
	comments, err := t.api.ListComments(ctx, t.responseID)
	if err != nil {
		t.notifier.Error("Failed to load comments")
		return err
	}
	t.comments = comments
	t.loaded = true
	return nil
}

// Add отправляет комментарий. Пустой текст отбрасывается до запроса.
func (t *CommentThread) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		t.notifier.Error("Comment text cannot be empty")
		return ErrEmptyComment
	}

	comment, err := t.api.AddComment(ctx, t.responseID, text)
	if err != nil {
		t.notifier.Error("Failed to add comment")
		return err
	}

	t.comments = append(t.comments, comment)
	t.notifier.Success("Comment added")
	return nil
}

// Resolve помечает комментарий решенным. Операция необратима,
// локальная копия патчится сразу.
func (t *CommentThread) Resolve(ctx context.Context, commentID string) error {
	if err := t.api.ResolveComment(ctx, commentID); err != nil {
		t.notifier.Error("Failed to resolve comment")
		return err
	}

	now := time.Now()
	for _, c := range t.comments {
		if c.ID == commentID {
			c.Resolved = true
			c.ResolvedAt = &now
			break
		}
	}
	return nil
}
