package client

import "log/slog"

// Notifier получает уведомления о результатах операций (аналог toast в UI).
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// LogNotifier пишет уведомления в slog. Используется по умолчанию.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { slog.Info(msg, "kind", "success") }
func (LogNotifier) Error(msg string)   { slog.Error(msg, "kind", "error") }
func (LogNotifier) Info(msg string)    { slog.Info(msg, "kind", "info") }

// NopNotifier глушит уведомления
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
func (NopNotifier) Info(string)    {}
