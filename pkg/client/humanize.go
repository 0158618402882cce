package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Разрешенные документы для обработки
var allowedMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// MaxUploadSize - лимит размера загружаемого документа.
const MaxUploadSize = 10 * 1024 * 1024

// FileValidationError - отказ валидации файла с типизированной причиной.
type FileValidationError struct {
	Reason  string // "fileType" или "fileSize"
	Message string
}

func (e *FileValidationError) Error() string { return e.Message }

// ValidateFile проверяет документ перед отправкой в сервис хуманизации.
// Принимаются PDF, DOC, DOCX и TXT размером до 10 МБ. Если MIME тип
// не распознан (пустой или octet-stream), решает расширение имени.
func ValidateFile(name string, size int64, mimeType string) error {
	if size > MaxUploadSize {
		return &FileValidationError{
			Reason:  "fileSize",
			Message: fmt.Sprintf("file exceeds %d MB limit", MaxUploadSize/(1024*1024)),
		}
	}

	if allowedMIMETypes[mimeType] {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	if allowedExtensions[ext] {
		return nil
	}

	return &FileValidationError{
		Reason:  "fileType",
		Message: "unsupported file type, expected PDF, DOC, DOCX or TXT",
	}
}

// HumanizeOptions - параметры запроса к сервису хуманизации.
type HumanizeOptions struct {
	MaxAIPercentage int
	MaxAttempts     int
	Style           string
	Mode            string
}

func defaultHumanizeOptions() HumanizeOptions {
	return HumanizeOptions{
		MaxAIPercentage: 10,
		MaxAttempts:     4,
		Style:           "professional",
		Mode:            "balanced",
	}
}

// HumanizeResult - нормализованный результат хуманизации.
type HumanizeResult struct {
	Text          string
	OriginalScore float64
	FinalScore    float64
	Reduction     string
}

// rawHumanizeResponse покрывает оба поколения API сервиса:
// старые поля (transformed/original_score/new_score) и новые
// (humanized_text/original_ai_percentage/final_ai_percentage).
// reduction приходит то строкой, то числом.
type rawHumanizeResponse struct {
	Transformed   string `json:"transformed"`
	HumanizedText string `json:"humanized_text"`

	OriginalScore        *float64 `json:"original_score"`
	OriginalAIPercentage *float64 `json:"original_ai_percentage"`

	NewScore          *float64 `json:"new_score"`
	FinalAIPercentage *float64 `json:"final_ai_percentage"`

	Reduction json.RawMessage `json:"reduction"`

	Error string `json:"error"`
}

func (r *rawHumanizeResponse) normalize() (*HumanizeResult, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("humanizer error: %s", r.Error)
	}

	text := r.Transformed
	if text == "" {
		text = r.HumanizedText
	}
	if text == "" {
		return nil, fmt.Errorf("humanizer returned no text")
	}

	result := &HumanizeResult{Text: text}

	if r.OriginalScore != nil {
		result.OriginalScore = *r.OriginalScore
	} else if r.OriginalAIPercentage != nil {
		result.OriginalScore = *r.OriginalAIPercentage
	}

	if r.NewScore != nil {
		result.FinalScore = *r.NewScore
	} else if r.FinalAIPercentage != nil {
		result.FinalScore = *r.FinalAIPercentage
	}

	result.Reduction = normalizeReduction(r.Reduction)
	return result, nil
}

// normalizeReduction приводит reduction к строке вида "42%".
func normalizeReduction(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s != "" && !strings.HasSuffix(s, "%") {
			return s + "%"
		}
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64) + "%"
	}

	return ""
}

// Humanizer - клиент внешнего сервиса снижения AI-детектируемости текста.
type Humanizer struct {
	baseURL    string
	httpClient *http.Client
	opts       HumanizeOptions
}

type HumanizerOption func(*Humanizer)

func WithHumanizeOptions(opts HumanizeOptions) HumanizerOption {
	return func(h *Humanizer) { h.opts = opts }
}

func WithHumanizerHTTPClient(hc *http.Client) HumanizerOption {
	return func(h *Humanizer) { h.httpClient = hc }
}

func NewHumanizer(baseURL string, opts ...HumanizerOption) *Humanizer {
	h := &Humanizer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		opts:       defaultHumanizeOptions(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HumanizeText обрабатывает сырой текст.
func (h *Humanizer) HumanizeText(ctx context.Context, text string) (*HumanizeResult, error) {
	return h.submit(ctx, func(w *multipart.Writer) error {
		return w.WriteField("text", text)
	})
}

// HumanizeFile обрабатывает документ. Файл проходит валидацию
// типа и размера до отправки.
func (h *Humanizer) HumanizeFile(ctx context.Context, name string, size int64, mimeType string, content io.Reader) (*HumanizeResult, error) {
	if err := ValidateFile(name, size, mimeType); err != nil {
		return nil, err
	}

	return h.submit(ctx, func(w *multipart.Writer) error {
		part, err := w.CreateFormFile("file", name)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, content)
		return err
	})
}

// ExtractText вытаскивает плоский текст из документа. Файл проходит
// ту же валидацию типа и размера, что и при хуманизации.
func (h *Humanizer) ExtractText(ctx context.Context, name string, size int64, mimeType string, content io.Reader) (string, error) {
	if err := ValidateFile(name, size, mimeType); err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/extract-text", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("humanizer unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode extract-text response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != "" {
			return "", fmt.Errorf("humanizer error: %s", parsed.Error)
		}
		return "", fmt.Errorf("humanizer returned status %d", resp.StatusCode)
	}

	return parsed.Text, nil
}

func (h *Humanizer) submit(ctx context.Context, writePayload func(*multipart.Writer) error) (*HumanizeResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writePayload(writer); err != nil {
		return nil, fmt.Errorf("failed to build multipart payload: %w", err)
	}

	fields := map[string]string{
		"max_ai_percentage": strconv.Itoa(h.opts.MaxAIPercentage),
		"max_attempts":      strconv.Itoa(h.opts.MaxAttempts),
		"style":             h.opts.Style,
		"mode":              h.opts.Mode,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/humanizer", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("humanizer unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var raw rawHumanizeResponse
		if err := json.Unmarshal(data, &raw); err == nil && raw.Error != "" {
			return nil, fmt.Errorf("humanizer error: %s", raw.Error)
		}
		return nil, fmt.Errorf("humanizer returned status %d", resp.StatusCode)
	}

	var raw rawHumanizeResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode humanizer response: %w", err)
	}

	return raw.normalize()
}
