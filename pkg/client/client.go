package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bidpilot_backend/internal/services/dto"
)

// APIError - ошибка уровня API, разобранная из тела ответа сервера.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Domain  string `json:"domain"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d [%s:%s]: %s", e.Status, e.Domain, e.Code, e.Message)
}

// IsConflict сообщает, что сервер ответил 409 (например, скан уже идет).
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Client - HTTP клиент API платформы.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken задает JWT для Authorization заголовка
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken обновляет токен после логина
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return &APIError{Status: resp.StatusCode, Message: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ---------------- Auth ----------------

func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// ---------------- Discovery ----------------

func (c *Client) ListTenders(ctx context.Context, status string) (*dto.TenderListResponse, error) {
	path := "/api/v1/discovery/tenders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp dto.TenderListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TriggerScan(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/discovery/scan", nil, nil)
}

func (c *Client) ScanStatus(ctx context.Context) (*dto.ScanStatusResponse, error) {
	var resp dto.ScanStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/discovery/scan/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ApproveTender(ctx context.Context, tenderID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/discovery/tenders/"+tenderID+"/approve", nil, nil)
}

func (c *Client) RejectTender(ctx context.Context, tenderID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/discovery/tenders/"+tenderID+"/reject", nil, nil)
}

func (c *Client) DeleteTender(ctx context.Context, tenderID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/discovery/tenders/"+tenderID, nil, nil)
}

// ---------------- Responses ----------------

func (c *Client) GenerateResponses(ctx context.Context, req dto.GenerateRequest) ([]*dto.ResponseDTO, error) {
	var resp struct {
		Responses []*dto.ResponseDTO `json:"responses"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/generate", req, &resp); err != nil {
		return nil, err
	}
	return resp.Responses, nil
}

func (c *Client) ListResponses(ctx context.Context, status string) (*dto.ResponseListResponse, error) {
	path := "/api/v1/responses"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp dto.ResponseListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetResponse(ctx context.Context, id string) (*dto.ResponseDTO, error) {
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodGet, "/api/v1/responses/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateResponseText(ctx context.Context, id, text string) (*dto.ResponseDTO, error) {
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodPut, "/api/v1/responses/"+id, dto.UpdateResponseRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitResponse(ctx context.Context, id string) (*dto.ResponseDTO, error) {
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/"+id+"/submit", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ApproveResponse(ctx context.Context, id string) (*dto.ResponseDTO, error) {
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/"+id+"/approve", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RejectResponse(ctx context.Context, id, reason string) (*dto.ResponseDTO, error) {
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/"+id+"/reject", dto.RejectRequest{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegenerateResponse пересоздает текст отклика. Пустые mode/tone оставляют
// сохраненные на сервере настройки генерации.
func (c *Client) RegenerateResponse(ctx context.Context, id, mode, tone string) (*dto.ResponseDTO, error) {
	var body interface{}
	if mode != "" || tone != "" {
		body = dto.RegenerateRequest{Mode: mode, Tone: tone}
	}
	var resp dto.ResponseDTO
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/"+id+"/regenerate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteResponse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/responses/"+id, nil, nil)
}

// ---------------- Comments ----------------

func (c *Client) ListComments(ctx context.Context, responseID string) ([]*dto.CommentResponse, error) {
	var resp struct {
		Comments []*dto.CommentResponse `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/responses/"+responseID+"/comments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *Client) AddComment(ctx context.Context, responseID, text string) (*dto.CommentResponse, error) {
	var resp dto.CommentResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/responses/"+responseID+"/comments", dto.AddCommentRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResolveComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/comments/"+commentID+"/resolve", nil, nil)
}
