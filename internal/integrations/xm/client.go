package xm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент удаленного сервиса совместных экзаменов (XM)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента XM
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetExam получает экзамен по внешнему ref
func (c *Client) GetExam(ctx context.Context, ref string) (*Exam, error) {
	endpoint := fmt.Sprintf("%s/api/exams/%s", c.baseURL, url.PathEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExam - failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExam - failed to execute request: %v", ErrPeerUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrExamNotFound
	default:
		return nil, statusError("GetExam", resp)
	}

	var exam Exam
	if err := json.NewDecoder(resp.Body).Decode(&exam); err != nil {
		return nil, fmt.Errorf("%w: GetExam - failed to decode response: %v", ErrInvalidResponse, err)
	}
	if exam.Rev == "" {
		return nil, fmt.Errorf("%w: GetExam - response has no revision", ErrInvalidResponse)
	}

	return &exam, nil
}

// UpdateExam отправляет новое содержимое экзамена с последней известной ревизией.
// Возвращает новую ревизию. 409/412 от пира - ErrRevisionConflict.
func (c *Client) UpdateExam(ctx context.Context, ref, rev string, content json.RawMessage) (string, error) {
	endpoint := fmt.Sprintf("%s/api/exams/%s", c.baseURL, url.PathEscape(ref))

	body, err := json.Marshal(UpdateExamRequest{Rev: rev, Content: content})
	if err != nil {
		return "", fmt.Errorf("%w: UpdateExam - failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: UpdateExam - failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: UpdateExam - failed to execute request: %v", ErrPeerUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusPreconditionFailed:
		return "", ErrRevisionConflict
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrExamNotFound
	default:
		return "", statusError("UpdateExam", resp)
	}

	var rr RevisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("%w: UpdateExam - failed to decode response: %v", ErrInvalidResponse, err)
	}
	if rr.Revision() == "" {
		return "", fmt.Errorf("%w: UpdateExam - response has no revision", ErrInvalidResponse)
	}

	return rr.Revision(), nil
}

// CancelReservation отменяет бронирование, сделанное у пира
func (c *Client) CancelReservation(ctx context.Context, ref string) error {
	endpoint := fmt.Sprintf("%s/api/reservations/%s", c.baseURL, url.PathEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: CancelReservation - failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: CancelReservation - failed to execute request: %v", ErrPeerUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.log.Info("CancelReservation: ref=%s cancelled on peer", ref)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		c.log.Warn("CancelReservation: ref=%s unknown to peer", ref)
		return ErrReservationNotFound
	default:
		return statusError("CancelReservation", resp)
	}
}

// statusError превращает неуспешный ответ в ошибку: 5xx - пир недоступен, остальное - неожиданный статус
func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := string(body)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s - status %d: %s", ErrPeerUnavailable, op, resp.StatusCode, message)
	}
	return fmt.Errorf("%w: %s - status %d: %s", ErrUnexpectedStatus, op, resp.StatusCode, message)
}
