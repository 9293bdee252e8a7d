// Package upstream содержит общие куски для клиентов внешних HTTP сервисов:
// ленты, генерации текста и поиска картинок.
package upstream

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError - внешний сервис ответил неуспешным статусом
type StatusError struct {
	Service string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Code, e.Message)
}

// StatusCode нужен политике ретраев, чтобы решить, повторять ли запрос
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Сколько тела ответа тащим в текст ошибки
const maxErrorBody = 512

// CheckResponse возвращает *StatusError, если статус ответа не 2xx.
// Тело ответа в этом случае вычитывается (не больше maxErrorBody байт).
func CheckResponse(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &StatusError{
		Service: service,
		Code:    resp.StatusCode,
		Message: strings.TrimSpace(string(body)),
	}
}

// NewHTTPClient - клиент с общим таймаутом
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
