package retry

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
)

// Ошибка, у которой есть HTTP статус внешнего сервиса
type StatusCoder interface {
	StatusCode() int
}

// Policy - ограниченные повторы с экспоненциальной задержкой.
// Повторяются только ошибки со статусом из RetryableStatuses, все остальное сразу возвращается.
type Policy struct {
	// Сколько всего попыток, включая первую
	MaxAttempts int
	// Задержка перед второй попыткой, дальше удваивается
	BaseDelay time.Duration
	// Статусы, на которых есть смысл повторить (обычно 503)
	RetryableStatuses []int

	// Для тестов, чтобы не ждать реальные секунды
	timer backoff.Timer
}

// Policy для перегруженного AI сервиса
func OnOverload(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts:       maxAttempts,
		BaseDelay:         baseDelay,
		RetryableStatuses: []int{503},
	}
}

// Retryable проверяет, можно ли повторить операцию после этой ошибки
func (p Policy) Retryable(err error) bool {
	var coder StatusCoder
	if !errors.As(err, &coder) {
		return false
	}
	return lo.Contains(p.RetryableStatuses, coder.StatusCode())
}

// Do выполняет op, повторяя ее согласно политике.
// Возвращает последнюю ошибку, если попытки кончились.
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.BaseDelay),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxInterval(time.Duration(math.MaxInt64)),
		backoff.WithMaxElapsedTime(0),
	)

	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		log.Printf("[WARN] %s: attempt %d/%d failed: %v, retrying in %s", name, attempt, attempts, err, next)
	}

	return backoff.RetryNotifyWithTimer(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx),
		notify,
		p.timer,
	)
}
