package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve обслуживает ln, пока не отменят ctx. После отмены ждет,
// пока завершатся уже принятые запросы, но не дольше timeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	const op = "server.Serve"

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		// Сервер упал сам, до отмены контекста
		return fmt.Errorf("%s: %w", op, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown возвращается только когда активные соединения освободились
	shutdownErr := srv.Shutdown(shutdownCtx)

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("%s: shutdown: %w", op, shutdownErr)
	}
	return nil
}
