package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/server"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Get()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(storage.NewDraftStorage(db), db).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout,
	}

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Printf("[ERROR] failed to listen on %s: %v", cfg.HTTPAddr, err)
		return
	}

	log.Printf("[INFO] admin server listening on %s", cfg.HTTPAddr)

	// Serve возвращается только после того, как доработали принятые запросы,
	// поэтому db.Close из defer не обрывает их
	if err := server.Serve(ctx, srv, ln, shutdownTimeout); err != nil {
		log.Printf("[ERROR] failed to run server: %v", err)
		return
	}

	log.Println("[INFO] server stopped")
}
