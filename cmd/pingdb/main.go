package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kovalyov-valentin/autoblog/internal/config"
	"github.com/kovalyov-valentin/autoblog/internal/model"
	"github.com/kovalyov-valentin/autoblog/internal/storage"
)

// Проверка связи с базой: пишем тестовую тему и читаем ее обратно
func main() {
	cfg := config.Get()

	if err := cfg.RequireDatabase(); err != nil {
		log.Printf("[ERROR] %v", err)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	if err := storage.Ping(ctx, db); err != nil {
		log.Printf("[ERROR] %v", err)
		return
	}

	topics := storage.NewTopicStorage(db)

	// url уникален вместе с source, поэтому метку времени кладем и в него, иначе второй запуск упадет
	stamp := time.Now().UnixMilli()
	id, err := topics.Add(ctx, model.Topic{
		Title:     fmt.Sprintf("Test Topic %d", stamp),
		Subreddit: "testing",
		Score:     100,
		URL:       fmt.Sprintf("https://example.com/test?ts=%d", stamp),
		Source:    "ping",
	})
	if err != nil {
		log.Printf("[ERROR] failed to create test topic: %v", err)
		return
	}

	topic, err := topics.TopicByID(ctx, id)
	if err != nil {
		log.Printf("[ERROR] failed to read test topic: %v", err)
		return
	}

	out, err := json.MarshalIndent(topic, "", "  ")
	if err != nil {
		log.Printf("[ERROR] failed to encode topic: %v", err)
		return
	}

	log.Printf("[INFO] database connection OK")
	fmt.Println(string(out))
}
