package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ollama-chat-backend/internal/config"
	"ollama-chat-backend/internal/database"
	"ollama-chat-backend/internal/handlers"
	"ollama-chat-backend/internal/repository"
	"ollama-chat-backend/internal/router"
	"ollama-chat-backend/internal/services"
)

func main() {
	log.Println("Starting Ollama Chat Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	log.Println("Environment variables loaded")

	mongo, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongo.Close(ctx)
	}()
	log.Printf("MongoDB connected (database %s)", mongo.DB.Name())

	if err := mongo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Index creation failed: %v", err)
	}
	log.Println("Indexes ensured")

	generator, cleanup, err := newGenerator(cfg)
	if err != nil {
		log.Fatalf("Inference client initialization failed: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	log.Printf("Inference backend ready (provider %s, default model %s)", cfg.Provider, cfg.DefaultModel)

	chatRepo := repository.NewChatRepo(mongo.DB)
	chatService := services.NewChatService(chatRepo, generator, cfg.DefaultModel)

	chatHandler := handlers.NewChatHandler(chatService)
	chatsHandler := handlers.NewChatsHandler(chatService)

	r := router.New(chatHandler, chatsHandler, cfg.FrontendURL, cfg.ChatRateLimit)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.InferenceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("Ollama Chat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func newGenerator(cfg *config.Config) (services.Generator, func(), error) {
	switch cfg.Provider {
	case "openai":
		client, err := services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.InferenceTimeout)
		return client, nil, err
	case "gemini":
		client, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		return services.NewOllamaClient(cfg.OllamaURL, cfg.InferenceTimeout), nil, nil
	}
}
