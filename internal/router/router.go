package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ollama-chat-backend/internal/handlers"
	"ollama-chat-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	chatsHandler *handlers.ChatsHandler,
	frontendURL string,
	chatRateLimit int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Inference rate limiter (per IP, per minute)
	chatLimiter := middleware.NewRateLimiter(chatRateLimit, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", chatHandler.Models)

		r.Group(func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Post("/chat", chatHandler.SendMessage)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatsHandler.List)
			r.Post("/", chatsHandler.Create)
			r.Get("/{id}", chatsHandler.Get)
			r.Delete("/{id}", chatsHandler.Delete)
			r.Post("/{id}/messages", chatsHandler.AddMessage)
		})
	})

	return r
}
