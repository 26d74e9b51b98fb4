package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

func NewRouter(logger *slog.Logger, frontendURL string, attendanceHandler AttendanceHandler, streamHandler StreamHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/check-in", attendanceHandler.CheckIn)
			r.Post("/check-out", attendanceHandler.CheckOut)
			r.Get("/today", attendanceHandler.Today)
			r.Get("/summary", attendanceHandler.Summary)
			r.Get("/calendar", attendanceHandler.Calendar)
			r.Get("/stream", streamHandler.Stream)
		})
	})

	return r
}
