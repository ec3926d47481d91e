// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/candidbox/analytics"
	"github.com/danielhkuo/candidbox/cliparse"
	"github.com/danielhkuo/candidbox/handlers"
	"github.com/danielhkuo/candidbox/middleware"
	"github.com/danielhkuo/candidbox/moderation"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Shared services
	rec := analytics.NewRecorder(db)
	mod := moderation.New(cfg.ModerationAPIKey)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg)
	linkHandler := handlers.NewLinkHandler(db, cfg, rec)
	messageHandler := handlers.NewMessageHandler(db, cfg, mod, rec)
	pollHandler := handlers.NewPollHandler(db, cfg, rec)
	qnaHandler := handlers.NewQnAHandler(db, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg, rec)
	moderationHandler := handlers.NewModerationHandler(mod)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts (owner operations)
	mux.HandleFunc("POST /accounts", middleware.WithLogging(accountHandler.Register))
	mux.HandleFunc("GET /accounts/me", middleware.WithLogging(accountHandler.GetMe))
	mux.HandleFunc("POST /accounts/me/settings", middleware.WithLogging(accountHandler.UpdateSettings))

	// Links (owner management + public consumption)
	mux.HandleFunc("POST /links", middleware.WithLogging(linkHandler.Create))
	mux.HandleFunc("GET /links", middleware.WithLogging(linkHandler.List))
	mux.HandleFunc("GET /links/{linkId}", middleware.WithLogging(linkHandler.Resolve))
	mux.HandleFunc("POST /links/{linkId}/uses", middleware.WithLogging(linkHandler.RecordUse))
	mux.HandleFunc("POST /links/{linkId}/deactivate", middleware.WithLogging(linkHandler.Deactivate))
	mux.HandleFunc("POST /links/{linkId}/messages", middleware.WithLogging(messageHandler.Send))

	// Owner inbox
	mux.HandleFunc("GET /messages", middleware.WithLogging(messageHandler.List))
	mux.HandleFunc("GET /messages/export", middleware.WithLogging(messageHandler.Export))

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.Create))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.List))
	mux.HandleFunc("POST /polls/{pollId}/votes", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("GET /polls/{pollId}/results", middleware.WithLogging(pollHandler.Results))

	// Q&A
	mux.HandleFunc("POST /qna/{qnaId}/answer", middleware.WithLogging(qnaHandler.Answer))
	mux.HandleFunc("GET /qna", middleware.WithLogging(qnaHandler.List))
	mux.HandleFunc("GET /qna/answers", middleware.WithLogging(qnaHandler.PublicAnswers))
	mux.HandleFunc("POST /qna/check-visitor", middleware.WithLogging(qnaHandler.CheckVisitor))

	// Analytics
	mux.HandleFunc("POST /analytics/events", middleware.WithLogging(analyticsHandler.SubmitEvent))
	mux.HandleFunc("GET /analytics/overview", middleware.WithLogging(analyticsHandler.Overview))

	// Moderation pre-check
	mux.HandleFunc("POST /moderation/check", middleware.WithLogging(moderationHandler.Check))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("candidbox API v1"))
	})

	return mux
}
