package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/debttrack/debt-service/internal/config"
	"github.com/debttrack/debt-service/internal/handler"
	"github.com/debttrack/debt-service/internal/middleware"
	"github.com/debttrack/debt-service/internal/repository"
	"github.com/debttrack/debt-service/internal/service"
	"github.com/debttrack/debt-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, mailer)
	h := handler.NewHandler(svc)

	// Overdue sweep: once at startup, then daily
	sweep := func() {
		if _, err := svc.SweepOverdue(context.Background()); err != nil {
			logger.Errorf("Overdue sweep failed: %v", err)
		}
	}
	sweep()
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@midnight", sweep); err != nil {
		logger.Fatalf("Failed to schedule overdue sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public routes
	r.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", h.Logout).Methods("POST")
	r.HandleFunc("/api/auth/reset-password", h.ResetPassword).Methods("POST")
	r.HandleFunc("/api/auth/update-password", h.UpdatePassword).Methods("POST")

	// Protected routes
	authRouter := r.PathPrefix("/api").Subrouter()
	authRouter.Use(middleware.Auth(cfg))
	authRouter.HandleFunc("/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/me/password", h.ChangePassword).Methods("PUT")
	authRouter.HandleFunc("/debts", h.CreateDebt).Methods("POST")
	authRouter.HandleFunc("/debts", h.ListDebts).Methods("GET")
	authRouter.HandleFunc("/debts/stats", h.Stats).Methods("GET")
	authRouter.HandleFunc("/debts/export", h.ExportDebts).Methods("GET")
	authRouter.HandleFunc("/debts/{id}", h.GetDebt).Methods("GET")
	authRouter.HandleFunc("/debts/{id}", h.UpdateDebt).Methods("PUT")
	authRouter.HandleFunc("/debts/{id}", h.DeleteDebt).Methods("DELETE")
	authRouter.HandleFunc("/debts/{id}/payments", h.RecordPayment).Methods("POST")
	authRouter.HandleFunc("/debts/{id}/payments", h.ListPayments).Methods("GET")
	authRouter.HandleFunc("/debts/{id}/increase", h.IncreaseDebt).Methods("POST")
	authRouter.HandleFunc("/debts/{id}/history", h.DebtHistory).Methods("GET")

	// CORS for the browser SPA
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
