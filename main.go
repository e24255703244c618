package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coral-embed-be/config"
	"coral-embed-be/models"
	"coral-embed-be/routes"
	"coral-embed-be/utils"
)

func main() {
	// Load environment variables
	config.LoadEnv()
	config.InitLogger()

	config.ConnectDB()

	// Redis is optional; handlers fall back to the database
	config.ConnectRedis()

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Story{},
		&models.Comment{},
		&models.CommentTag{},
		&models.Settings{},
		&models.DSAReport{},
	); err != nil {
		slog.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	createDefaultAdmin()
	createDefaultSettings()

	// Build the embed transformer up front so a bad allow-list shows at boot
	config.GetTransformer()

	router := routes.SetupRoutes()

	port := config.GetEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	slog.Info("server stopped")
}

// createDefaultAdmin seeds the first admin from ADMIN_EMAIL and
// ADMIN_PASSWORD when no admin exists
func createDefaultAdmin() {
	db := config.GetDB()
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	email := config.GetEnv("ADMIN_EMAIL", "")
	password := config.GetEnv("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		slog.Warn("no admin user and ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		slog.Error("failed to create default admin", "err", err)
		return
	}

	admin := models.User{
		Name:     "Admin",
		Username: "admin",
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		slog.Error("failed to create default admin", "err", err)
		return
	}

	slog.Info("default admin created", "email", email)
}

func createDefaultSettings() {
	var settings models.Settings
	if err := config.GetDB().FirstOrCreate(&settings, models.Settings{ID: 1}).Error; err != nil {
		slog.Error("failed to create settings", "err", err)
	}
}
