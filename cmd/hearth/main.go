package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/patchworkhq/hearth/internal/backup"
	"github.com/patchworkhq/hearth/internal/database"
	"github.com/patchworkhq/hearth/internal/logging"
	"github.com/patchworkhq/hearth/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	port := envDefault("HEARTH_PORT", "8080")
	dbPath := envDefault("HEARTH_DB_PATH", "hearth.db")

	jwtSecret := os.Getenv("HEARTH_JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("HEARTH_JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		JWTSecret: jwtSecret,
		TokenTTL:  30 * 24 * time.Hour,

		VAPIDPublicKey:  os.Getenv("HEARTH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HEARTH_VAPID_PRIVATE_KEY"),
		VAPIDSubscriber: os.Getenv("HEARTH_VAPID_SUBSCRIBER"),

		DigestDailyHour:  envInt("HEARTH_DIGEST_DAILY_HOUR", 7),
		DigestWeeklyDay:  time.Weekday(envInt("HEARTH_DIGEST_WEEKLY_DAY", int(time.Sunday))),
		DigestWeeklyHour: envInt("HEARTH_DIGEST_WEEKLY_HOUR", 17),

		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("HEARTH_S3_ENDPOINT"),
				Bucket:    os.Getenv("HEARTH_S3_BUCKET"),
				Region:    envDefault("HEARTH_S3_REGION", "auto"),
				AccessKey: os.Getenv("HEARTH_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("HEARTH_S3_SECRET_KEY"),
			},
			DBPath:     dbPath,
			Passphrase: os.Getenv("HEARTH_BACKUP_PASSPHRASE"),
			Keep:       envInt("HEARTH_BACKUP_KEEP", 14),
			Hour:       envInt("HEARTH_BACKUP_HOUR", 3),
		},
	}

	srv := server.New(db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := srv.DigestScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}
	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(ctx)
		defer mgr.Stop()
	}

	// Digest tracking rows only matter for dedup, drop them after 90 days.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().AddDate(0, 0, -90)
				if n, err := srv.PushStore().CleanupSent(cutoff); err != nil {
					logger.Warn("cleanup sent digests", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up sent digests", "rows", n)
				}
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Hearth running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
