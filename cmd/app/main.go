package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"KeikoHub/internal/config"
	"KeikoHub/pkg/log"
	"KeikoHub/pkg/redis"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn(log.Fields{"error": err.Error()}, "Error loading .env file")
	}
	logger := log.NewLogger()

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithMiddleware(),
		config.WithCurriculum(getEnv("CURRICULUM_PATH", "./data/nomenclature.json"), getEnv("VIDEOS_PATH", "./data/videos.json")),
		config.WithCurriculumWatcher(),
		config.WithVoiceCatalog(os.Getenv("VOICES_PATH")),
		config.WithAudioBasePath(getEnv("AUDIO_BASE_PATH", "/assets/audio")),
		config.WithRedisServer(redisServer),
		config.WithDatabase(),
		config.WithS3Client(),
		config.WithUtils(),
	)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Failed to configure server")
	}

	if err := server.RegisterHandler(); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Failed to register handlers")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	log.Info(log.Fields{"port": getEnv("APP_PORT", "3000")}, "Server started successfully")

	sig := <-sigChan
	log.Info(log.Fields{"signal": sig.String()}, "Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
