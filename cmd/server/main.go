package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kavyagupta/BeatSync/pkg/beatsync"
	"github.com/kavyagupta/BeatSync/pkg/logger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	hopLength      int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("BEATSYNC_DB_PATH", "beatsync.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("BEATSYNC_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 22050, "Analysis sample rate")
	flag.IntVar(&hopLength, "hop", 512, "Analysis frame stride in samples")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	service, err := beatsync.NewService(
		beatsync.WithDBPath(dbPath),
		beatsync.WithTempDir(tempDir),
		beatsync.WithSampleRate(sampleRate),
		beatsync.WithHopLength(hopLength),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.setupRoutes(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	logger.Infof("BeatSync API listening on :%d", port)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
