package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/patrickashi/vi-predict/internal/app"
	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

var version = "dev"

func main() {
	// A .env file is optional; flags and real environment win over it.
	godotenv.Load()

	port := flag.Int("port", envInt("VIPREDICT_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("VIPREDICT_DB", "vipredict.db"), "SQLite database path")
	apiBase := flag.String("api", envString("PREDICT_API_BASE_URL", predictapi.DefaultBaseURL), "Prediction backend base URL")
	baseURL := flag.String("baseurl", envString("VIPREDICT_BASE_URL", ""), "Public base URL, used in invite links")
	logLevel := flag.String("loglevel", envString("VIPREDICT_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `VI Predict - football prediction front-end

Usage:
  vipredict [options]

Options:
  -port int      HTTP server port (default 8080)
  -db string     SQLite database path (default "vipredict.db")
  -api string    Prediction backend base URL
  -baseurl str   Public base URL, used in invite links
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -version       Show version and exit

Environment (or .env file):
  VIPREDICT_PORT, VIPREDICT_DB, VIPREDICT_BASE_URL, VIPREDICT_LOG_LEVEL,
  PREDICT_API_BASE_URL

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("vipredict %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	client := predictapi.NewHTTPClient(*apiBase, appLog)

	publicURL := *baseURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", *port)
	}

	a, err := app.New(appLog, *dbPath, publicURL, client)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	appLog.Info("Backend", "url", *apiBase)
	if err := a.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatal(err)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
