package main

import (
	"log"
	"os"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/rawblock/dex-arb-engine/internal/alerting"
	"github.com/rawblock/dex-arb-engine/internal/api"
	"github.com/rawblock/dex-arb-engine/internal/arbitrage"
	"github.com/rawblock/dex-arb-engine/internal/db"
	"github.com/rawblock/dex-arb-engine/internal/schemas"
)

func main() {
	log.Println("Starting DEX arbitrage decoding engine...")
	log.Println("Loading instruction schemas and building tag index...")

	// ─── Environment Variables ──────────────────────────────────────────
	// None is required. DATABASE_URL is optional; the engine runs
	// opportunity detection and the API in-memory if it's unset. Settings
	// are read from the process environment only; no .env file is loaded.
	// ────────────────────────────────────────────────────────────────────

	reg, err := schemas.Default()
	if err != nil {
		log.Fatalf("FATAL: failed to load embedded schemas: %v", err)
	}
	log.Printf("Loaded %d protocol schemas", len(reg.Protocols()))

	var dbConn *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing in memory-only mode. Error: %v", err)
		} else {
			dbConn = conn
			defer dbConn.Close()
			if err := dbConn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set, running in memory-only mode")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	alertManager := alerting.NewOpportunityAlertManager(func(a alerting.Alert) {
		if payload, err := marshalAlert(a); err == nil {
			wsHub.Broadcast(payload)
		}
	})
	if webhookURL := os.Getenv("ALERT_WEBHOOK_URL"); webhookURL != "" {
		minSeverity := getEnvOrDefault("ALERT_WEBHOOK_MIN_SEVERITY", "medium")
		alertManager.RegisterWebhook("default", webhookURL, minSeverity, nil)
	}

	watchlist := alerting.NewPairWatchlist()

	maxQuoteAgeS := getEnvInt64("MAX_QUOTE_AGE_SECS", 30)
	minProfitThresholdPct := getEnvFloat("MIN_PROFIT_THRESHOLD_PCT", 0.5)
	detector := arbitrage.NewDetector(maxQuoteAgeS, minProfitThresholdPct)

	stats := api.NewStats()
	handler := api.NewAPIHandler(reg, detector, alertManager, watchlist, dbConn, wsHub, stats, maxQuoteAgeS)
	r := api.SetupRouter(handler)

	port := getEnvOrDefault("PORT", "5340")
	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func marshalAlert(a alerting.Alert) ([]byte, error) {
	return gojson.Marshal(struct {
		Type string         `json:"type"`
		Data alerting.Alert `json:"data"`
	}{Type: "alert", Data: a})
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, val, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %.4f", key, val, fallback)
		return fallback
	}
	return f
}
