package alerting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rawblock/dex-arb-engine/internal/risk"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Alert is a structured notification for one arbitrage opportunity,
// fanned out to three sinks: history, websocket, webhooks.
type Alert struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Pair        string    `json:"pair"`
	BuyVenue    string    `json:"buyVenue"`
	SellVenue   string    `json:"sellVenue"`
	GrossPct    float64   `json:"grossPct"`
	NetPct      float64   `json:"netPct"`
	Signals     []string  `json:"signals,omitempty"`
}

// WebhookEndpoint is a registered webhook receiver (Slack/Discord/PagerDuty
// compatible JSON body).
type WebhookEndpoint struct {
	Name        string
	URL         string
	Enabled     bool
	Headers     map[string]string
	MinSeverity string
}

// OpportunityAlertManager fans out opportunity alerts to alert history, a
// websocket broadcast callback, and registered webhooks, min-severity-filtered
// per webhook. Webhook delivery is not rate-limited: every qualifying alert
// is posted.
type OpportunityAlertManager struct {
	mu           sync.RWMutex
	webhooks     []WebhookEndpoint
	recentAlerts []Alert
	maxHistory   int
	httpClient   *http.Client
	broadcast    func(Alert)
}

// NewOpportunityAlertManager builds a manager that calls broadcastFn (may
// be nil) for every emitted alert, in addition to webhook delivery.
func NewOpportunityAlertManager(broadcastFn func(Alert)) *OpportunityAlertManager {
	return &OpportunityAlertManager{
		maxHistory: 1000,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		broadcast:  broadcastFn,
	}
}

// RegisterWebhook adds a webhook endpoint.
func (m *OpportunityAlertManager) RegisterWebhook(name, url, minSeverity string, headers map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhooks = append(m.webhooks, WebhookEndpoint{Name: name, URL: url, Enabled: true, Headers: headers, MinSeverity: minSeverity})
	log.Printf("[Alerting] registered webhook: %s -> %s (min: %s)", name, url, minSeverity)
}

// EmitFromOpportunity builds and dispatches an Alert from a scored
// opportunity. Info-severity opportunities are recorded in history but not
// pushed to webhooks.
func (m *OpportunityAlertManager) EmitFromOpportunity(opp models.ArbitrageOpportunity, assessment risk.Assessment) {
	alert := Alert{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Severity:    assessment.Severity,
		Title:       fmt.Sprintf("Arbitrage opportunity: %s -> %s", opp.BuyVenue, opp.SellVenue),
		Description: describe(opp, assessment),
		Pair:        opp.Pair.Base.String() + "/" + opp.Pair.Quote.String(),
		BuyVenue:    opp.BuyVenue.String(),
		SellVenue:   opp.SellVenue.String(),
		GrossPct:    opp.GrossPct,
		NetPct:      opp.NetPct,
		Signals:     assessment.Signals,
	}
	m.emit(alert)
}

func describe(opp models.ArbitrageOpportunity, a risk.Assessment) string {
	desc := fmt.Sprintf("gross %.3f%%, net %.3f%%", opp.GrossPct, opp.NetPct)
	if a.IsWatchlistHit {
		desc += "; watchlisted pair"
	}
	return desc
}

func (m *OpportunityAlertManager) emit(alert Alert) {
	m.mu.Lock()
	m.recentAlerts = append(m.recentAlerts, alert)
	if len(m.recentAlerts) > m.maxHistory {
		m.recentAlerts = m.recentAlerts[len(m.recentAlerts)-m.maxHistory:]
	}
	webhooks := make([]WebhookEndpoint, len(m.webhooks))
	copy(webhooks, m.webhooks)
	m.mu.Unlock()

	if m.broadcast != nil {
		m.broadcast(alert)
	}

	if alert.Severity == "info" {
		return
	}
	for _, wh := range webhooks {
		if !wh.Enabled || !severityMeetsThreshold(alert.Severity, wh.MinSeverity) {
			continue
		}
		go m.sendWebhook(wh, alert)
	}

	log.Printf("[Alert] [%s] %s", alert.Severity, alert.Title)
}

// GetRecentAlerts returns up to limit alerts, most recent first. limit<=0
// returns everything.
func (m *OpportunityAlertManager) GetRecentAlerts(limit int) []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.recentAlerts) {
		limit = len(m.recentAlerts)
	}
	start := len(m.recentAlerts) - limit
	result := make([]Alert, limit)
	for i := 0; i < limit; i++ {
		result[i] = m.recentAlerts[start+limit-1-i]
	}
	return result
}

func (m *OpportunityAlertManager) sendWebhook(wh WebhookEndpoint, alert Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		log.Printf("[Alerting] marshal alert: %v", err)
		return
	}
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[Alerting] build request for %s: %v", wh.Name, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range wh.Headers {
		req.Header.Set(k, v)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Printf("[Alerting] deliver to %s: %v", wh.Name, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("[Alerting] %s returned status %d", wh.Name, resp.StatusCode)
	}
}

func severityMeetsThreshold(severity, minimum string) bool {
	levels := map[string]int{"info": 0, "low": 1, "medium": 2, "high": 3, "critical": 4}
	return levels[severity] >= levels[minimum]
}
