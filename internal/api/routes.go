// Package api implements the engine's HTTP/websocket surface: schema
// introspection, recent-opportunity queries, a synchronous replay endpoint
// for debugging, and a live stream over the websocket Hub.
package api

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/gin-gonic/gin"

	"github.com/rawblock/dex-arb-engine/internal/alerting"
	"github.com/rawblock/dex-arb-engine/internal/arbitrage"
	"github.com/rawblock/dex-arb-engine/internal/db"
	"github.com/rawblock/dex-arb-engine/internal/parser"
	"github.com/rawblock/dex-arb-engine/internal/pricing"
	"github.com/rawblock/dex-arb-engine/internal/registry"
	"github.com/rawblock/dex-arb-engine/internal/risk"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// APIHandler wires the registry, detector, parser front end, and optional
// persistence/alerting collaborators into gin handlers.
type APIHandler struct {
	reg          *registry.Registry
	frontend     *parser.Frontend
	detector     *arbitrage.Detector
	alerts       *alerting.OpportunityAlertManager
	watchlist    *alerting.PairWatchlist
	dbStore      *db.PostgresStore
	wsHub        *Hub
	stats        *Stats
	recent       *OpportunityRing
	maxQuoteAgeS int64
}

// NewAPIHandler builds a handler. dbStore may be nil (in-memory-only mode).
func NewAPIHandler(reg *registry.Registry, detector *arbitrage.Detector, alerts *alerting.OpportunityAlertManager,
	watchlist *alerting.PairWatchlist, dbStore *db.PostgresStore, wsHub *Hub, stats *Stats, maxQuoteAgeS int64) *APIHandler {
	return &APIHandler{
		reg:          reg,
		frontend:     parser.New(reg),
		detector:     detector,
		alerts:       alerts,
		watchlist:    watchlist,
		dbStore:      dbStore,
		wsHub:        wsHub,
		stats:        stats,
		recent:       NewOpportunityRing(500),
		maxQuoteAgeS: maxQuoteAgeS,
	}
}

// SetupRouter builds the gin engine: CORS middleware, then the public
// endpoint group.
func SetupRouter(handler *APIHandler) *gin.Engine {
	r := gin.Default()

	// Enable CORS, configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://rawblock.net,https://dashboard.rawblock.net
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	{
		api.GET("/schemas", handler.handleSchemas)
		api.GET("/opportunities", handler.handleOpportunities)
		api.GET("/stats", handler.handleStats)
		api.POST("/replay", handler.handleReplay)
		api.GET("/ws/stream", handler.wsHub.Subscribe)
	}

	return r
}

// handleSchemas lists every loaded protocol schema's program id, name,
// version, and instruction names: enough for a client to understand what
// this engine can decode without shipping the full field layout.
func (h *APIHandler) handleSchemas(c *gin.Context) {
	type instructionSummary struct {
		Name          string `json:"name"`
		Tag           string `json:"tag"`
		RequiresInner bool   `json:"requiresInner"`
	}
	type protocolSummary struct {
		ProgramID    string               `json:"programId"`
		Name         string               `json:"name"`
		Version      string               `json:"version"`
		Instructions []instructionSummary `json:"instructions"`
	}

	protocols := h.reg.Protocols()
	out := make([]protocolSummary, 0, len(protocols))
	for _, p := range protocols {
		instrs := make([]instructionSummary, 0, len(p.Instructions))
		for _, ins := range p.Instructions {
			instrs = append(instrs, instructionSummary{
				Name:          ins.Name,
				Tag:           ins.Tag.String(),
				RequiresInner: ins.RequiresInner,
			})
		}
		out = append(out, protocolSummary{
			ProgramID:    p.ProgramID.String(),
			Name:         p.Name,
			Version:      p.Version,
			Instructions: instrs,
		})
	}

	payload, err := gojson.Marshal(gin.H{"protocols": out})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode schemas"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// handleOpportunities returns the most recently detected arbitrage
// opportunities, from the database if configured, otherwise from the
// in-memory ring buffer.
func (h *APIHandler) handleOpportunities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if h.dbStore != nil {
		rows, err := h.dbStore.RecentOpportunities(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query opportunities", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows, "source": "db"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.recent.Recent(limit), "source": "memory"})
}

// handleStats returns process-lifetime counters: envelopes decoded,
// opportunities emitted, and uptime.
func (h *APIHandler) handleStats(c *gin.Context) {
	snap := h.stats.Snapshot()
	snap["watchlistedPairs"] = h.watchlist.Size()
	c.JSON(http.StatusOK, snap)
}

// handleReplay decodes a single transaction update synchronously and runs
// it through pricing, the detector, risk classification, and alerting.
// Useful for debugging a schema or a specific transaction without standing
// up a push-transport collaborator.
func (h *APIHandler) handleReplay(c *gin.Context) {
	var tx models.TransactionUpdate
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction update", "details": err.Error()})
		return
	}

	var envelopes []models.EventEnvelope
	var opportunities []models.ArbitrageOpportunity

	h.frontend.HandleUpdate(&tx, func(env models.EventEnvelope) {
		h.stats.RecordEnvelope()
		envelopes = append(envelopes, env)

		if obs, ok := pricing.ExtractFee(&env, env.Metadata.BlockTimeS); ok {
			h.detector.RecordFee(obs)
			return
		}

		quote, ok := pricing.Extract(&env, env.Metadata.BlockTimeS)
		if !ok {
			return
		}
		for _, opp := range h.detector.Process(quote) {
			h.stats.RecordOpportunity()
			h.recent.Add(opp)
			opportunities = append(opportunities, opp)

			assessment := risk.ClassifyOpportunity(opp, 0, h.maxQuoteAgeS, h.watchlist.Contains(opp.Pair))
			if h.dbStore != nil {
				_ = h.dbStore.SaveOpportunity(context.Background(), opp, assessment)
			}
			if h.alerts != nil {
				h.alerts.EmitFromOpportunity(opp, assessment)
			}
			if h.wsHub != nil {
				if payload, err := gojson.Marshal(gin.H{"type": "opportunity", "data": opp}); err == nil {
					h.wsHub.Broadcast(payload)
				}
			}
		}
	})

	c.JSON(http.StatusOK, gin.H{
		"envelopes":     envelopes,
		"opportunities": opportunities,
	})
}

// BroadcastEnvelope marshals and pushes a decoded envelope to every
// websocket subscriber. Neither handleReplay, which broadcasts only
// opportunities, nor cmd/arbengine calls it.
func BroadcastEnvelope(hub *Hub, env models.EventEnvelope) {
	payload, err := gojson.Marshal(gin.H{"type": "envelope", "data": env})
	if err != nil {
		return
	}
	hub.Broadcast(payload)
}
