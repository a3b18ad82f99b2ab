// Package db is the optional opportunity/envelope sink: pgxpool connection
// pooling, schema.sql bootstrap, simple insert/query helpers. The detector
// never reads it back; losing it costs history, not correctness.
package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/dex-arb-engine/internal/risk"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// PostgresStore persists detected opportunities and a sample of decoded
// envelopes for later inspection. It is never consulted by the detector.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection to connStr and verifies it.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	log.Println("[DB] connected to PostgreSQL opportunity sink")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql, creating tables if absent.
func (s *PostgresStore) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("db: read schema.sql: %w", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("db: run schema migrations: %w", err)
	}
	log.Println("[DB] arbitrage schema initialized")
	return nil
}

// SaveOpportunity persists one detected arbitrage opportunity alongside its
// computed severity.
func (s *PostgresStore) SaveOpportunity(ctx context.Context, opp models.ArbitrageOpportunity, assessment risk.Assessment) error {
	const insertSQL = `
		INSERT INTO arb_opportunities
			(recorded_s, pair_base, pair_quote, buy_venue, sell_venue, buy_price, sell_price, gross_pct, net_pct, total_fee_pct, est_gas_bps, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := s.pool.Exec(ctx, insertSQL,
		opp.RecordedS,
		opp.Pair.Base.String(),
		opp.Pair.Quote.String(),
		opp.BuyVenue.String(),
		opp.SellVenue.String(),
		opp.BuyPrice,
		opp.SellPrice,
		opp.GrossPct,
		opp.NetPct,
		opp.TotalFeePct,
		opp.EstGasBps,
		assessment.Severity,
	)
	if err != nil {
		return fmt.Errorf("db: insert arb_opportunities: %w", err)
	}
	return nil
}

// SaveEnvelopeSample persists a decoded envelope for later debugging,
// typically called on a sampling cadence rather than per envelope.
func (s *PostgresStore) SaveEnvelopeSample(ctx context.Context, env models.EventEnvelope) error {
	const insertSQL = `
		INSERT INTO envelope_samples
			(fingerprint, slot, protocol, kind, outer_index, inner_index, handle_us, raw_args_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := s.pool.Exec(ctx, insertSQL,
		env.Metadata.Fingerprint.String(),
		env.Metadata.Slot,
		env.Protocol.String(),
		env.Kind,
		env.Metadata.OuterIndex,
		env.Metadata.InnerIndex,
		env.Metadata.HandleUs,
		env.RawArgsBytes,
	)
	if err != nil {
		return fmt.Errorf("db: insert envelope_samples: %w", err)
	}
	return nil
}

// OpportunityRow is one persisted opportunity as read by RecentOpportunities.
type OpportunityRow struct {
	RecordedS int64   `json:"recordedS"`
	PairBase  string  `json:"pairBase"`
	PairQuote string  `json:"pairQuote"`
	BuyVenue  string  `json:"buyVenue"`
	SellVenue string  `json:"sellVenue"`
	GrossPct  float64 `json:"grossPct"`
	NetPct    float64 `json:"netPct"`
	Severity  string  `json:"severity"`
}

// RecentOpportunities returns the most recent persisted opportunities,
// newest recorded_s first. A limit outside 1..500 is replaced by 50.
func (s *PostgresStore) RecentOpportunities(ctx context.Context, limit int) ([]OpportunityRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const querySQL = `
		SELECT recorded_s, pair_base, pair_quote, buy_venue, sell_venue, gross_pct, net_pct, severity
		FROM arb_opportunities
		ORDER BY recorded_s DESC
		LIMIT $1;
	`
	rows, err := s.pool.Query(ctx, querySQL, limit)
	if err != nil {
		return nil, fmt.Errorf("db: query arb_opportunities: %w", err)
	}
	defer rows.Close()

	var out []OpportunityRow
	for rows.Next() {
		var r OpportunityRow
		if err := rows.Scan(&r.RecordedS, &r.PairBase, &r.PairQuote, &r.BuyVenue, &r.SellVenue, &r.GrossPct, &r.NetPct, &r.Severity); err != nil {
			return nil, fmt.Errorf("db: scan arb_opportunities row: %w", err)
		}
		out = append(out, r)
	}
	if out == nil {
		out = []OpportunityRow{}
	}
	return out, nil
}
