// Package watchlist persists approved shark signals in SQLite so they
// survive restarts and can be listed on demand. Entries expire after 72h.
package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
)

const expiry = 72 * time.Hour

// Entry is one persisted watchlist row.
type Entry struct {
	Symbol        string
	FirstSeen     time.Time
	LastSeen      time.Time
	SignalCount   int
	Price         float64
	ChangePercent float64
	OrderValue    float64
	Side          model.Side
	Rating        model.Rating
	Score         int
	RSI           float64
	CMF           float64
	Signal        model.SignalTag
	Reasons       []string
}

// Store is a single-writer SQLite watchlist.
type Store struct {
	db *sql.DB

	// now is swapped in tests.
	now func() time.Time
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens (or creates) the watchlist database with WAL mode.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("watchlist open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("watchlist schema: %w", err)
	}

	log.Printf("[watchlist] opened database at %s", dbPath)
	return &Store{db: db, now: time.Now}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS watchlist (
			symbol       TEXT    PRIMARY KEY,
			first_seen   INTEGER NOT NULL,
			last_seen    INTEGER NOT NULL,
			signal_count INTEGER NOT NULL DEFAULT 1,
			price        REAL    NOT NULL,
			change_pct   REAL    NOT NULL,
			order_value  REAL    NOT NULL,
			side         TEXT    NOT NULL,
			rating       TEXT    NOT NULL,
			score        INTEGER NOT NULL,
			rsi          REAL    NOT NULL,
			cmf          REAL    NOT NULL,
			signal       TEXT    NOT NULL,
			reasons      TEXT    NOT NULL DEFAULT '[]'
		);

		CREATE INDEX IF NOT EXISTS idx_watchlist_last_seen ON watchlist (last_seen);
	`)
	return err
}

// Upsert records an approved signal. A repeat hit on the same trading day
// increments signal_count; a hit on a later day restarts the count at 1.
// first_seen is preserved across updates.
func (s *Store) Upsert(ctx context.Context, order model.OrderSnapshot, analysis model.AnalysisResult) error {
	now := s.now()
	reasons, err := json.Marshal(analysis.Reasons)
	if err != nil {
		reasons = []byte("[]")
	}

	var lastSeen sql.NullInt64
	var count sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT last_seen, signal_count FROM watchlist WHERE symbol = ?`,
		order.Symbol,
	).Scan(&lastSeen, &count)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("watchlist lookup %s: %w", order.Symbol, err)
	}

	newCount := 1
	if lastSeen.Valid && sameTradingDay(time.Unix(lastSeen.Int64, 0), now) {
		newCount = int(count.Int64) + 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO watchlist (symbol, first_seen, last_seen, signal_count, price, change_pct, order_value, side, rating, score, rsi, cmf, signal, reasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			last_seen    = excluded.last_seen,
			signal_count = ?,
			price        = excluded.price,
			change_pct   = excluded.change_pct,
			order_value  = excluded.order_value,
			side         = excluded.side,
			rating       = excluded.rating,
			score        = excluded.score,
			rsi          = excluded.rsi,
			cmf          = excluded.cmf,
			signal       = excluded.signal,
			reasons      = excluded.reasons
	`,
		order.Symbol, now.Unix(), now.Unix(), newCount,
		order.Price, order.ChangePercent, order.OrderValue, string(order.Side),
		string(analysis.Rating), analysis.Score,
		analysis.Summary.RSI, analysis.Summary.CMF, string(analysis.Summary.Signal),
		string(reasons),
		newCount,
	)
	if err != nil {
		return fmt.Errorf("watchlist upsert %s: %w", order.Symbol, err)
	}
	return nil
}

// Active returns non-expired entries, newest first, after purging expired rows.
func (s *Store) Active(ctx context.Context) ([]Entry, error) {
	cutoff := s.now().Add(-expiry).Unix()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE last_seen < ?`, cutoff,
	); err != nil {
		log.Printf("[watchlist] purge warning: %v", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, first_seen, last_seen, signal_count, price, change_pct, order_value, side, rating, score, rsi, cmf, signal, reasons
		FROM watchlist
		WHERE last_seen >= ?
		ORDER BY last_seen DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("watchlist query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var firstSeen, lastSeen int64
		var side, rating, signal, reasons string
		if err := rows.Scan(&e.Symbol, &firstSeen, &lastSeen, &e.SignalCount,
			&e.Price, &e.ChangePercent, &e.OrderValue, &side,
			&rating, &e.Score, &e.RSI, &e.CMF, &signal, &reasons); err != nil {
			return nil, fmt.Errorf("watchlist scan: %w", err)
		}
		e.FirstSeen = time.Unix(firstSeen, 0)
		e.LastSeen = time.Unix(lastSeen, 0)
		e.Side = model.Side(side)
		e.Rating = model.Rating(rating)
		e.Signal = model.SignalTag(signal)
		if err := json.Unmarshal([]byte(reasons), &e.Reasons); err != nil {
			e.Reasons = nil
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove deletes a symbol from the watchlist.
func (s *Store) Remove(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// sameTradingDay reports whether both instants fall on the same exchange
// calendar day, using the 08:30 pre-open boundary rather than midnight.
func sameTradingDay(a, b time.Time) bool {
	return markethours.DailyResetTime(a).Equal(markethours.DailyResetTime(b))
}
