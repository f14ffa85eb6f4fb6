package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"bet-tracker/internal/odds"
	"bet-tracker/internal/settlement"
)

// ErrBetNotFound is returned when no bet has the requested ID.
var ErrBetNotFound = errors.New("bet not found")

// Bet is a tracked wager
type Bet struct {
	ID             string            `json:"id"`
	EventID        string            `json:"event_id,omitempty"`
	Event          string            `json:"event"`
	Selection      string            `json:"selection"`
	Sportsbook     string            `json:"sportsbook,omitempty"`
	Odds           odds.American     `json:"odds"`
	Stake          float64           `json:"stake"`
	Result         settlement.Result `json:"result"`
	RecordedPayout float64           `json:"recorded_payout"`
	CreatedAt      time.Time         `json:"created_at"`
	SettledAt      *time.Time        `json:"settled_at,omitempty"`
}

// Entry returns the calculator's view of the bet
func (b Bet) Entry() settlement.Entry {
	return settlement.Entry{
		Odds:           b.Odds,
		Stake:          b.Stake,
		Result:         b.Result,
		RecordedPayout: b.RecordedPayout,
	}
}

// DB handles bet storage
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the bet database at dbPath
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bets (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL DEFAULT '',
		event TEXT NOT NULL,
		selection TEXT NOT NULL,
		sportsbook TEXT NOT NULL DEFAULT '',
		odds REAL NOT NULL,
		stake REAL NOT NULL,
		result TEXT NOT NULL DEFAULT 'pending',
		recorded_payout REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		settled_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_bets_result ON bets(result);
	CREATE INDEX IF NOT EXISTS idx_bets_created ON bets(created_at DESC);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks the database is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// validate runs the bet through the calculator so nothing unsettleable is stored
func validate(b Bet) error {
	if _, err := settlement.Settle(b.Entry()); err != nil {
		return err
	}
	return nil
}

// Add stores a new bet and returns it with its ID and creation time filled in
func (d *DB) Add(ctx context.Context, b Bet) (Bet, error) {
	if err := validate(b); err != nil {
		return Bet{}, fmt.Errorf("invalid bet: %w", err)
	}

	b.ID = uuid.NewString()
	b.CreatedAt = d.now().UTC()
	b.SettledAt = nil
	if b.Result != settlement.Pending {
		settledAt := b.CreatedAt
		b.SettledAt = &settledAt
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO bets (id, event_id, event, selection, sportsbook, odds, stake, result, recorded_payout, created_at, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.EventID, b.Event, b.Selection, b.Sportsbook, float64(b.Odds), b.Stake,
		b.Result.String(), b.RecordedPayout, b.CreatedAt, b.SettledAt)
	if err != nil {
		return Bet{}, fmt.Errorf("inserting bet: %w", err)
	}

	return b, nil
}

const selectBets = `
	SELECT id, event_id, event, selection, sportsbook, odds, stake, result, recorded_payout, created_at, settled_at
	FROM bets`

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(s scanner) (Bet, error) {
	var (
		b         Bet
		price     float64
		result    string
		settledAt sql.NullTime
	)
	err := s.Scan(&b.ID, &b.EventID, &b.Event, &b.Selection, &b.Sportsbook,
		&price, &b.Stake, &result, &b.RecordedPayout, &b.CreatedAt, &settledAt)
	if err != nil {
		return Bet{}, err
	}

	b.Odds = odds.American(price)
	b.Result = settlement.ParseResult(result)
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	return b, nil
}

// Get retrieves a bet by ID
func (d *DB) Get(ctx context.Context, id string) (Bet, error) {
	row := d.db.QueryRowContext(ctx, selectBets+` WHERE id = ?`, id)

	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Bet{}, fmt.Errorf("%w: %s", ErrBetNotFound, id)
	}
	if err != nil {
		return Bet{}, fmt.Errorf("scanning bet: %w", err)
	}

	return b, nil
}

// List retrieves all bets, newest first
func (d *DB) List(ctx context.Context) ([]Bet, error) {
	return d.query(ctx, selectBets+` ORDER BY created_at DESC`)
}

// ListByResult retrieves bets with the given result, newest first
func (d *DB) ListByResult(ctx context.Context, result settlement.Result) ([]Bet, error) {
	return d.query(ctx, selectBets+` WHERE result = ? ORDER BY created_at DESC`, result.String())
}

func (d *DB) query(ctx context.Context, q string, args ...any) ([]Bet, error) {
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bets: %w", err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bet row: %w", err)
		}
		bets = append(bets, b)
	}

	return bets, rows.Err()
}

// Settle records the outcome of a bet. payout is the actual amount returned by the
// book, 0 when not known.
func (d *DB) Settle(ctx context.Context, id string, result settlement.Result, payout float64) (Bet, error) {
	b, err := d.Get(ctx, id)
	if err != nil {
		return Bet{}, err
	}

	b.Result = result
	b.RecordedPayout = payout
	if err := validate(b); err != nil {
		return Bet{}, fmt.Errorf("invalid settlement: %w", err)
	}

	var settledAt *time.Time
	if result != settlement.Pending {
		t := d.now().UTC()
		settledAt = &t
	}
	b.SettledAt = settledAt

	res, err := d.db.ExecContext(ctx,
		"UPDATE bets SET result = ?, recorded_payout = ?, settled_at = ? WHERE id = ?",
		result.String(), payout, settledAt, id)
	if err != nil {
		return Bet{}, fmt.Errorf("updating bet: %w", err)
	}
	// Deleted between the read and the update
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Bet{}, fmt.Errorf("%w: %s", ErrBetNotFound, id)
	}

	return b, nil
}

// Delete removes a bet
func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, "DELETE FROM bets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting bet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrBetNotFound, id)
	}
	return nil
}

// Entries returns the calculator view of every bet
func Entries(bets []Bet) []settlement.Entry {
	entries := make([]settlement.Entry, 0, len(bets))
	for _, b := range bets {
		entries = append(entries, b.Entry())
	}
	return entries
}
