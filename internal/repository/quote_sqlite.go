package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"refab-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteQuoteRepository implements QuoteRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteQuoteRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteQuoteRepository creates a new SQLite quote repository.
// dbPath is the path to the SQLite database file (e.g., "./data/quotes.db").
func NewSQLiteQuoteRepository(dbPath string) (*SQLiteQuoteRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteQuoteRepository] Initialized with database: %s", dbPath)
	return &SQLiteQuoteRepository{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		tracking_token TEXT NOT NULL,
		quote_type TEXT NOT NULL,
		device_category TEXT NOT NULL,
		brand TEXT NOT NULL,
		model TEXT NOT NULL,
		storage TEXT NOT NULL DEFAULT '',
		selections_json TEXT NOT NULL,
		diagnostic INTEGER NOT NULL DEFAULT 0,
		verified_price INTEGER NOT NULL,
		screen_quality TEXT NOT NULL DEFAULT '',
		delivery_method TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		customer_email TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		customer_city TEXT NOT NULL DEFAULT '',
		customer_zip TEXT NOT NULL DEFAULT '',
		is_company INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT '',
		partner_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'created',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quotes_order_id ON quotes(order_id);
	CREATE INDEX IF NOT EXISTS idx_quotes_created_at ON quotes(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// Insert persists a verified quote.
func (r *SQLiteQuoteRepository) Insert(ctx context.Context, q *model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO quotes (
			id, order_id, tracking_token, quote_type, device_category, brand, model,
			storage, selections_json, diagnostic, verified_price, screen_quality,
			delivery_method, customer_name, customer_email, customer_phone,
			customer_address, customer_city, customer_zip, is_company, language,
			partner_id, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.OrderID, q.TrackingToken, string(q.Type), q.DeviceCategory, q.Brand, q.Model,
		q.Storage, string(q.SelectionsJSON), boolToInt(q.Diagnostic), q.VerifiedPrice, q.ScreenQuality,
		q.DeliveryMethod, q.CustomerName, q.CustomerEmail, q.CustomerPhone,
		q.CustomerAddr, q.CustomerCity, q.CustomerZip, boolToInt(q.IsCompany), q.Language,
		q.PartnerID, q.Status, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

const quoteColumns = `id, order_id, tracking_token, quote_type, device_category, brand, model,
	storage, selections_json, diagnostic, verified_price, screen_quality,
	delivery_method, customer_name, customer_email, customer_phone,
	customer_address, customer_city, customer_zip, is_company, language,
	partner_id, status, created_at`

// GetByOrderID retrieves a quote by its human-readable order id.
func (r *SQLiteQuoteRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE order_id = ?`, orderID)
	return scanQuote(row)
}

// GetByTracking retrieves a quote gated on its tracking token.
func (r *SQLiteQuoteRepository) GetByTracking(ctx context.Context, orderID, trackingToken string) (*model.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE order_id = ? AND tracking_token = ?`,
		orderID, trackingToken)
	return scanQuote(row)
}

// ListRecent returns the most recently created quotes.
func (r *SQLiteQuoteRepository) ListRecent(ctx context.Context, limit int) ([]*model.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var out []*model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// UpdateStatus transitions a quote's status.
func (r *SQLiteQuoteRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `UPDATE quotes SET status = ? WHERE order_id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

// Stats returns statistics about the quote database.
func (r *SQLiteQuoteRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_quotes"] = count

	var lastCreated sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM quotes").Scan(&lastCreated); err == nil && lastCreated.Valid {
		stats["last_created"] = lastCreated.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteQuoteRepository) Close() error {
	return r.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanQuote.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row scanner) (*model.Quote, error) {
	var q model.Quote
	var quoteType, selections string
	var diagnostic, isCompany int

	err := row.Scan(
		&q.ID, &q.OrderID, &q.TrackingToken, &quoteType, &q.DeviceCategory, &q.Brand, &q.Model,
		&q.Storage, &selections, &diagnostic, &q.VerifiedPrice, &q.ScreenQuality,
		&q.DeliveryMethod, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone,
		&q.CustomerAddr, &q.CustomerCity, &q.CustomerZip, &isCompany, &q.Language,
		&q.PartnerID, &q.Status, &q.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}

	q.Type = model.QuoteType(quoteType)
	q.SelectionsJSON = []byte(selections)
	q.Diagnostic = diagnostic != 0
	q.IsCompany = isCompany != 0
	return &q, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ QuoteRepository = (*SQLiteQuoteRepository)(nil)
