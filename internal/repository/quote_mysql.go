package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"refab-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLQuoteRepository implements QuoteRepository using MySQL.
type MySQLQuoteRepository struct {
	db *sql.DB
}

// NewMySQLQuoteRepository creates a new MySQL quote repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true".
func NewMySQLQuoteRepository(dsn string) (*MySQLQuoteRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[MySQLQuoteRepository] Initialized")
	return &MySQLQuoteRepository{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS quotes (
		id VARCHAR(64) PRIMARY KEY,
		order_id VARCHAR(64) NOT NULL UNIQUE,
		tracking_token VARCHAR(128) NOT NULL,
		quote_type VARCHAR(16) NOT NULL,
		device_category VARCHAR(64) NOT NULL,
		brand VARCHAR(128) NOT NULL,
		model VARCHAR(128) NOT NULL,
		storage VARCHAR(32) NOT NULL DEFAULT '',
		selections_json TEXT NOT NULL,
		diagnostic TINYINT(1) NOT NULL DEFAULT 0,
		verified_price INT NOT NULL,
		screen_quality VARCHAR(16) NOT NULL DEFAULT '',
		delivery_method VARCHAR(16) NOT NULL DEFAULT '',
		customer_name VARCHAR(255) NOT NULL DEFAULT '',
		customer_email VARCHAR(255) NOT NULL DEFAULT '',
		customer_phone VARCHAR(64) NOT NULL DEFAULT '',
		customer_address VARCHAR(255) NOT NULL DEFAULT '',
		customer_city VARCHAR(128) NOT NULL DEFAULT '',
		customer_zip VARCHAR(32) NOT NULL DEFAULT '',
		is_company TINYINT(1) NOT NULL DEFAULT 0,
		language VARCHAR(8) NOT NULL DEFAULT '',
		partner_id VARCHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL DEFAULT 'created',
		created_at DATETIME NOT NULL,
		INDEX idx_quotes_created_at (created_at)
	)`
	_, err := db.Exec(query)
	return err
}

// Insert persists a verified quote.
func (r *MySQLQuoteRepository) Insert(ctx context.Context, q *model.Quote) error {
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

// GetByOrderID retrieves a quote by its human-readable order id.
func (r *MySQLQuoteRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Quote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE order_id = ?`, orderID)
	return scanQuote(row)
}

// GetByTracking retrieves a quote gated on its tracking token.
func (r *MySQLQuoteRepository) GetByTracking(ctx context.Context, orderID, trackingToken string) (*model.Quote, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE order_id = ? AND tracking_token = ?`,
		orderID, trackingToken)
	return scanQuote(row)
}

// ListRecent returns the most recently created quotes.
func (r *MySQLQuoteRepository) ListRecent(ctx context.Context, limit int) ([]*model.Quote, error) {
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
func (r *MySQLQuoteRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
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
func (r *MySQLQuoteRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
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
func (r *MySQLQuoteRepository) Close() error {
	return r.db.Close()
}

var _ QuoteRepository = (*MySQLQuoteRepository)(nil)
