package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateEventsTable(ctx, db); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	if err := CreateNotificationsTable(ctx, db); err != nil {
		return fmt.Errorf("creating notifications table: %w", err)
	}

	return nil
}

func CreateEventsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events (
		event_id VARCHAR(36) PRIMARY KEY,
		organizer_id VARCHAR(255) NOT NULL,
		organizer_email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(32) NOT NULL,
		description TEXT NOT NULL,
		venue_name VARCHAR(255) NOT NULL,
		venue_address_line1 VARCHAR(255) NOT NULL,
		venue_address_line2 VARCHAR(255) NOT NULL,
		venue_city VARCHAR(255) NOT NULL,
		venue_country VARCHAR(255) NOT NULL,
		start_at TIMESTAMP NOT NULL,
		duration_minutes INTEGER NOT NULL,
		sales_start_at TIMESTAMP,
		sales_end_at TIMESTAMP,
		ticket_price NUMERIC(10, 2) NOT NULL,
		ticket_capacity INTEGER NOT NULL CHECK (ticket_capacity > 0),
		tickets_sold INTEGER NOT NULL DEFAULT 0 CHECK (tickets_sold >= 0),
		status VARCHAR(16) NOT NULL,
		version INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		CHECK (tickets_sold <= ticket_capacity)
	);`)
	return err
}

func CreateNotificationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS notifications (
		notification_id VARCHAR(36) PRIMARY KEY,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		body TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL,
		correlation_key VARCHAR(255) UNIQUE,
		source_id VARCHAR(255) NOT NULL,
		delivery_status VARCHAR(16) NOT NULL,
		delivery_error TEXT NOT NULL
	);`)
	return err
}
