package db

import (
	"context"
	"fmt"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/jmoiron/sqlx"
)

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) NotificationRepo {
	return NotificationRepo{
		db: db,
	}
}

// Add appends a record. A record whose correlation key is already stored is
// skipped and reported with inserted == false.
func (r NotificationRepo) Add(ctx context.Context, n entity.NotificationRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO notifications
		(notification_id, recipient, subject, body, sent_at, correlation_key, source_id, delivery_status, delivery_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING;`),
		n.ID, n.Recipient, n.Subject, n.Body, n.SentAt.UTC(), n.CorrelationKey, n.SourceID, string(n.DeliveryStatus), n.DeliveryError)
	if err != nil {
		return false, fmt.Errorf("inserting notification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r NotificationRepo) Exists(ctx context.Context, correlationKey string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM notifications WHERE correlation_key = ?)`), correlationKey)
	if err != nil {
		return false, fmt.Errorf("checking notification: %w", err)
	}
	return exists, nil
}

func (r NotificationRepo) ListBySource(ctx context.Context, sourceID string) ([]entity.NotificationRecord, error) {
	var records []entity.NotificationRecord
	err := r.db.SelectContext(ctx, &records, r.db.Rebind(`SELECT
		notification_id, recipient, subject, body, sent_at, correlation_key, source_id, delivery_status, delivery_error
		FROM notifications WHERE source_id = ? ORDER BY sent_at, notification_id`), sourceID)
	if err != nil {
		return nil, fmt.Errorf("selecting notifications: %w", err)
	}

	for i := range records {
		records[i].SentAt = records[i].SentAt.UTC()
	}

	return records, nil
}
