package entity

import "time"

type DeliveryStatus string

const (
	DeliverySent     DeliveryStatus = "SENT"
	DeliveryFailed   DeliveryStatus = "FAILED"
	DeliveryRecorded DeliveryStatus = "RECORDED"
)

type NotificationRecord struct {
	ID             string         `db:"notification_id"`
	Recipient      string         `db:"recipient"`
	Subject        string         `db:"subject"`
	Body           string         `db:"body"`
	SentAt         time.Time      `db:"sent_at"`
	CorrelationKey *string        `db:"correlation_key"`
	SourceID       string         `db:"source_id"`
	DeliveryStatus DeliveryStatus `db:"delivery_status"`
	DeliveryError  string         `db:"delivery_error"`
}
