package contract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/shopspring/decimal"
)

// Payment messages are produced by the payment service with PascalCase keys
// and without a watermill name header.

type PaymentSucceeded struct {
	BookingID       string          `json:"BookingId"`
	CustomerID      string          `json:"CustomerId"`
	PaymentIntentID string          `json:"PaymentIntentId"`
	Amount          decimal.Decimal `json:"Amount"`
	Currency        string          `json:"Currency"`
	PaidAtUtc       time.Time       `json:"PaidAtUtc"`
}

type PaymentFailed struct {
	BookingID   string    `json:"BookingId"`
	CustomerID  string    `json:"CustomerId"`
	Reason      string    `json:"Reason"`
	FailedAtUtc time.Time `json:"FailedAtUtc"`
}

func ParsePaymentSucceeded(payload []byte) (PaymentSucceeded, error) {
	var p PaymentSucceeded
	if err := json.Unmarshal(payload, &p); err != nil {
		return PaymentSucceeded{}, entity.ParseError{Reason: "decoding PaymentSucceeded", Err: err}
	}
	if strings.TrimSpace(p.BookingID) == "" {
		return PaymentSucceeded{}, entity.ParseError{Reason: "PaymentSucceeded without BookingId"}
	}
	return p, nil
}

func ParsePaymentFailed(payload []byte) (PaymentFailed, error) {
	var p PaymentFailed
	if err := json.Unmarshal(payload, &p); err != nil {
		return PaymentFailed{}, entity.ParseError{Reason: "decoding PaymentFailed", Err: err}
	}
	if strings.TrimSpace(p.BookingID) == "" {
		return PaymentFailed{}, entity.ParseError{Reason: "PaymentFailed without BookingId"}
	}
	return p, nil
}
