package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusActive, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// CANCELLED is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusCancelled
	case StatusActive:
		return next == StatusCancelled
	default:
		return false
	}
}

type Category string

const (
	CategoryConcert    Category = "CONCERT"
	CategoryConference Category = "CONFERENCE"
	CategorySports     Category = "SPORTS"
	CategoryTheatre    Category = "THEATRE"
	CategoryFestival   Category = "FESTIVAL"
	CategoryWorkshop   Category = "WORKSHOP"
	CategoryOther      Category = "OTHER"
)

var categories = []Category{
	CategoryConcert,
	CategoryConference,
	CategorySports,
	CategoryTheatre,
	CategoryFestival,
	CategoryWorkshop,
	CategoryOther,
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type Venue struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

type Schedule struct {
	StartAt         time.Time  `json:"start_at"`
	DurationMinutes int        `json:"duration_minutes"`
	SalesStartAt    *time.Time `json:"sales_start_at,omitempty"`
	SalesEndAt      *time.Time `json:"sales_end_at,omitempty"`
}

type Event struct {
	ID             string          `json:"id"`
	OrganizerID    string          `json:"organizer_id"`
	OrganizerEmail string          `json:"organizer_email"`
	Name           string          `json:"name"`
	Category       Category        `json:"category"`
	Description    string          `json:"description"`
	Venue          Venue           `json:"venue"`
	Schedule       Schedule        `json:"schedule"`
	TicketPrice    decimal.Decimal `json:"ticket_price"`
	TicketCapacity int             `json:"ticket_capacity"`
	TicketsSold    int             `json:"tickets_sold"`
	Status         Status          `json:"status"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e Event) TicketsAvailable() int {
	return max(0, e.TicketCapacity-e.TicketsSold)
}

func (e Event) View() EventView {
	return EventView{
		ID:               e.ID,
		Name:             e.Name,
		Category:         e.Category,
		Description:      e.Description,
		Venue:            e.Venue,
		Schedule:         e.Schedule,
		TicketPrice:      e.TicketPrice,
		TicketCapacity:   e.TicketCapacity,
		TicketsSold:      e.TicketsSold,
		TicketsAvailable: e.TicketsAvailable(),
		Status:           e.Status,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// EventView is the public projection of an event.
type EventView struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         Category        `json:"category"`
	Description      string          `json:"description"`
	Venue            Venue           `json:"venue"`
	Schedule         Schedule        `json:"schedule"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TicketCapacity   int             `json:"ticket_capacity"`
	TicketsSold      int             `json:"tickets_sold"`
	TicketsAvailable int             `json:"tickets_available"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Prices are stored as NUMERIC(10, 2).
const priceScale = 2

var maxTicketPrice = decimal.New(1, 10-priceScale)

// EventSpec holds the caller supplied fields of an event.
type EventSpec struct {
	Name           string
	Category       string
	Description    string
	Venue          Venue
	Schedule       Schedule
	TicketPrice    decimal.Decimal
	TicketCapacity int
	Status         *Status
}

func (s EventSpec) Validate() error {
	var problems []FieldProblem

	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, FieldProblem{Field: "name", Problem: "must not be blank"})
	}
	if _, ok := ParseCategory(s.Category); !ok {
		problems = append(problems, FieldProblem{Field: "category", Problem: "unknown category"})
	}
	if strings.TrimSpace(s.Venue.Name) == "" {
		problems = append(problems, FieldProblem{Field: "venue.name", Problem: "must not be blank"})
	}
	if s.Schedule.StartAt.IsZero() {
		problems = append(problems, FieldProblem{Field: "schedule.start_at", Problem: "is required"})
	}
	if s.Schedule.DurationMinutes <= 0 {
		problems = append(problems, FieldProblem{Field: "schedule.duration_minutes", Problem: "must be positive"})
	}
	if start, end := s.Schedule.SalesStartAt, s.Schedule.SalesEndAt; start != nil && end != nil && end.Before(*start) {
		problems = append(problems, FieldProblem{Field: "schedule.sales_end_at", Problem: "must not be before sales start"})
	}
	switch {
	case s.TicketPrice.IsNegative():
		problems = append(problems, FieldProblem{Field: "ticket_price", Problem: "must not be negative"})
	case !s.TicketPrice.Equal(s.TicketPrice.Truncate(priceScale)):
		problems = append(problems, FieldProblem{Field: "ticket_price", Problem: "must have at most 2 decimal places"})
	case s.TicketPrice.GreaterThanOrEqual(maxTicketPrice):
		problems = append(problems, FieldProblem{Field: "ticket_price", Problem: "must be below " + maxTicketPrice.String()})
	}
	if s.TicketCapacity <= 0 {
		problems = append(problems, FieldProblem{Field: "ticket_capacity", Problem: "must be positive"})
	}

	if len(problems) > 0 {
		return ValidationError{Problems: problems}
	}
	return nil
}

type EventFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	Text     string
}

type Page struct {
	Number int
	Size   int
}

type EventPage struct {
	Events     []EventView `json:"events"`
	PageNumber int         `json:"page_number"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
}

// EventQuery is a fully resolved listing query handed to the store. Empty
// Status, Category and Text and zero From/To leave that filter out.
type EventQuery struct {
	Status   Status
	Category Category
	From     time.Time
	To       time.Time
	Text     string
	Limit    int
	Offset   int
}
