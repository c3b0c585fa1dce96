package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/Sathursan-S/Ticketer/lifecycle"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type handler struct {
	lifecycle Lifecycle
}

type eventRequest struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Venue           entity.Venue    `json:"venue"`
	StartAt         time.Time       `json:"start_at"`
	DurationMinutes int             `json:"duration_minutes"`
	SalesStartAt    *time.Time      `json:"sales_start_at"`
	SalesEndAt      *time.Time      `json:"sales_end_at"`
	TicketPrice     decimal.Decimal `json:"ticket_price"`
	TicketCapacity  int             `json:"ticket_capacity"`
	Status          *string         `json:"status"`
}

func (r eventRequest) toSpec() (entity.EventSpec, error) {
	spec := entity.EventSpec{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Venue:       r.Venue,
		Schedule: entity.Schedule{
			StartAt:         r.StartAt,
			DurationMinutes: r.DurationMinutes,
			SalesStartAt:    r.SalesStartAt,
			SalesEndAt:      r.SalesEndAt,
		},
		TicketPrice:    r.TicketPrice,
		TicketCapacity: r.TicketCapacity,
	}

	if r.Status != nil {
		status, ok := entity.ParseStatus(*r.Status)
		if !ok {
			return entity.EventSpec{}, entity.ValidationError{Problems: []entity.FieldProblem{
				{Field: "status", Problem: "unknown status"},
			}}
		}
		spec.Status = &status
	}

	return spec, nil
}

type outcomeResponse struct {
	Event              entity.Event `json:"event"`
	Status             string       `json:"status"`
	NotificationStatus string       `json:"notification_status"`
	NotificationError  string       `json:"notification_error,omitempty"`
	NotificationQueued bool         `json:"notification_queued,omitempty"`
}

func newOutcomeResponse(out lifecycle.Outcome) outcomeResponse {
	resp := outcomeResponse{
		Event:              out.Event,
		Status:             string(out.Event.Status),
		NotificationStatus: out.NotificationStatus(),
	}
	if out.Warning != nil {
		resp.NotificationError = out.Warning.Error()
		resp.NotificationQueued = out.Warning.Deferred()
	}
	return resp
}

func (h handler) CreateEvent(c echo.Context) error {
	var request eventRequest
	if err := c.Bind(&request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "failed to parse request",
			Internal: fmt.Errorf("failed to bind request: %w", err),
		}
	}

	spec, err := request.toSpec()
	if err != nil {
		return toHTTPError(err)
	}

	out, err := h.lifecycle.Create(c.Request().Context(), principalFrom(c), spec)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, newOutcomeResponse(out))
}

func (h handler) UpdateEvent(c echo.Context) error {
	var request eventRequest
	if err := c.Bind(&request); err != nil {
		return &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "failed to parse request",
			Internal: fmt.Errorf("failed to bind request: %w", err),
		}
	}

	spec, err := request.toSpec()
	if err != nil {
		return toHTTPError(err)
	}

	out, err := h.lifecycle.Update(c.Request().Context(), principalFrom(c), c.Param("id"), spec)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, newOutcomeResponse(out))
}

func (h handler) PublishEvent(c echo.Context) error {
	out, err := h.lifecycle.Publish(c.Request().Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, newOutcomeResponse(out))
}

func (h handler) CancelEvent(c echo.Context) error {
	out, err := h.lifecycle.Cancel(c.Request().Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, newOutcomeResponse(out))
}

func (h handler) GetAnyEvent(c echo.Context) error {
	e, err := h.lifecycle.GetAny(c.Request().Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, e)
}

func (h handler) GetEvent(c echo.Context) error {
	view, err := h.lifecycle.GetPublic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, view)
}

func (h handler) ListEvents(c echo.Context) error {
	filter := entity.EventFilter{
		Category: c.QueryParam("category"),
		Text:     c.QueryParam("q"),
	}

	var err error
	if filter.From, err = parseTimeParam(c, "from"); err != nil {
		return err
	}
	if filter.To, err = parseTimeParam(c, "to"); err != nil {
		return err
	}

	page, err := parsePage(c)
	if err != nil {
		return err
	}

	result, err := h.lifecycle.ListPublic(c.Request().Context(), filter, page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h handler) ListAllEvents(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	result, err := h.lifecycle.ListAll(c.Request().Context(), principalFrom(c), page)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func parsePage(c echo.Context) (entity.Page, error) {
	var (
		page entity.Page
		err  error
	)
	if page.Number, err = parseIntParam(c, "page"); err != nil {
		return entity.Page{}, err
	}
	if page.Size, err = parseIntParam(c, "size"); err != nil {
		return entity.Page{}, err
	}
	return page, nil
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  fmt.Sprintf("invalid %s, expected RFC3339 time", name),
			Internal: err,
		}
	}
	return &t, nil
}

func parseIntParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  fmt.Sprintf("invalid %s, expected a number", name),
			Internal: err,
		}
	}
	return n, nil
}

func toHTTPError(err error) error {
	var (
		validationErr entity.ValidationError
		notFoundErr   entity.NotFoundError
		stateErr      entity.InvalidStateError
		forbiddenErr  entity.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		return &echo.HTTPError{
			Code: http.StatusBadRequest,
			Message: map[string]any{
				"error":    "validation failed",
				"problems": validationErr.Problems,
			},
			Internal: err,
		}
	case errors.As(err, &notFoundErr):
		return &echo.HTTPError{Code: http.StatusNotFound, Message: notFoundErr.Error(), Internal: err}
	case errors.As(err, &stateErr):
		return &echo.HTTPError{Code: http.StatusConflict, Message: stateErr.Error(), Internal: err}
	case errors.As(err, &forbiddenErr):
		return &echo.HTTPError{Code: http.StatusForbidden, Message: forbiddenErr.Error(), Internal: err}
	case errors.Is(err, entity.ErrConcurrentUpdate):
		return &echo.HTTPError{Code: http.StatusConflict, Message: "event was modified concurrently, retry", Internal: err}
	default:
		return &echo.HTTPError{
			Code:     http.StatusInternalServerError,
			Message:  http.StatusText(http.StatusInternalServerError),
			Internal: err,
		}
	}
}
