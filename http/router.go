package http

import (
	"context"
	"net/http"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/Sathursan-S/Ticketer/lifecycle"
	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type Lifecycle interface {
	Create(ctx context.Context, p entity.Principal, spec entity.EventSpec) (lifecycle.Outcome, error)
	Update(ctx context.Context, p entity.Principal, eventID string, spec entity.EventSpec) (lifecycle.Outcome, error)
	Publish(ctx context.Context, p entity.Principal, eventID string) (lifecycle.Outcome, error)
	Cancel(ctx context.Context, p entity.Principal, eventID string) (lifecycle.Outcome, error)
	GetPublic(ctx context.Context, eventID string) (entity.EventView, error)
	GetAny(ctx context.Context, p entity.Principal, eventID string) (entity.Event, error)
	ListPublic(ctx context.Context, filter entity.EventFilter, page entity.Page) (entity.EventPage, error)
	ListAll(ctx context.Context, p entity.Principal, page entity.Page) (entity.EventPage, error)
}

func NewRouter(lc Lifecycle) *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := handler{
		lifecycle: lc,
	}

	organizer := server.Group("/organizer", requirePrincipal)
	organizer.GET("/events", h.ListAllEvents)
	organizer.POST("/events", h.CreateEvent)
	organizer.PUT("/events/:id", h.UpdateEvent)
	organizer.POST("/events/:id/publish", h.PublishEvent)
	organizer.POST("/events/:id/cancel", h.CancelEvent)

	admin := server.Group("/admin", requirePrincipal)
	admin.GET("/events", h.ListAllEvents)
	admin.GET("/events/:id", h.GetAnyEvent)

	server.GET("/events", h.ListEvents)
	server.GET("/events/:id", h.GetEvent)

	return server
}
