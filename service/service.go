package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Sathursan-S/Ticketer/auth"
	"github.com/Sathursan-S/Ticketer/clock"
	"github.com/Sathursan-S/Ticketer/config"
	"github.com/Sathursan-S/Ticketer/db"
	"github.com/Sathursan-S/Ticketer/http"
	"github.com/Sathursan-S/Ticketer/lifecycle"
	"github.com/Sathursan-S/Ticketer/message"
	"github.com/Sathursan-S/Ticketer/message/event"
	"github.com/Sathursan-S/Ticketer/message/wire"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Config         config.Config
	Logger         watermill.LoggerAdapter
	DB             *sqlx.DB
	Publisher      watermillMessage.Publisher
	NewSubscriber  wire.SubscriberFactory
	ProcessedStore event.ProcessedStore
	Mailer         event.Mailer
	Clock          clock.Clock
}

type Service struct {
	msgRouter  *message.Router
	forwarder  *message.Forwarder
	httpRouter *echo.Echo
	httpAddr   string
}

func New(deps Deps) (*Service, error) {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	cfg := deps.Config

	var (
		outbox    message.Outbox
		forwarder *message.Forwarder
	)
	if cfg.Broker.Outbox && cfg.DB.Driver == db.DriverPostgres {
		f, err := message.NewForwarder(deps.DB, deps.Publisher, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating outbox forwarder: %w", err)
		}
		forwarder = f
		outbox = message.NewSQLOutbox(deps.DB, deps.Logger)
	}

	publisher, err := message.NewPublisher(deps.Publisher, outbox, cfg.Broker.PublishTimeout, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Clock:            deps.Clock,
		DeadLetterTopic:  cfg.Broker.DeadLetterTopic,
		HandlerTimeout:   cfg.Broker.HandlerTimeout,
		Logger:           deps.Logger,
		Mailer:           deps.Mailer,
		MaxRetries:       cfg.Broker.MaxRetries,
		NewSubscriber:    deps.NewSubscriber,
		NotificationRepo: db.NewNotificationRepo(deps.DB),
		ProcessedStore:   deps.ProcessedStore,
		Publisher:        deps.Publisher,
		ServiceName:      cfg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	engine := lifecycle.NewEngine(db.NewEventRepo(deps.DB), publisher, auth.RoleAuthorizer{}, deps.Clock)

	return &Service{
		msgRouter:  msgRouter,
		forwarder:  forwarder,
		httpRouter: http.NewRouter(engine),
		httpAddr:   cfg.HTTP.Addr,
	}, nil
}

// NewRedisTransport returns the redis streams publisher and a subscriber
// factory that joins one consumer group per handler.
func NewRedisTransport(
	client redis.UniversalClient,
	logger watermill.LoggerAdapter,
) (watermillMessage.Publisher, wire.SubscriberFactory, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating publisher: %w", err)
	}

	newSubscriber := func(consumerGroup string) (watermillMessage.Subscriber, error) {
		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroup,
		}, logger)
	}

	return publisher, newSubscriber, nil
}

func (s *Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	if s.forwarder != nil {
		g.Go(func() error {
			if err := s.forwarder.Run(runCtx); err != nil {
				return fmt.Errorf("running outbox forwarder: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.WithField("addr", s.httpAddr).Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}

// HTTPAddr returns the bound address once the HTTP server listens, nil before.
func (s *Service) HTTPAddr() net.Addr {
	return s.httpRouter.ListenerAddr()
}
