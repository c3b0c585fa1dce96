package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sathursan-S/Ticketer/config"
	"github.com/Sathursan-S/Ticketer/db"
	"github.com/Sathursan-S/Ticketer/dedup"
	"github.com/Sathursan-S/Ticketer/mail"
	"github.com/Sathursan-S/Ticketer/message/event"
	"github.com/Sathursan-S/Ticketer/service"
	"github.com/Sathursan-S/Ticketer/telemetry"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	log.Init(cfg.Level())
	logger := watermill.NewStdLogger(false, false)

	if err := run(cfg, logger); err != nil {
		logger.Error("failed to run", err, nil)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger watermill.LoggerAdapter) error {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis connection", err, nil)
		}
	}()

	dbConn, err := db.Open(cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close db connection", err, nil)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:   cfg.ServiceName,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		return fmt.Errorf("initialising telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to flush telemetry", err, nil)
		}
	}()

	if err := db.InitialiseDB(ctx, dbConn); err != nil {
		return fmt.Errorf("initialising db: %w", err)
	}

	publisher, newSubscriber, err := service.NewRedisTransport(rdb, logger)
	if err != nil {
		return fmt.Errorf("creating redis transport: %w", err)
	}

	var mailer event.Mailer = mail.LogSender{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		logrus.Warn("SMTP_HOST not set, notifications are only logged")
	}

	svc, err := service.New(service.Deps{
		Config:         cfg,
		Logger:         logger,
		DB:             dbConn,
		Publisher:      publisher,
		NewSubscriber:  newSubscriber,
		ProcessedStore: dedup.NewRedisStore(rdb, cfg.Broker.ProcessedTTL),
		Mailer:         mailer,
	})
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}
