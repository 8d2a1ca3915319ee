package main

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/query"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/circulation/shell/observable"
	"github.com/AntonStoeckl/library-circulation/circulation/signals"
	"github.com/AntonStoeckl/library-circulation/circulation/signals/redispublisher"
	"github.com/AntonStoeckl/library-circulation/eventstore/oteladapters"
	"github.com/AntonStoeckl/library-circulation/internal/storage"
	"github.com/AntonStoeckl/library-circulation/internal/telemetry"
)

// service is the fully wired circulation: store, handlers and signal delivery.
type service struct {
	store      *storage.Store
	commands   command.Handlers
	queries    query.Handlers
	dispatcher *signals.Dispatcher
	telemetry  *telemetry.Bundle
	redis      *redis.Client
}

func (c *cli) openService(ctx context.Context) (*service, error) {
	bundle, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  c.cfg.ServiceName,
		OTLPEndpoint: c.cfg.OTLPEndpoint,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, err
	}

	svc := &service{telemetry: bundle}

	contextualLogger := oteladapters.NewSlogBridgeLoggerWithHandler(c.logger.Handler())
	metrics := bundle.MetricsCollector()
	tracing := bundle.TracingCollector()

	svc.store, err = storage.Open(ctx, c.cfg, storage.Observability{
		Logger:  contextualLogger,
		Metrics: metrics,
		Tracing: tracing,
	})
	if err != nil {
		_ = svc.close(ctx)
		return nil, err
	}

	subscribers := []signals.Subscriber{signals.NewLogSubscriber(contextualLogger)}

	if c.cfg.RedisAddr != "" {
		svc.redis = redis.NewClient(&redis.Options{
			Addr:     c.cfg.RedisAddr,
			Password: c.cfg.RedisPassword,
			DB:       c.cfg.RedisDB,
		})

		publisher, publisherErr := redispublisher.NewPublisher(svc.redis,
			redispublisher.WithChannelPrefix(c.cfg.RedisChannelPrefix))
		if publisherErr != nil {
			_ = svc.close(ctx)
			return nil, publisherErr
		}

		subscribers = append(subscribers, publisher)
		c.logger.Info("publishing circulation signals to redis", "addr", c.cfg.RedisAddr)
	}

	svc.dispatcher, err = signals.NewDispatcher(subscribers,
		signals.WithBufferSize(c.cfg.SignalsBufferSize),
		signals.WithDeliveryTimeout(c.cfg.SignalsDeliveryTimeout),
		signals.WithLogger(c.logger),
		signals.WithMetrics(metrics),
	)
	if err != nil {
		_ = svc.close(ctx)
		return nil, err
	}

	observability := observable.Config{Metrics: metrics, Tracing: tracing, Logger: contextualLogger}

	svc.commands, err = command.NewHandlers(
		svc.store,
		command.Policy{LoanDurations: c.cfg.LoanDurationsTable()},
		observability,
		command.WithEmitter(svc.dispatcher),
		command.WithRetryOptions(
			shell.WithMaxAttempts(c.cfg.RetryMaxAttempts),
			shell.WithBaseDelay(c.cfg.RetryBaseDelay),
		),
	)
	if err != nil {
		_ = svc.close(ctx)
		return nil, err
	}

	if svc.queries, err = query.NewHandlers(svc.store, observability); err != nil {
		_ = svc.close(ctx)
		return nil, err
	}

	return svc, nil
}

// close drains pending signals before the store and telemetry go away.
func (s *service) close(ctx context.Context) error {
	var errs []error

	if s.dispatcher != nil {
		errs = append(errs, s.dispatcher.Close(ctx))
	}

	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}

	if s.store != nil {
		s.store.Close()
	}

	if s.telemetry != nil {
		errs = append(errs, s.telemetry.Shutdown(ctx))
	}

	return errors.Join(errs...)
}
