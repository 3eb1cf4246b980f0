package repository

import (
	"context"
	"errors"

	"quilog/internal/models"
	"quilog/internal/observability"

	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

// Instrument wraps store calls on one collection with a span, a latency
// observation and error logging. Every backend uses it.
type Instrument struct {
	system     string
	collection string
	metrics    *observability.StoreMetrics
	logger     *observability.RepoLogger
}

// NewInstrument returns an Instrument for collection on the named backend.
func NewInstrument(system, collection string) *Instrument {
	return &Instrument{
		system:     system,
		collection: collection,
		metrics:    observability.NewStoreMetrics(system),
		logger:     observability.NewRepoLogger(system, collection),
	}
}

// Start begins an observed operation. Call the returned func with the
// operation's error. NOT_FOUND is an expected outcome and is not logged.
func (i *Instrument) Start(ctx context.Context, op string) (context.Context, func(error)) {
	done := i.metrics.TrackQuery(op, i.collection)
	ctx, span := observability.TraceRepositoryMethod(ctx, i.system, op, i.collection)
	return ctx, func(err error) {
		if err != nil && !models.IsNotFound(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			i.logger.LogError(ctx, err, op)
		}
		span.End()
		done()
	}
}

// Logger exposes the collection's repository logger.
func (i *Instrument) Logger() *observability.RepoLogger {
	return i.logger
}

// notFound maps gorm's missing-row error onto the NOT_FOUND AppError.
func notFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
