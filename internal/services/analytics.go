// Package services assembles report envelopes from the transaction store.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"sales-analytics/internal/aggregate"
	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/store"
)

// Analytics serves the five report views. It keeps no state between calls;
// every report reads the store through a session of its own.
type Analytics struct {
	store  store.Store
	logger *slog.Logger
}

func NewAnalytics(st store.Store, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{store: st, logger: logger}
}

func (a *Analytics) SalesByCountry(ctx context.Context) models.Envelope[models.SalesByCountry] {
	return runReport(ctx, a, "sales_by_country", aggregate.SalesByCountry, models.EmptySalesByCountry)
}

func (a *Analytics) TemporalAnalysis(ctx context.Context) models.Envelope[models.TemporalAnalysis] {
	return runReport(ctx, a, "temporal_analysis", aggregate.Temporal, models.EmptyTemporalAnalysis)
}

func (a *Analytics) ProductAnalysis(ctx context.Context) models.Envelope[models.ProductAnalysis] {
	return runReport(ctx, a, "product_analysis", aggregate.Products, models.EmptyProductAnalysis)
}

func (a *Analytics) CustomerAnalysis(ctx context.Context) models.Envelope[models.CustomerAnalysis] {
	return runReport(ctx, a, "customer_analysis", aggregate.Customers, models.EmptyCustomerAnalysis)
}

func (a *Analytics) BillingAnalysis(ctx context.Context) models.Envelope[models.BillingAnalysis] {
	return runReport(ctx, a, "billing_analysis", aggregate.Billing, models.EmptyBillingAnalysis)
}

// Stats reports the number of rows in the transaction table. Unlike the
// report views it returns the error to the caller.
func (a *Analytics) Stats(ctx context.Context) (models.Stats, error) {
	session, err := a.store.Acquire(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	defer session.Close()

	n, err := session.Count(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	return models.Stats{Transactions: n}, nil
}

// Ping checks that a session can be opened on the store.
func (a *Analytics) Ping(ctx context.Context) error {
	session, err := a.store.Acquire(ctx)
	if err != nil {
		return err
	}
	return session.Close()
}

// runReport loads the rows, runs compute and wraps the view. Any failure,
// including a panic inside compute, yields an error envelope carrying the
// empty view; the cause is logged and never returned.
func runReport[T any](
	ctx context.Context,
	a *Analytics,
	view string,
	compute func([]models.Transaction) (T, error),
	empty func() T,
) (env models.Envelope[T]) {
	ctx, span := observability.StartSpan(ctx, "report."+view)
	logger := observability.FromContext(ctx, a.logger).With("view", view)
	defer span.Finish(a.logger)

	fail := func(err error) {
		span.SetError(err)
		logger.Error("report failed", "error_kind", errors.Classify(err), "error", err)
		env = models.Failure(empty())
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("report panicked", "stack", string(debug.Stack()))
			fail(fmt.Errorf("panic: %v", rec))
		}
	}()

	session, err := a.store.Acquire(ctx)
	if err != nil {
		fail(err)
		return env
	}
	defer session.Close()

	rows, err := session.Transactions(ctx)
	if err != nil {
		fail(err)
		return env
	}
	span.SetAttr("rows", len(rows))

	result, err := compute(rows)
	if err != nil {
		fail(err)
		return env
	}

	return models.Success(result)
}
