package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
	"sales-analytics/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tx(invoice, customer, country string, total string, day int) models.Transaction {
	date := time.Date(2011, 3, day, 10, 0, 0, 0, time.UTC)
	_, week := date.ISOWeek()
	return models.Transaction{
		InvoiceNumber:   invoice,
		ProductCode:     "P-" + invoice,
		Description:     "ITEM " + invoice,
		Quantity:        sql.NullInt64{Int64: 2, Valid: true},
		InvoiceDate:     date,
		UnitPrice:       decimal.NewNullDecimal(decimal.RequireFromString(total).Div(decimal.NewFromInt(2))),
		TotalValue:      decimal.NewNullDecimal(decimal.RequireFromString(total)),
		CustomerID:      customer,
		Country:         country,
		ProductCategory: "Misc",
		PriceCategory:   "Low",
		Year:            2011,
		Month:           3,
		Day:             day,
		DayOfWeek:       (int(date.Weekday()) + 6) % 7,
		WeekOfYear:      week,
	}
}

func scenarioRows() []models.Transaction {
	return []models.Transaction{
		tx("A1", "C1", "US", "100", 1),
		tx("A2", "C2", "US", "50", 1),
		tx("A3", "C3", "FR", "30", 2),
	}
}

// trackingStore counts open sessions and can be told to fail.
type trackingStore struct {
	rows       []models.Transaction
	acquireErr error
	readErr    error
	open       atomic.Int64
}

func (s *trackingStore) Acquire(ctx context.Context) (store.Session, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.open.Add(1)
	return &trackingSession{store: s}, nil
}

func (s *trackingStore) Close() error { return nil }

type trackingSession struct {
	store *trackingStore
}

func (s *trackingSession) Transactions(ctx context.Context) ([]models.Transaction, error) {
	if s.store.readErr != nil {
		return nil, s.store.readErr
	}
	return s.store.rows, nil
}

func (s *trackingSession) Count(ctx context.Context) (int64, error) {
	if s.store.readErr != nil {
		return 0, s.store.readErr
	}
	return int64(len(s.store.rows)), nil
}

func (s *trackingSession) Close() error {
	s.store.open.Add(-1)
	return nil
}

func TestAnalytics_SalesByCountryScenario(t *testing.T) {
	a := NewAnalytics(store.NewMemoryStore(scenarioRows()), testLogger())

	env := a.SalesByCountry(context.Background())
	if !env.OK() {
		t.Fatalf("status = %s, want success", env.Status)
	}

	got := env.Payload
	if got.TotalCountries != 2 || len(got.Countries) != 2 {
		t.Fatalf("unexpected countries %+v", got)
	}
	us := got.Countries[0]
	if us.Country != "US" || us.TotalSales != 150 || us.Customers != 2 || us.TicketAverage != 75 {
		t.Errorf("US = %+v, want 150/2/75", us)
	}
	fr := got.Countries[1]
	if fr.Country != "FR" || fr.TotalSales != 30 || fr.Customers != 1 || fr.TicketAverage != 30 {
		t.Errorf("FR = %+v, want 30/1/30", fr)
	}
}

func TestAnalytics_AllViewsSucceed(t *testing.T) {
	a := NewAnalytics(store.NewMemoryStore(scenarioRows()), testLogger())
	ctx := context.Background()

	statuses := map[string]models.Status{
		"temporal":  a.TemporalAnalysis(ctx).Status,
		"products":  a.ProductAnalysis(ctx).Status,
		"customers": a.CustomerAnalysis(ctx).Status,
		"billing":   a.BillingAnalysis(ctx).Status,
	}
	for view, status := range statuses {
		if status != models.StatusSuccess {
			t.Errorf("%s status = %s, want success", view, status)
		}
	}

	billing := a.BillingAnalysis(ctx).Payload
	if billing.AverageInvoiceValue != 60 {
		t.Errorf("media_diaria = %v, want 60", billing.AverageInvoiceValue)
	}
	if len(billing.Daily) != 2 {
		t.Errorf("got %d billing days, want 2", len(billing.Daily))
	}
}

func TestAnalytics_EmptyDataset(t *testing.T) {
	a := NewAnalytics(store.NewMemoryStore(nil), testLogger())
	ctx := context.Background()

	envelopes := map[string]any{
		"sales":     a.SalesByCountry(ctx),
		"temporal":  a.TemporalAnalysis(ctx),
		"products":  a.ProductAnalysis(ctx),
		"customers": a.CustomerAnalysis(ctx),
		"billing":   a.BillingAnalysis(ctx),
	}

	for view, env := range envelopes {
		body, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("%s: marshal: %v", view, err)
		}
		if !bytes.HasPrefix(body, []byte(`{"status":"success"`)) {
			t.Errorf("%s: body %s should report success", view, body)
		}
		if bytes.Contains(body, []byte("null")) {
			t.Errorf("%s: body %s contains null", view, body)
		}
	}
}

func TestAnalytics_StoreFailures(t *testing.T) {
	tests := []struct {
		name     string
		store    *trackingStore
		wantKind errors.ErrorCode
	}{
		{
			name:     "acquire fails",
			store:    &trackingStore{acquireErr: fmt.Errorf("connect: %w", errors.ErrDataAccess)},
			wantKind: errors.CodeDataAccess,
		},
		{
			name:     "read fails",
			store:    &trackingStore{readErr: fmt.Errorf("query: %w", errors.ErrDataAccess)},
			wantKind: errors.CodeDataAccess,
		},
		{
			name:     "malformed row",
			store:    &trackingStore{readErr: fmt.Errorf("scan row 3: %w", errors.ErrMalformedRow)},
			wantKind: errors.CodeMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			a := NewAnalytics(tt.store, slog.New(slog.NewTextHandler(&logs, nil)))

			env := a.CustomerAnalysis(context.Background())
			if env.Status != models.StatusError {
				t.Fatalf("status = %s, want error", env.Status)
			}
			if env.Payload.TopCustomers == nil || env.Payload.CountryDistribution == nil {
				t.Error("error envelope should carry the empty view, not nil collections")
			}
			if n := tt.store.open.Load(); n != 0 {
				t.Errorf("%d sessions left open", n)
			}
			if !strings.Contains(logs.String(), "error_kind="+string(tt.wantKind)) {
				t.Errorf("log missing error kind %s: %s", tt.wantKind, logs.String())
			}
		})
	}
}

func TestAnalytics_MalformedCalendar(t *testing.T) {
	rows := scenarioRows()
	rows[1].Month = 13

	st := &trackingStore{rows: rows}
	a := NewAnalytics(st, testLogger())

	env := a.TemporalAnalysis(context.Background())
	if env.Status != models.StatusError {
		t.Fatalf("status = %s, want error", env.Status)
	}
	if len(env.Payload.ByMonth) != 0 || env.Payload.ByMonth == nil {
		t.Errorf("ByMonth = %v, want empty slice", env.Payload.ByMonth)
	}
	if st.open.Load() != 0 {
		t.Error("session left open after compute error")
	}
}

func TestRunReport_RecoversPanic(t *testing.T) {
	st := &trackingStore{rows: scenarioRows()}
	a := NewAnalytics(st, testLogger())

	env := runReport(context.Background(), a, "exploding",
		func([]models.Transaction) (models.BillingAnalysis, error) {
			panic("division by zero")
		},
		models.EmptyBillingAnalysis,
	)

	if env.Status != models.StatusError {
		t.Errorf("status = %s, want error", env.Status)
	}
	if env.Payload.Daily == nil {
		t.Error("panic should still yield the empty view")
	}
	if st.open.Load() != 0 {
		t.Error("session left open after panic")
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics(store.NewMemoryStore(scenarioRows()), testLogger())

	stats, err := a.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Transactions != 3 {
		t.Errorf("Transactions = %d, want 3", stats.Transactions)
	}

	failing := NewAnalytics(&trackingStore{acquireErr: errors.ErrDataAccess}, testLogger())
	if _, err := failing.Stats(context.Background()); err == nil {
		t.Error("Stats() should surface store errors")
	}
}

func TestAnalytics_Ping(t *testing.T) {
	st := &trackingStore{}
	if err := NewAnalytics(st, testLogger()).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if st.open.Load() != 0 {
		t.Error("Ping() should release its session")
	}

	down := &trackingStore{acquireErr: errors.ErrDataAccess}
	if err := NewAnalytics(down, testLogger()).Ping(context.Background()); err == nil {
		t.Error("Ping() should fail when the store is down")
	}
}
