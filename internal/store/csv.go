package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CSVStore reads transactions from a CSV export of the table. The header row
// names the columns; only NumeroFatura and DataFatura are required.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) (*CSVStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat csv file: %w: %w", errors.ErrDataAccess, err)
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Acquire(ctx context.Context) (Session, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w: %w", errors.ErrDataAccess, err)
	}
	return &csvSession{file: file}, nil
}

func (s *CSVStore) Close() error { return nil }

type csvSession struct {
	file *os.File
}

func (s *csvSession) Close() error {
	return s.file.Close()
}

func (s *csvSession) rewind() (*csv.Reader, map[string]int, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("rewind csv file: %w: %w", errors.ErrDataAccess, err)
	}

	reader := csv.NewReader(s.file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("empty csv file: %w", errors.ErrMalformedRow)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w: %w", errors.ErrMalformedRow, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"NumeroFatura", "DataFatura"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("csv header missing column %s: %w", required, errors.ErrMalformedRow)
		}
	}

	return reader, index, nil
}

func (s *csvSession) Count(ctx context.Context) (int64, error) {
	reader, _, err := s.rewind()
	if err != nil {
		return 0, err
	}

	var n int64
	for {
		if _, err := reader.Read(); err == io.EOF {
			return n, nil
		} else if err != nil {
			return 0, fmt.Errorf("read csv record %d: %w: %w", n, errors.ErrMalformedRow, err)
		}
		n++
	}
}

func (s *csvSession) Transactions(ctx context.Context) ([]models.Transaction, error) {
	reader, index, err := s.rewind()
	if err != nil {
		return nil, err
	}

	result := make([]models.Transaction, 0, batchSize)
	batch := make([][]string, 0, batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record %d: %w: %w", len(result)+len(batch), errors.ErrMalformedRow, err)
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if result, err = processBatch(ctx, batch, index, result); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if result, err = processBatch(ctx, batch, index, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// processBatch parses records concurrently and appends them to dst in
// input order.
func processBatch(ctx context.Context, batch [][]string, index map[string]int, dst []models.Transaction) ([]models.Transaction, error) {
	offset := len(dst)
	parsed := make([]models.Transaction, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, record := range batch {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			tx, err := parseRecord(record, index)
			if err != nil {
				return fmt.Errorf("csv record %d: %w: %w", offset+i, errors.ErrMalformedRow, err)
			}
			parsed[i] = tx
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(dst, parsed...), nil
}

type fields struct {
	record []string
	index  map[string]int
}

func (f fields) get(name string) string {
	i, ok := f.index[name]
	if !ok || i >= len(f.record) {
		return ""
	}
	return strings.TrimSpace(f.record[i])
}

func (f fields) decimalField(name string) (decimal.NullDecimal, error) {
	v := f.get(name)
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

func (f fields) intField(name string) (sql.NullInt64, error) {
	v := f.get(name)
	if v == "" {
		return sql.NullInt64{}, nil
	}
	// Float exports write integers as "24.0", "24.00" or "2.4e1".
	d, err := decimal.NewFromString(v)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("%s: %w", name, err)
	}
	if !d.IsInteger() || d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return sql.NullInt64{}, fmt.Errorf("%s: %q is not an integer", name, v)
	}
	return sql.NullInt64{Int64: d.IntPart(), Valid: true}, nil
}

func (f fields) boolField(name string) (bool, error) {
	v := f.get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("DataFatura: unrecognised date %q", v)
}

func parseRecord(record []string, index map[string]int) (models.Transaction, error) {
	f := fields{record: record, index: index}

	tx := models.Transaction{
		InvoiceNumber:   f.get("NumeroFatura"),
		ProductCode:     f.get("CodigoProduto"),
		Description:     f.get("Descricao"),
		CustomerID:      f.get("IDCliente"),
		Country:         f.get("Pais"),
		ProductCategory: f.get("CategoriaProduto"),
		PriceCategory:   f.get("CategoriaPreco"),
	}
	if tx.InvoiceNumber == "" {
		return models.Transaction{}, fmt.Errorf("NumeroFatura is empty")
	}

	var err error
	if tx.InvoiceDate, err = parseDate(f.get("DataFatura")); err != nil {
		return models.Transaction{}, err
	}
	if tx.Quantity, err = f.intField("Quantidade"); err != nil {
		return models.Transaction{}, err
	}
	if tx.UnitPrice, err = f.decimalField("PrecoUnitario"); err != nil {
		return models.Transaction{}, err
	}
	if tx.TotalValue, err = f.decimalField("ValorTotalFatura"); err != nil {
		return models.Transaction{}, err
	}
	if tx.SingleLine, err = f.boolField("FaturaUnica"); err != nil {
		return models.Transaction{}, err
	}

	var cal calendarColumns
	for name, dst := range map[string]*sql.NullInt64{
		"Ano":       &cal.year,
		"Mes":       &cal.month,
		"Dia":       &cal.day,
		"DiaSemana": &cal.dayOfWeek,
		"SemanaAno": &cal.week,
	} {
		if *dst, err = f.intField(name); err != nil {
			return models.Transaction{}, err
		}
	}
	cal.apply(&tx)

	return tx, nil
}
