// Package stocks loads daily stock prices from a CSV file and answers
// ticker lookups against an in-memory, time-cached copy of the table.
package stocks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CSV column names.
const (
	ColumnTicker   = "Ticker"
	ColumnDate     = "Date"
	ColumnAdjClose = "Adj_Close"
)

// DateLayout is the format of the Date column and of date path parameters.
const DateLayout = "2006-01-02"

// Lookup errors.
var (
	ErrTickerNotFound = errors.New("no rows for ticker and date")
	ErrAmbiguousQuote = errors.New("more than one row for ticker and date")
	ErrMalformedPrice = errors.New("malformed adjusted close price")
	ErrInvalidDate    = errors.New("invalid date")
	ErrMissingColumn  = errors.New("missing required column")
)

// Quote is one CSV row. AdjClose is kept as text and parsed on lookup.
type Quote struct {
	Ticker   string
	Date     string
	AdjClose string

	day time.Time // zero when Date does not parse
}

// Price parses the adjusted close. Empty, NaN and infinite values are malformed.
func (q Quote) Price() (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(q.AdjClose), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: %s %s: %q", ErrMalformedPrice, q.Ticker, q.Date, q.AdjClose)
	}
	return p, nil
}

// Point is one entry of a price history.
type Point struct {
	Date     string  `json:"date"`
	AdjClose float64 `json:"adj_close"`
}

// Table holds the parsed CSV grouped by ticker.
type Table struct {
	byTicker map[string][]Quote
	rows     int
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.rows
}

// LoadFile reads and parses the CSV file at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stock csv: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a CSV with a header row containing at least Ticker, Date and Adj_Close.
// Other columns are ignored. Rows may have fewer fields than the header: a row
// without a ticker or date is skipped, and a missing price is left empty so only
// lookups that hit it fail.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	tickerCol, dateCol, closeCol := -1, -1, -1
	for name, col := range map[string]*int{ColumnTicker: &tickerCol, ColumnDate: &dateCol, ColumnAdjClose: &closeCol} {
		i, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		*col = i
	}

	t := &Table{byTicker: make(map[string][]Quote)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if len(rec) <= tickerCol || len(rec) <= dateCol {
			continue
		}

		q := Quote{
			Ticker: strings.TrimSpace(rec[tickerCol]),
			Date:   strings.TrimSpace(rec[dateCol]),
		}
		if closeCol < len(rec) {
			q.AdjClose = rec[closeCol]
		}
		if day, err := time.Parse(DateLayout, q.Date); err == nil {
			q.day = day
		}

		t.byTicker[q.Ticker] = append(t.byTicker[q.Ticker], q)
		t.rows++
	}

	return t, nil
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	day, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return day, nil
}

// Quote returns the single row for ticker on date. Ticker matching is exact;
// callers normalize case.
func (t *Table) Quote(ticker, date string) (Quote, error) {
	var (
		found Quote
		n     int
	)
	for _, q := range t.byTicker[ticker] {
		if q.Date == date {
			found = q
			n++
		}
	}

	switch n {
	case 0:
		return Quote{}, fmt.Errorf("%w: %s %s", ErrTickerNotFound, ticker, date)
	case 1:
		return found, nil
	default:
		return Quote{}, fmt.Errorf("%w: %s %s (%d rows)", ErrAmbiguousQuote, ticker, date, n)
	}
}

// History returns every row for ticker dated strictly before before, oldest first.
// Rows with unparseable dates are skipped.
func (t *Table) History(ticker string, before time.Time) ([]Point, error) {
	var matched []Quote
	for _, q := range t.byTicker[ticker] {
		if !q.day.IsZero() && q.day.Before(before) {
			matched = append(matched, q)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %s before %s", ErrTickerNotFound, ticker, before.Format(DateLayout))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].day.Before(matched[j].day)
	})

	points := make([]Point, 0, len(matched))
	for _, q := range matched {
		p, err := q.Price()
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Date: q.Date, AdjClose: p})
	}

	return points, nil
}
