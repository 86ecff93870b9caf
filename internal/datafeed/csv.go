// Package datafeed loads option chain data from CSV files into the
// normalized in-memory representation the engine consumes.
package datafeed

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"options-backtester/internal/errors"
	"options-backtester/internal/options"
)

// Date is a CSV cell holding a calendar date. Several common encodings are
// accepted.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// UnmarshalCSV parses a date cell.
func (d *Date) UnmarshalCSV(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", s)
}

// MarshalCSV renders the date in ISO form.
func (d *Date) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

// row mirrors one CSV record with the standardized column names.
type row struct {
	UnderlyingSymbol string  `csv:"underlying_symbol"`
	UnderlyingPrice  float64 `csv:"underlying_price"`
	OptionType       string  `csv:"option_type"`
	Expiration       Date    `csv:"expiration"`
	QuoteDate        Date    `csv:"quote_date"`
	Strike           float64 `csv:"strike"`
	Bid              float64 `csv:"bid"`
	Ask              float64 `csv:"ask"`
	Delta            float64 `csv:"delta"`
	Volume           float64 `csv:"volume"`
}

// Options controls CSV loading.
type Options struct {
	// StartDate/EndDate trim rows to an inclusive expiration window. Zero
	// values leave that side open.
	StartDate time.Time
	EndDate   time.Time
	// HasDelta/HasVolume declare which optional columns the file carries.
	// Without them the corresponding quote fields are NaN and the features
	// depending on them stay disabled.
	HasDelta  bool
	HasVolume bool
}

// LoadCSV reads an option chain CSV with the standardized header columns
// (underlying_symbol, underlying_price, option_type, expiration, quote_date,
// strike, bid, ask, plus optional delta and volume).
func LoadCSV(path string, opts Options) (options.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return options.Chain{}, errors.NewDataError("csv", path, "open failed", err)
	}
	defer f.Close()

	var rows []*row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return options.Chain{}, errors.NewDataError("csv", path, "parse failed", err)
	}

	quotes := make([]options.Quote, 0, len(rows))
	for i, r := range rows {
		if !opts.StartDate.IsZero() && r.Expiration.Before(opts.StartDate) {
			continue
		}
		if !opts.EndDate.IsZero() && r.Expiration.After(opts.EndDate) {
			continue
		}

		typ, err := options.ParseOptionType(r.OptionType)
		if err != nil {
			return options.Chain{}, errors.NewDataError("csv", path,
				fmt.Sprintf("row %d: %v", i+1, err), errors.ErrInputValidation)
		}
		q := options.Quote{
			UnderlyingSymbol: r.UnderlyingSymbol,
			UnderlyingPrice:  r.UnderlyingPrice,
			OptionType:       typ,
			Expiration:       r.Expiration.Time,
			QuoteDate:        r.QuoteDate.Time,
			Strike:           r.Strike,
			Bid:              r.Bid,
			Ask:              r.Ask,
			Delta:            r.Delta,
			Volume:           r.Volume,
		}
		if !opts.HasDelta {
			q.Delta = math.NaN()
		}
		if !opts.HasVolume {
			q.Volume = math.NaN()
		}
		quotes = append(quotes, q)
	}
	if len(quotes) == 0 {
		return options.Chain{}, errors.NewDataError("csv", path, "no rows in window", errors.ErrDataNotFound)
	}
	return options.NewChain(quotes, opts.HasDelta, opts.HasVolume), nil
}
