package datafeed

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-backtester/internal/options"
)

const header = "underlying_symbol,underlying_price,option_type,expiration,quote_date,strike,bid,ask,delta,volume\n"

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+body), 0o644))
	return path
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t,
		"SPX,212,call,2018-01-31,2018-01-01,210,5.50,5.60,0.55,1200\n"+
			"SPX,212,put,2018-01-31,2018-01-01,210,2.50,2.60,-0.45,800\n")

	chain, err := LoadCSV(path, Options{HasDelta: true, HasVolume: true})
	require.NoError(t, err)
	require.Equal(t, 2, chain.Len())
	assert.True(t, chain.HasDelta)
	assert.True(t, chain.HasVolume)

	q := chain.Quotes[0]
	assert.Equal(t, "SPX", q.UnderlyingSymbol)
	assert.Equal(t, options.Call, q.OptionType)
	assert.Equal(t, date("2018-01-31"), q.Expiration)
	assert.Equal(t, date("2018-01-01"), q.QuoteDate)
	assert.InDelta(t, 210.0, q.Strike, 1e-9)
	assert.InDelta(t, 5.50, q.Bid, 1e-9)
	assert.InDelta(t, 0.55, q.Delta, 1e-9)
	assert.InDelta(t, 1200.0, q.Volume, 1e-9)
}

func TestLoadCSVOptionalColumnsBecomeNaN(t *testing.T) {
	path := writeCSV(t, "SPX,212,call,2018-01-31,2018-01-01,210,5.50,5.60,0.55,1200\n")

	chain, err := LoadCSV(path, Options{})
	require.NoError(t, err)
	assert.False(t, chain.HasDelta)
	assert.False(t, chain.HasVolume)
	assert.True(t, math.IsNaN(chain.Quotes[0].Delta))
	assert.True(t, math.IsNaN(chain.Quotes[0].Volume))
}

func TestLoadCSVExpirationWindow(t *testing.T) {
	path := writeCSV(t,
		"SPX,212,call,2018-01-31,2018-01-01,210,5.50,5.60,0,0\n"+
			"SPX,212,call,2018-02-28,2018-01-01,210,6.50,6.60,0,0\n"+
			"SPX,212,call,2018-04-30,2018-01-01,210,8.50,8.60,0,0\n")

	chain, err := LoadCSV(path, Options{
		StartDate: date("2018-02-01"),
		EndDate:   date("2018-03-31"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, chain.Len())
	assert.Equal(t, date("2018-02-28"), chain.Quotes[0].Expiration)
}

func TestLoadCSVEmptyWindowErrors(t *testing.T) {
	path := writeCSV(t, "SPX,212,call,2018-01-31,2018-01-01,210,5.50,5.60,0,0\n")

	_, err := LoadCSV(path, Options{StartDate: date("2019-01-01")})
	assert.Error(t, err)
}

func TestLoadCSVBadOptionType(t *testing.T) {
	path := writeCSV(t,
		"SPX,212,call,2018-01-31,2018-01-01,210,5.50,5.60,0,0\n"+
			"SPX,212,warrant,2018-01-31,2018-01-01,210,5.50,5.60,0,0\n")

	_, err := LoadCSV(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), Options{})
	assert.Error(t, err)
}

func TestDateCellLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2018-01-31":          date("2018-01-31"),
		"2018-01-31 15:30:00": date("2018-01-31"),
		"01/31/2018":          date("2018-01-31"),
		"2018/01/31":          date("2018-01-31"),
	}
	for in, want := range cases {
		var d Date
		require.NoError(t, d.UnmarshalCSV(in), "input %q", in)
		assert.Equal(t, want, d.Time, "input %q", in)
	}

	var d Date
	assert.Error(t, d.UnmarshalCSV("31 Jan 2018"))

	d.Time = date("2018-01-31")
	s, err := d.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "2018-01-31", s)
}
