package signals

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNilAndEmptySetsAllowEverything(t *testing.T) {
	var nilSet *DateSet
	assert.True(t, nilSet.Contains(date("2018-01-01")))
	assert.Zero(t, nilSet.Len())
	assert.Nil(t, nilSet.Dates())

	empty := NewDateSet(nil)
	assert.True(t, empty.Contains(date("2018-01-01")))
	assert.Zero(t, empty.Len())
}

func TestContainsTruncatesTimeOfDay(t *testing.T) {
	s := NewDateSet([]time.Time{
		time.Date(2018, 1, 1, 15, 30, 0, 0, time.UTC),
	})

	assert.True(t, s.Contains(date("2018-01-01")))
	assert.True(t, s.Contains(time.Date(2018, 1, 1, 9, 15, 0, 0, time.UTC)))
	assert.False(t, s.Contains(date("2018-01-02")))
	assert.Equal(t, 1, s.Len())
}

func TestDatesSortedAndDeduplicated(t *testing.T) {
	s := NewDateSet([]time.Time{
		date("2018-03-01"),
		date("2018-01-01"),
		time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC),
		date("2018-02-01"),
	})

	got := s.Dates()
	assert.Equal(t, []time.Time{
		date("2018-01-01"), date("2018-02-01"), date("2018-03-01"),
	}, got)
}

func TestUnion(t *testing.T) {
	a := NewDateSet([]time.Time{date("2018-01-01"), date("2018-01-02")})
	b := NewDateSet([]time.Time{date("2018-01-02"), date("2018-01-03")})

	u := a.Union(b)
	assert.Equal(t, 3, u.Len())
	assert.True(t, u.Contains(date("2018-01-01")))
	assert.True(t, u.Contains(date("2018-01-03")))

	var nilSet *DateSet
	assert.Equal(t, 2, nilSet.Union(a).Len())
	assert.Zero(t, nilSet.Union(nil).Len())
}

func TestIntersect(t *testing.T) {
	a := NewDateSet([]time.Time{date("2018-01-01"), date("2018-01-02")})
	b := NewDateSet([]time.Time{date("2018-01-02"), date("2018-01-03")})

	i := a.Intersect(b)
	assert.Equal(t, 1, i.Len())
	assert.True(t, i.Contains(date("2018-01-02")))
	assert.False(t, i.Contains(date("2018-01-01")))

	var nilSet *DateSet
	assert.Zero(t, nilSet.Intersect(a).Len())
}

func TestPropertyDateSetMembership(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	base := date("2018-01-01")

	properties.Property("every inserted date is a member at any time of day", prop.ForAll(
		func(offsets []int, hour int) bool {
			dates := make([]time.Time, len(offsets))
			for i, off := range offsets {
				dates[i] = base.AddDate(0, 0, off)
			}
			s := NewDateSet(dates)
			for _, off := range offsets {
				probe := base.AddDate(0, 0, off).Add(time.Duration(hour) * time.Hour)
				if !s.Contains(probe) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, gen.IntRange(0, 365)),
		gen.IntRange(0, 23),
	))

	properties.Property("union length never shrinks below either operand", prop.ForAll(
		func(a, b []int) bool {
			sa := NewDateSet(offsetDates(base, a))
			sb := NewDateSet(offsetDates(base, b))
			u := sa.Union(sb)
			return u.Len() >= sa.Len() && u.Len() >= sb.Len()
		},
		gen.SliceOfN(8, gen.IntRange(0, 30)),
		gen.SliceOfN(8, gen.IntRange(0, 30)),
	))

	properties.TestingRun(t)
}

func offsetDates(base time.Time, offsets []int) []time.Time {
	out := make([]time.Time, len(offsets))
	for i, off := range offsets {
		out[i] = base.AddDate(0, 0, off)
	}
	return out
}
