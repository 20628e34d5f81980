package market

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(o, h, l, c, v float64) Candle {
	return Candle{Time: time.Unix(0, 0), Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestCandleValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		candle Candle
		ok     bool
	}{
		{"valid", bar(100, 110, 95, 105, 10), true},
		{"flat_doji", bar(100, 100, 100, 100, 0), true},
		{"zero_open", bar(0, 110, 95, 105, 10), false},
		{"negative_open", bar(-1, 110, 95, 105, 10), false},
		{"low_above_open", bar(100, 110, 101, 105, 10), false},
		{"low_above_close", bar(100, 110, 99, 98, 10), false},
		{"high_below_open", bar(100, 99, 95, 98, 10), false},
		{"high_below_close", bar(100, 104, 95, 105, 10), false},
		{"negative_volume", bar(100, 110, 95, 105, -1), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.candle.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestStoreAppendRejectsInvalid(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	require.Error(t, s.Append(bar(0, 1, 0, 1, 0)))
	assert.Equal(t, 0, s.Len())

	// The store keeps accepting good candles after a rejection.
	require.NoError(t, s.Append(bar(100, 110, 95, 105, 10)))
	assert.Equal(t, 1, s.Len())
}

func TestStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	for i := 0; i < 5; i++ {
		c := bar(100+float64(i), 110+float64(i), 95, 105+float64(i), 10)
		c.Time = time.Unix(int64(i*60), 0)
		require.NoError(t, s.Append(c))
	}

	assert.Equal(t, 3, s.Len())
	w := s.Window(3)
	require.Len(t, w, 3)
	assert.Equal(t, 102.0, w[0].Open)
	assert.Equal(t, 104.0, w[2].Open)
	assert.True(t, w[0].Time.Before(w[2].Time))
}

func TestStoreWindowShortHistory(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	require.NoError(t, s.Append(bar(100, 110, 95, 105, 10)))

	assert.Len(t, s.Window(5), 1)
	assert.Nil(t, s.Window(0))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 105.0, last.Close)
}

func TestStoreWindowReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	require.NoError(t, s.Append(bar(100, 110, 95, 105, 10)))

	w := s.Window(1)
	w[0].Close = 999

	w2 := s.Window(1)
	assert.Equal(t, 105.0, w2[0].Close)
}

func TestStoreConcurrentAppendAndRead(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultCapacity)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Append(bar(100, 110, 95, 105, 10))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Window(20)
			_ = s.Len()
		}
	}()

	wg.Wait()
	assert.Equal(t, DefaultCapacity, s.Len())
}
