package market

import "sync"

// DefaultCapacity bounds the store; once full the oldest candle is evicted.
const DefaultCapacity = 200

// Store is a bounded, time-ordered buffer of completed candles. It is the
// single source of truth for downstream analysis. One mutex guards it so the
// ingestion path may Append while the decision loop reads Window.
type Store struct {
	mu      sync.Mutex
	candles []Candle
	cap     int
}

// NewStore returns a store bounded at capacity. capacity <= 0 falls back to
// DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		candles: make([]Candle, 0, capacity),
		cap:     capacity,
	}
}

// Append validates and stores a candle, evicting the oldest entry once
// capacity is exceeded. A *ValidationError rejects only the offending
// candle; the store remains usable.
func (s *Store) Append(c Candle) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.candles) == s.cap {
		copy(s.candles, s.candles[1:])
		s.candles = s.candles[:s.cap-1]
	}
	s.candles = append(s.candles, c)
	return nil
}

// Window returns copies of the most recent n candles in chronological
// order, or fewer if there is not enough history. It never errors; callers
// must check the returned length.
func (s *Store) Window(n int) []Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.candles) {
		n = len(s.candles)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Candle, n)
	copy(out, s.candles[len(s.candles)-n:])
	return out
}

// Len returns the number of stored candles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candles)
}

// Last returns the most recent candle, if any.
func (s *Store) Last() (Candle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}
