package invoice

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// DefaultPrefix is the numbering prefix used when none is configured.
const DefaultPrefix = "FV"

var (
	prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*$`)
	numberPattern = regexp.MustCompile(`^([A-Z][A-Z0-9-]*)/(\d{4})/(0[1-9]|1[0-2])/(\d{3,})$`)
)

// CounterStore atomically increments the counter for (prefix, monthKey) and
// returns the new value. A missing counter starts at 1. Counters never decrease.
type CounterStore interface {
	Increment(ctx context.Context, prefix, monthKey string) (int64, error)
	// Advance raises the counter to at least ordinal. Lower values are ignored.
	Advance(ctx context.Context, prefix, monthKey string, ordinal int64) error
}

// Sequencer issues invoice numbers of the form PREFIX/YYYY/MM/NNN with a
// per-month counter.
type Sequencer struct {
	store CounterStore
	now   func() time.Time
}

// NewSequencer creates a sequencer backed by store. A nil clock means time.Now.
func NewSequencer(store CounterStore, now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{store: store, now: now}
}

// Next issues the next number for the current month.
func (s *Sequencer) Next(ctx context.Context, prefix string) (string, error) {
	return s.NextNumber(ctx, prefix, s.now())
}

// NextNumber issues the next number for the month of date.
func (s *Sequencer) NextNumber(ctx context.Context, prefix string, date time.Time) (string, error) {
	if !prefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}

	ordinal, err := s.store.Increment(ctx, prefix, MonthKey(date))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSequencing, err)
	}
	if ordinal < 1 {
		return "", fmt.Errorf("%w: counter returned %d", ErrSequencing, ordinal)
	}

	return FormatNumber(prefix, date.Year(), int(date.Month()), ordinal), nil
}

// Claim records a number assigned by hand so the counter never issues it
// again. The counter of the number's own prefix and month is advanced.
func (s *Sequencer) Claim(ctx context.Context, number string) error {
	n, ok := ParseNumber(number)
	if !ok {
		return fmt.Errorf("%w: malformed number %q", ErrSequencing, number)
	}

	monthKey := fmt.Sprintf("%04d-%02d", n.Year, n.Month)
	if err := s.store.Advance(ctx, n.Prefix, monthKey, n.Ordinal); err != nil {
		return fmt.Errorf("%w: %w", ErrSequencing, err)
	}
	return nil
}

// MonthKey returns the counter key "YYYY-MM" for date.
func MonthKey(date time.Time) string {
	return fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month()))
}

// FormatNumber renders PREFIX/YYYY/MM/NNN. Ordinals above 999 keep all their digits.
func FormatNumber(prefix string, year, month int, ordinal int64) string {
	return fmt.Sprintf("%s/%04d/%02d/%03d", prefix, year, month, ordinal)
}

// Number is a parsed invoice number.
type Number struct {
	Prefix  string
	Year    int
	Month   int
	Ordinal int64
}

// ParseNumber splits an invoice number into its parts.
func ParseNumber(s string) (Number, bool) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return Number{}, false
	}
	year, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	ordinal, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil || ordinal < 1 {
		return Number{}, false
	}
	return Number{Prefix: m[1], Year: year, Month: month, Ordinal: ordinal}, true
}

// ValidPrefix reports whether prefix can start an invoice number.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// ValidNumber reports whether s matches PREFIX/YYYY/MM/NNN.
func ValidNumber(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// MemoryCounterStore keeps counters in process memory. It is safe for
// concurrent use but does not survive restarts.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryCounterStore creates an empty in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counters: make(map[string]int64)}
}

// Increment implements CounterStore.
func (m *MemoryCounterStore) Increment(_ context.Context, prefix, monthKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := prefix + "|" + monthKey
	m.counters[key]++
	return m.counters[key], nil
}

// Advance implements CounterStore.
func (m *MemoryCounterStore) Advance(_ context.Context, prefix, monthKey string, ordinal int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := prefix + "|" + monthKey
	if ordinal > m.counters[key] {
		m.counters[key] = ordinal
	}
	return nil
}

var _ CounterStore = (*MemoryCounterStore)(nil)
