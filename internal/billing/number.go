package billing

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const numberPrefix = "INV"

// SequenceSource issues the next value of an atomic per-owner counter. A
// conforming implementation must serialize concurrent callers (two calls with
// the same prior state return distinct, consecutive values).
type SequenceSource interface {
	NextSeq(ctx context.Context, ownerID string, year int) (int64, error)
}

// LatestSource returns the invoice number of the owner's most recently
// created invoice, or empty string when the owner has none. Ties on creation
// time break by descending document id.
type LatestSource interface {
	LatestNumber(ctx context.Context, ownerID string) (string, error)
}

// Allocator produces human-readable invoice numbers in the form
// INV-<YY>-<NNNN>, scoped per owner.
//
// The primary path uses an atomic sequence, so concurrent saves by the same
// owner serialize; this is a deliberate hardening over the original
// scan-and-increment behaviour. When the sequence is unavailable the
// allocator degrades to deriving the next number from the owner's latest
// invoice, which preserves the original read-then-write race, and finally to
// a random suffix. Uniqueness on the degraded paths is therefore best effort
// only. Next never fails: an invoice save must not be blocked by numbering.
type Allocator struct {
	seq    SequenceSource
	latest LatestSource
	logger *slog.Logger

	now  func() time.Time
	intN func(int) int
}

// NewAllocator constructs an Allocator. Either source may be nil; with both
// nil every number is random.
func NewAllocator(seq SequenceSource, latest LatestSource, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		seq:    seq,
		latest: latest,
		logger: logger,
		now:    time.Now,
		intN:   rand.IntN,
	}
}

// Next returns the invoice number to assign to the owner's next invoice. An
// empty owner id yields a random preview placeholder that must never be
// persisted.
func (a *Allocator) Next(ctx context.Context, ownerID string) string {
	if ownerID == "" {
		return a.Preview()
	}

	year := a.currentYear()

	if a.seq != nil {
		seq, err := a.seq.NextSeq(ctx, ownerID, year)
		if err == nil {
			return FormatNumber(year, seq)
		}
		a.logger.Warn("invoice sequence unavailable, deriving from latest invoice",
			slog.String("owner", ownerID), slog.Any("error", err))
	}

	if a.latest != nil {
		prev, err := a.latest.LatestNumber(ctx, ownerID)
		if err != nil {
			a.logger.Warn("latest invoice lookup failed, falling back to random number",
				slog.String("owner", ownerID), slog.Any("error", err))
			return a.random(year)
		}
		if prev == "" {
			return FormatNumber(year, 1)
		}
		prevYear, prevSeq, ok := ParseNumber(prev)
		if !ok {
			a.logger.Warn("malformed prior invoice number, falling back to random number",
				slog.String("owner", ownerID), slog.String("prior", prev))
			return a.random(year)
		}
		return FormatNumber(prevYear, prevSeq+1)
	}

	return a.random(year)
}

// Preview returns a random placeholder number for unauthenticated preview
// rendering. It is not stable and not unique.
func (a *Allocator) Preview() string {
	return a.random(a.currentYear())
}

// FormatNumber renders a two-digit year and sequence as INV-<YY>-<NNNN>.
// Sequences beyond 9999 widen rather than wrap.
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%02d-%04d", numberPrefix, year%100, seq)
}

// ParseNumber extracts the two-digit year and sequence from an invoice
// number. ok is false for anything not shaped like INV-<YY>-<N...>.
func ParseNumber(s string) (year int, seq int64, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || parts[0] != numberPrefix {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || year < 0 {
		return 0, 0, false
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 0 {
		return 0, 0, false
	}
	return year, seq, true
}

func (a *Allocator) random(year int) string {
	return FormatNumber(year, int64(a.intN(9000)+1000))
}

func (a *Allocator) currentYear() int {
	return a.now().Year() % 100
}
