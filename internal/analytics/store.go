// Package analytics maintains the 7-day engagement counters behind the
// catalog's normalized ranking signals.
//
// Raw pageview and guide-click events are bucketed per slug per day in a
// Badger database. At build/ingest time the last seven days are summed and
// max-normalized into the pv7_norm, guide_clicks7_norm, and clicks7_norm
// fields the ranking engine consumes.
package analytics

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/blueroomhub/blueroom-builder/internal/domain"
	"github.com/blueroomhub/blueroom-builder/internal/errors"
)

// Key prefixes for the two counter families.
const (
	prefixPageView   = "pv:"
	prefixGuideClick = "gc:"
)

// dayLayout is the date bucket format used in counter keys.
const dayLayout = "20060102"

// windowDays is the rolling window the normalized signals cover.
const windowDays = 7

// Signals holds the normalized engagement values for one slug.
type Signals struct {
	Pv7Norm          float64
	GuideClicks7Norm float64
}

// Store wraps a Badger database of daily engagement counters.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) the counter database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Counters feed published rankings; don't lose them on crash
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "open analytics db")
	}

	logger.Debug("analytics database opened", "path", path)

	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordPageView increments today's pageview counter for a game slug.
func (s *Store) RecordPageView(slug string) error {
	return s.increment(prefixPageView, slug)
}

// RecordGuideClick increments today's guide-click counter for a guide slug.
func (s *Store) RecordGuideClick(slug string) error {
	return s.increment(prefixGuideClick, slug)
}

// Signals sums the rolling window per slug and max-normalizes each counter
// family into [0, 1]. Slugs with no events in the window are absent from the
// result; callers treat that as zero.
func (s *Store) Signals() (map[string]Signals, error) {
	pageviews, err := s.windowTotals(prefixPageView)
	if err != nil {
		return nil, err
	}
	clicks, err := s.windowTotals(prefixGuideClick)
	if err != nil {
		return nil, err
	}

	maxPv := maxValue(pageviews)
	maxClicks := maxValue(clicks)

	out := make(map[string]Signals, len(pageviews)+len(clicks))
	for slug, n := range pageviews {
		sig := out[slug]
		sig.Pv7Norm = normalize(n, maxPv)
		out[slug] = sig
	}
	for slug, n := range clicks {
		sig := out[slug]
		sig.GuideClicks7Norm = normalize(n, maxClicks)
		out[slug] = sig
	}
	return out, nil
}

// Apply copies the normalized signals onto catalog records. Records with no
// recorded engagement keep zeroed signals rather than stale ones.
func (s *Store) Apply(games []*domain.Game, guides []*domain.Guide) error {
	signals, err := s.Signals()
	if err != nil {
		return err
	}

	for _, g := range games {
		sig := signals[g.Slug]
		g.Pv7Norm = sig.Pv7Norm
		g.GuideClicks7Norm = sig.GuideClicks7Norm
	}
	for _, g := range guides {
		g.Clicks7Norm = signals[g.Slug].GuideClicks7Norm
	}

	s.logger.Debug("applied engagement signals", "slugs_with_events", len(signals))
	return nil
}

// increment bumps the current day bucket for one slug.
func (s *Store) increment(prefix, slug string) error {
	if slug == "" {
		return errors.Validation("slug is required")
	}
	key := []byte(prefix + slug + ":" + s.now().UTC().Format(dayLayout))

	err := s.db.Update(func(txn *badger.Txn) error {
		var count uint64
		item, err := txn.Get(key)
		if err == nil {
			if err := item.Value(func(val []byte) error {
				count, err = strconv.ParseUint(string(val), 10, 64)
				return err
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, []byte(strconv.FormatUint(count+1, 10)))
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodePersistence, "increment %s%s", prefix, slug)
	}
	return nil
}

// windowTotals sums counters per slug over the rolling window.
func (s *Store) windowTotals(prefix string) (map[string]uint64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -(windowDays - 1)).Format(dayLayout)

	totals := make(map[string]uint64)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			key := string(it.Item().Key())
			slug, day, ok := splitCounterKey(key, prefix)
			if !ok {
				s.logger.Warn("skipping malformed counter key", "key", key)
				continue
			}
			if day < cutoff {
				continue
			}

			err := it.Item().Value(func(val []byte) error {
				n, err := strconv.ParseUint(string(val), 10, 64)
				if err != nil {
					return fmt.Errorf("counter %s: %w", key, err)
				}
				totals[slug] += n
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "scan counters")
	}
	return totals, nil
}

// splitCounterKey parses "<prefix><slug>:<yyyymmdd>".
func splitCounterKey(key, prefix string) (slug, day string, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

func maxValue(m map[string]uint64) uint64 {
	var max uint64
	for _, n := range m {
		if n > max {
			max = n
		}
	}
	return max
}

func normalize(n, max uint64) float64 {
	if max == 0 {
		return 0
	}
	return float64(n) / float64(max)
}
