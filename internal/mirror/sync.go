package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hls-mirror/internal/platform/metrics"
)

// DefaultRetentionWindow bounds how many segments are fetched per cycle and
// how many are retained on disk per channel.
const DefaultRetentionWindow = 10

// ErrNoSegments is returned when a sync cycle persisted zero segments.
var ErrNoSegments = errors.New("no segments fetched")

// Synchronizer downloads the segments of one media playlist into the store
// and enforces the retention window. It is safe for concurrent use across
// different channels; the runner guarantees a single writer per channel.
type Synchronizer struct {
	fetch   Fetcher
	store   SegmentStore
	window  int
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewSynchronizer returns a Synchronizer keeping at most window segments per
// channel. If window <= 0, DefaultRetentionWindow is used. Metrics may be nil
// to disable metric recording (e.g. in tests).
func NewSynchronizer(fetch Fetcher, store SegmentStore, window int, log *slog.Logger, m *metrics.Metrics) *Synchronizer {
	if window <= 0 {
		window = DefaultRetentionWindow
	}
	return &Synchronizer{fetch: fetch, store: store, window: window, log: log, metrics: m}
}

// Sync fetches at most the retention window's worth of segments from refs in
// playlist order, persists each successful payload under the channel
// namespace, prunes stale files beyond the window, and returns the persisted
// segments. Indexes and filenames are contiguous over successful fetches
// only: a failed segment is skipped and does not consume a slot. If zero
// segments land, ErrNoSegments is returned and nothing is pruned.
func (s *Synchronizer) Sync(ctx context.Context, id ChannelID, refs []SegmentRef) ([]StoredSegment, error) {
	var stored []StoredSegment

	for _, ref := range refs {
		if ctx.Err() != nil {
			// Channel budget exhausted: keep what already landed.
			break
		}

		data, err := s.fetch.Fetch(ctx, ref.URL)
		if err != nil {
			s.log.Debug("segment fetch failed",
				slog.String("channel", string(id)),
				slog.String("url", ref.URL),
				slog.String("error", err.Error()))
			continue
		}

		filename := fmt.Sprintf(SegmentFilePattern, len(stored))
		if err := s.store.WriteSegment(id, filename, data); err != nil {
			return nil, fmt.Errorf("write segment %s: %w", filename, err)
		}

		stored = append(stored, StoredSegment{
			Index:    len(stored),
			Filename: filename,
			Duration: ref.Duration,
		})
		if s.metrics != nil {
			s.metrics.IncSegmentsDownloaded()
		}

		if len(stored) >= s.window {
			break
		}
	}

	if len(stored) == 0 {
		return nil, ErrNoSegments
	}

	if err := s.prune(id); err != nil {
		return nil, err
	}
	return stored, nil
}

// prune deletes all but the newest window segment files for the channel,
// oldest-first by filename order. Running it again with no new fetches is a
// no-op.
func (s *Synchronizer) prune(id ChannelID) error {
	names, err := s.store.ListSegments(id)
	if err != nil {
		return fmt.Errorf("list segments: %w", err)
	}
	if len(names) <= s.window {
		return nil
	}

	for _, name := range names[:len(names)-s.window] {
		if err := s.store.RemoveSegment(id, name); err != nil {
			return fmt.Errorf("remove segment %s: %w", name, err)
		}
		s.log.Debug("pruned old segment",
			slog.String("channel", string(id)),
			slog.String("segment", name))
		if s.metrics != nil {
			s.metrics.IncSegmentsPruned()
		}
	}
	return nil
}
