package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hls-mirror/internal/platform/metrics"
)

// ErrEmptyPlaylist is returned when a media playlist parsed successfully but
// yielded zero segment URIs.
var ErrEmptyPlaylist = errors.New("media playlist has no segments")

// RunnerOptions configures one Runner.
type RunnerOptions struct {
	// Concurrency bounds how many channels are mirrored at once.
	Concurrency int

	// ChannelTimeout is the whole-pipeline budget for one channel. When it
	// expires, remaining segment fetches are abandoned and the channel
	// proceeds to emission with whatever was already persisted.
	ChannelTimeout time.Duration

	// PublishBase is the external base URL under which the store's artifacts
	// are assumed reachable. The emitter only constructs URLs against it.
	PublishBase string
}

// Runner drives the per-channel pipeline
// resolve -> fetch -> parse -> sync -> emit
// across all configured channels and regenerates the master playlist from
// whatever succeeded. A stage failure is terminal for that channel only; it
// never aborts the run.
type Runner struct {
	resolver Resolver
	fetch    Fetcher
	store    SegmentStore
	sync     *Synchronizer
	opts     RunnerOptions
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewRunner wires a Runner. Concurrency <= 0 means 4; ChannelTimeout <= 0
// means 2 minutes. Metrics may be nil.
func NewRunner(resolver Resolver, fetch Fetcher, store SegmentStore, syn *Synchronizer, opts RunnerOptions, log *slog.Logger, m *metrics.Metrics) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.ChannelTimeout <= 0 {
		opts.ChannelTimeout = 2 * time.Minute
	}
	return &Runner{
		resolver: resolver,
		fetch:    fetch,
		store:    store,
		sync:     syn,
		opts:     opts,
		log:      log,
		metrics:  m,
	}
}

// Run mirrors all channels with bounded concurrency, writes the master
// playlist (even when zero channels succeeded), and returns the summary.
func (r *Runner) Run(ctx context.Context, channels []Channel) RunSummary {
	results := make([]ChannelResult, len(channels))

	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup

	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.runChannel(ctx, ch)
		}(i, ch)
	}
	wg.Wait()

	summary := RunSummary{Results: results}
	for _, res := range results {
		if res.Success {
			summary.Succeeded++
		}
	}

	master := BuildMasterPlaylist(results, r.opts.PublishBase)
	if err := r.store.WriteMasterPlaylist([]byte(master)); err != nil {
		r.log.Error("write master playlist failed", slog.String("error", err.Error()))
	}

	if r.metrics != nil {
		r.metrics.IncRuns()
		r.metrics.AddChannelsSucceeded(summary.Succeeded)
		r.metrics.AddChannelsFailed(len(results) - summary.Succeeded)
		r.metrics.SetLastRunChannelsOK(summary.Succeeded)
	}

	r.log.Info("run finished",
		slog.Int("channels", len(channels)),
		slog.Int("succeeded", summary.Succeeded),
	)
	return summary
}

// runChannel executes the pipeline for a single channel under its timeout
// budget and maps any failure to the stage it occurred in.
func (r *Runner) runChannel(ctx context.Context, ch Channel) ChannelResult {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ChannelTimeout)
	defer cancel()

	log := r.log.With(slog.String("channel", string(ch.ID)))
	fail := func(stage Stage, err error) ChannelResult {
		log.Warn("channel failed",
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()))
		return ChannelResult{Channel: ch, Stage: stage, Err: err}
	}

	manifestURL, err := r.resolver.Resolve(ctx, ch.URL)
	if err != nil {
		return fail(StageResolve, err)
	}
	log.Debug("manifest resolved")

	manifestBody, err := r.fetch.Fetch(ctx, manifestURL)
	if err != nil {
		return fail(StageFetch, fmt.Errorf("fetch manifest: %w", err))
	}

	mediaURL := manifestURL
	mediaText := string(manifestBody)
	if v, ok := SelectVariant(ParseMasterPlaylist(mediaText, manifestURL)); ok {
		mediaURL = v.URL
		log.Debug("variant selected", slog.Int("bandwidth", v.Bandwidth))

		body, err := r.fetch.Fetch(ctx, mediaURL)
		if err != nil {
			return fail(StageFetch, fmt.Errorf("fetch media playlist: %w", err))
		}
		mediaText = string(body)
	}

	refs := ParseMediaPlaylist(mediaText, mediaURL)
	if len(refs) == 0 {
		return fail(StageParse, ErrEmptyPlaylist)
	}

	stored, err := r.sync.Sync(ctx, ch.ID, refs)
	if err != nil {
		return fail(StageSync, err)
	}

	playlist := BuildLocalPlaylist(stored, r.channelPublishBase(ch.ID))
	if err := r.store.WriteChannelPlaylist(ch.ID, []byte(playlist)); err != nil {
		return fail(StageEmit, err)
	}

	log.Info("channel mirrored", slog.Int("segments", len(stored)))
	return ChannelResult{Channel: ch, Success: true, Segments: len(stored)}
}

func (r *Runner) channelPublishBase(id ChannelID) string {
	base := r.opts.PublishBase
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + string(id)
}
