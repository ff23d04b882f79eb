package mirror

// ChannelID uniquely identifies a tracked channel. It doubles as the storage
// namespace and the URL path segment under the publishing location.
type ChannelID string

// Channel is one tracked live source. Loaded once per run, never mutated.
// This also matches the channels.json entry format.
type Channel struct {
	ID    ChannelID `json:"id"`
	Name  string    `json:"name"`
	URL   string    `json:"url"`
	Logo  string    `json:"logo,omitempty"`
	Group string    `json:"group,omitempty"`
}

// Variant is one quality entry of a master playlist. Bandwidth is only a sort
// key; it is not validated beyond parsing.
type Variant struct {
	Bandwidth int
	URL       string
}

// SegmentRef is a segment descriptor parsed out of a media playlist, before
// any fetching has happened.
type SegmentRef struct {
	Duration float64
	URL      string
}

// StoredSegment is a segment that was fetched and persisted this cycle.
// Index is its position in the cycle's successful-fetch sequence, zero-based;
// Filename is the zero-padded derived name (seg_0000.ts, ...).
type StoredSegment struct {
	Index    int
	Filename string
	Duration float64
}

// Stage names the pipeline stage a channel was in when it failed.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageParse   Stage = "parse"
	StageSync    Stage = "sync"
	StageEmit    Stage = "emit"
)

// ChannelResult is the per-channel outcome of one run.
type ChannelResult struct {
	Channel  Channel
	Success  bool
	Segments int
	Stage    Stage // stage that failed; empty on success
	Err      error
}

// RunSummary aggregates all channel outcomes of one run.
type RunSummary struct {
	Results   []ChannelResult
	Succeeded int
}

// OK reports whether the run as a whole counts as successful: at least one
// channel produced a valid cycle.
func (s RunSummary) OK() bool {
	return s.Succeeded > 0
}
