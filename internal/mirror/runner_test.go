package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeResolver struct {
	manifests map[string]string
	errs      map[string]error
}

func (r *fakeResolver) Resolve(ctx context.Context, channelURL string) (string, error) {
	if err, ok := r.errs[channelURL]; ok {
		return "", err
	}
	if m, ok := r.manifests[channelURL]; ok {
		return m, nil
	}
	return "", ErrNoManifest
}

// wireChannel registers a full happy path for one channel: manifest (master
// with one variant), media playlist, and n downloadable segments.
func wireChannel(resolver *fakeResolver, fetch *fakeFetcher, ch Channel, n int) {
	manifestURL := fmt.Sprintf("https://cdn.example.com/%s/manifest.m3u8", ch.ID)
	mediaURL := fmt.Sprintf("https://cdn.example.com/%s/hi/index.m3u8", ch.ID)

	resolver.manifests[ch.URL] = manifestURL
	fetch.responses[manifestURL] = []byte("#EXT-X-STREAM-INF:BANDWIDTH=1200000\nhi/index.m3u8\n")

	var media strings.Builder
	media.WriteString("#EXTM3U\n")
	for i := 0; i < n; i++ {
		segURL := fmt.Sprintf("https://cdn.example.com/%s/hi/seg%d.ts", ch.ID, i)
		media.WriteString("#EXTINF:2.0,\n")
		media.WriteString(fmt.Sprintf("seg%d.ts\n", i))
		fetch.responses[segURL] = []byte(fmt.Sprintf("%s-%d", ch.ID, i))
	}
	fetch.responses[mediaURL] = []byte(media.String())
}

func newTestRunner(resolver Resolver, fetch Fetcher, store SegmentStore) *Runner {
	log := newTestLogger()
	syn := NewSynchronizer(fetch, store, 10, log, nil)
	return NewRunner(resolver, fetch, store, syn, RunnerOptions{
		Concurrency:    2,
		ChannelTimeout: 5 * time.Second,
		PublishBase:    "https://host.example.com/mirror",
	}, log, nil)
}

func TestRunner_failed_channel_isolated(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	chOK := Channel{ID: "news-1", Name: "News One", URL: "https://www.youtube.com/@news1", Group: "News"}
	chBad := Channel{ID: "sports-1", Name: "Sports One", URL: "https://www.youtube.com/@sports1"}
	wireChannel(resolver, fetch, chOK, 3)
	resolver.errs[chBad.URL] = errors.New("resolver timed out")

	runner := newTestRunner(resolver, fetch, store)
	summary := runner.Run(context.Background(), []Channel{chOK, chBad})

	if summary.Succeeded != 1 || !summary.OK() {
		t.Fatalf("expected 1 success, got %d", summary.Succeeded)
	}
	if !summary.Results[0].Success || summary.Results[0].Segments != 3 {
		t.Errorf("good channel: %+v", summary.Results[0])
	}
	if summary.Results[1].Success || summary.Results[1].Stage != StageResolve {
		t.Errorf("bad channel should fail at resolve: %+v", summary.Results[1])
	}

	// Failed channel wrote nothing.
	if names, _ := store.ListSegments(chBad.ID); len(names) != 0 {
		t.Errorf("failed channel must not write segments: %v", names)
	}
	if _, err := store.ReadChannelPlaylist(chBad.ID); err == nil {
		t.Error("failed channel must not emit a playlist")
	}

	master, err := store.ReadMasterPlaylist()
	if err != nil {
		t.Fatalf("master playlist missing: %v", err)
	}
	if !strings.Contains(string(master), "news-1") || strings.Contains(string(master), "sports-1") {
		t.Errorf("master playlist should list only successes: %s", master)
	}
}

func TestRunner_emits_channel_playlist(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	ch := Channel{ID: "news-1", Name: "News One", URL: "https://www.youtube.com/@news1"}
	wireChannel(resolver, fetch, ch, 2)

	runner := newTestRunner(resolver, fetch, store)
	runner.Run(context.Background(), []Channel{ch})

	playlist, err := store.ReadChannelPlaylist(ch.ID)
	if err != nil {
		t.Fatalf("channel playlist missing: %v", err)
	}
	body := string(playlist)
	if !strings.Contains(body, "https://host.example.com/mirror/news-1/seg_0000.ts") {
		t.Errorf("playlist URIs must point at the publishing location: %s", body)
	}
	if data, err := store.ReadSegment(ch.ID, "seg_0001.ts"); err != nil || string(data) != "news-1-1" {
		t.Errorf("segment payload: %q err=%v", data, err)
	}
}

func TestRunner_manifest_is_media_playlist_fallback(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	ch := Channel{ID: "direct-1", Name: "Direct", URL: "https://example.com/direct"}
	manifestURL := "https://cdn.example.com/direct/index.m3u8"
	segURL := "https://cdn.example.com/direct/seg0.ts"
	resolver.manifests[ch.URL] = manifestURL
	fetch.responses[manifestURL] = []byte("#EXTM3U\n#EXTINF:2.0,\nseg0.ts\n")
	fetch.responses[segURL] = []byte("direct-0")

	runner := newTestRunner(resolver, fetch, store)
	summary := runner.Run(context.Background(), []Channel{ch})

	if summary.Succeeded != 1 {
		t.Fatalf("expected success via media-playlist fallback: %+v", summary.Results[0])
	}

	// The already-fetched manifest body is reused, not refetched.
	manifestFetches := 0
	for _, u := range fetch.calls {
		if u == manifestURL {
			manifestFetches++
		}
	}
	if manifestFetches != 1 {
		t.Errorf("expected manifest fetched once, got %d", manifestFetches)
	}
}

func TestRunner_manifest_fetch_failure(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	ch := Channel{ID: "slow-1", URL: "https://example.com/slow"}
	manifestURL := "https://cdn.example.com/slow/manifest.m3u8"
	resolver.manifests[ch.URL] = manifestURL
	fetch.fail[manifestURL] = true

	runner := newTestRunner(resolver, fetch, store)
	summary := runner.Run(context.Background(), []Channel{ch})

	res := summary.Results[0]
	if res.Success || res.Stage != StageFetch {
		t.Errorf("expected fetch-stage failure, got %+v", res)
	}
	if names, _ := store.ListSegments(ch.ID); len(names) != 0 {
		t.Errorf("no files may be written for a failed channel: %v", names)
	}
}

func TestRunner_empty_media_playlist_fails_parse(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	ch := Channel{ID: "empty-1", URL: "https://example.com/empty"}
	manifestURL := "https://cdn.example.com/empty/index.m3u8"
	resolver.manifests[ch.URL] = manifestURL
	fetch.responses[manifestURL] = []byte("#EXTM3U\n#EXT-X-VERSION:3\n")

	runner := newTestRunner(resolver, fetch, store)
	summary := runner.Run(context.Background(), []Channel{ch})

	res := summary.Results[0]
	if res.Success || res.Stage != StageParse || !errors.Is(res.Err, ErrEmptyPlaylist) {
		t.Errorf("expected parse-stage ErrEmptyPlaylist, got %+v", res)
	}
}

func TestRunner_zero_successes_still_writes_master(t *testing.T) {
	resolver := &fakeResolver{manifests: map[string]string{}, errs: map[string]error{}}
	fetch := &fakeFetcher{responses: map[string][]byte{}, fail: map[string]bool{}}
	store := NewMemStore()

	chans := []Channel{
		{ID: "a", URL: "https://example.com/a"},
		{ID: "b", URL: "https://example.com/b"},
	}
	resolver.errs[chans[0].URL] = errors.New("down")
	resolver.errs[chans[1].URL] = errors.New("down")

	runner := newTestRunner(resolver, fetch, store)
	summary := runner.Run(context.Background(), chans)

	if summary.OK() {
		t.Error("run with zero successes must not be OK")
	}
	master, err := store.ReadMasterPlaylist()
	if err != nil {
		t.Fatalf("master playlist must still be written: %v", err)
	}
	if string(master) != "#EXTM3U\n" {
		t.Errorf("expected header-only master playlist, got %q", master)
	}
}
