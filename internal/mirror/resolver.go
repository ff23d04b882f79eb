package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// ErrNoManifest is returned when the resolver produced no usable manifest URL
// for a channel.
var ErrNoManifest = errors.New("no usable manifest url")

// Resolver turns a channel's canonical URL into a live manifest URL.
// This is the external-collaborator boundary; the pipeline only depends on
// this interface.
type Resolver interface {
	Resolve(ctx context.Context, channelURL string) (string, error)
}

// ExecResolver resolves manifest URLs by shelling out to a yt-dlp compatible
// binary. Channel-style URLs are canonicalized with a /live suffix before
// resolution. An optional cookies file is passed through when present.
type ExecResolver struct {
	Bin     string
	Cookies string
	Timeout time.Duration
}

// NewExecResolver returns an ExecResolver using bin (default "yt-dlp") and an
// optional cookies file path.
func NewExecResolver(bin, cookies string, timeout time.Duration) *ExecResolver {
	if bin == "" {
		bin = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ExecResolver{Bin: bin, Cookies: cookies, Timeout: timeout}
}

// Resolve implements Resolver.
func (r *ExecResolver) Resolve(ctx context.Context, channelURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := []string{"--no-download", "--print", "%(manifest_url)s", "--force-ipv4"}
	if r.Cookies != "" {
		if _, err := os.Stat(r.Cookies); err == nil {
			args = append(args, "--cookies", r.Cookies)
		}
	}
	args = append(args, CanonicalLiveURL(channelURL))

	out, err := exec.CommandContext(ctx, r.Bin, args...).Output()
	if err != nil {
		return "", fmt.Errorf("resolver exec: %w", err)
	}

	manifest := strings.TrimSpace(string(out))
	if manifest == "" || manifest == "NA" || !strings.Contains(manifest, "manifest") {
		return "", ErrNoManifest
	}
	return manifest, nil
}

// CanonicalLiveURL appends a /live suffix to channel-style URLs (as opposed
// to direct video URLs) so the resolver targets the channel's live stream.
func CanonicalLiveURL(u string) string {
	if strings.Contains(u, "/channel/") || strings.Contains(u, "/c/") || strings.Contains(u, "/@") {
		if !strings.HasSuffix(u, "/live") {
			return strings.TrimRight(u, "/") + "/live"
		}
	}
	return u
}

var reManifestURL = regexp.MustCompile(`(?i)https?://[^\s"'\\]+\.m3u8[^\s"'\\]*`)

// ScanResolver decorates a primary Resolver with a last-resort fallback: when
// the primary fails, the channel page itself is fetched and scanned for an
// embedded m3u8 URL. The scan is heuristic and never overrides a successful
// primary resolution.
type ScanResolver struct {
	Primary Resolver
	Fetch   Fetcher
}

// Resolve implements Resolver.
func (r *ScanResolver) Resolve(ctx context.Context, channelURL string) (string, error) {
	manifest, err := r.Primary.Resolve(ctx, channelURL)
	if err == nil {
		return manifest, nil
	}

	body, fetchErr := r.Fetch.Fetch(ctx, channelURL)
	if fetchErr != nil {
		return "", err
	}

	text := normalizeEmbeddedText(string(body))
	if m := reManifestURL.FindString(text); m != "" {
		return m, nil
	}
	return "", err
}

// normalizeEmbeddedText undoes the JS/JSON escaping commonly seen around URLs
// embedded in page sources.
func normalizeEmbeddedText(s string) string {
	s = strings.ReplaceAll(s, `\/`, "/")
	s = strings.ReplaceAll(s, `\u0026`, "&")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
