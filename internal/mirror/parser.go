package mirror

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultSegmentDuration is assumed when a media playlist omits EXTINF for a
// segment or carries an unparsable duration.
const DefaultSegmentDuration = 2.0

var reBandwidth = regexp.MustCompile(`BANDWIDTH=(\d+)`)

// ParseMasterPlaylist extracts the variant entries of a master playlist.
// Parsing is best-effort: a STREAM-INF line with a missing or unparsable
// BANDWIDTH attribute yields bandwidth 0, and a STREAM-INF line not followed
// by a URL line is dropped silently. Relative variant URLs are resolved
// against the directory of baseURL. No network I/O.
func ParseMasterPlaylist(text, baseURL string) []Variant {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var variants []Variant
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#EXT-X-STREAM-INF") {
			continue
		}

		bandwidth := 0
		if m := reBandwidth.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				bandwidth = n
			}
		}

		if i+1 >= len(lines) {
			continue
		}
		uri := strings.TrimSpace(lines[i+1])
		if uri == "" || strings.HasPrefix(uri, "#") {
			continue
		}

		variants = append(variants, Variant{
			Bandwidth: bandwidth,
			URL:       ResolveURL(baseURL, uri),
		})
	}

	return variants
}

// ParseMediaPlaylist extracts the segment descriptors of a media playlist.
// An EXTINF line sets the pending duration for the next URI; a missing or
// unparsable duration falls back to DefaultSegmentDuration. Other tags and
// blank lines are skipped. An input with no segment URIs yields an empty
// result, not an error. No network I/O.
func ParseMediaPlaylist(text, baseURL string) []SegmentRef {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var refs []SegmentRef
	duration := 0.0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "#EXTINF:"):
			duration = parseExtinfDuration(line)
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		default:
			d := duration
			if d <= 0 {
				d = DefaultSegmentDuration
			}
			refs = append(refs, SegmentRef{
				Duration: d,
				URL:      ResolveURL(baseURL, line),
			})
			duration = 0.0
		}
	}

	return refs
}

// parseExtinfDuration returns the duration of an "#EXTINF:<dur>,..." line,
// or 0 when the value is absent or unparsable.
func parseExtinfDuration(line string) float64 {
	rest := strings.TrimPrefix(line, "#EXTINF:")
	if i := strings.IndexAny(rest, ","); i >= 0 {
		rest = rest[:i]
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// ResolveURL makes ref absolute by resolving it against the directory of
// base: the last path segment of base is stripped and ref appended. A ref
// that already carries a scheme is returned unchanged.
func ResolveURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	dir := base
	if i := strings.LastIndex(dir, "/"); i > len("https:/") {
		dir = dir[:i]
	}
	return dir + "/" + strings.TrimPrefix(ref, "/")
}
