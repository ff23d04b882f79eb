package mirror

import (
	"fmt"
	"strings"
)

// PlaylistTargetDuration is the fixed EXT-X-TARGETDURATION hint emitted in
// local playlists: a conservative upper bound, not computed from actual
// segment durations.
const PlaylistTargetDuration = 10

// BuildLocalPlaylist renders the local media playlist for one channel from
// the segments retained this cycle, in fetch order. URIs are rewritten
// against publishBase (the externally reachable location of the channel
// namespace). The media sequence always starts at 0 because filenames are
// renumbered from zero each cycle. EXT-X-ENDLIST is deliberately omitted so
// players treat the playlist as live and keep refreshing it.
func BuildLocalPlaylist(segments []StoredSegment, publishBase string) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString(fmt.Sprintf("#EXT-X-TARGETDURATION:%d\n", PlaylistTargetDuration))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n\n")

	for _, seg := range segments {
		b.WriteString(fmt.Sprintf("#EXTINF:%.3f,\n", seg.Duration))
		b.WriteString(strings.TrimRight(publishBase, "/"))
		b.WriteString("/")
		b.WriteString(seg.Filename)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildMasterPlaylist renders the aggregate M3U of all channels that
// succeeded this run: one EXTINF line with display metadata followed by the
// channel's local playlist URL under publishBase. Channels without a
// successful cycle are omitted entirely. With zero successes the result is
// just the header.
func BuildMasterPlaylist(results []ChannelResult, publishBase string) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")

	base := strings.TrimRight(publishBase, "/")
	for _, res := range results {
		if !res.Success {
			continue
		}
		ch := res.Channel
		b.WriteString(fmt.Sprintf("#EXTINF:-1 group-title=%q tvg-logo=%q tvg-id=%q, %s\n",
			ch.Group, ch.Logo, string(ch.ID), ch.Name))
		b.WriteString(fmt.Sprintf("%s/%s/%s\n", base, ch.ID, ChannelPlaylistName))
	}

	return b.String()
}
