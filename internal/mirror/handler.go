package mirror

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	playlistContentType = "application/vnd.apple.mpegurl"
	segmentContentType  = "video/mp2t"
)

// Handler serves the mirrored artifacts over HTTP: the master playlist, each
// channel's local playlist, and the stored segments. It reads straight from
// the SegmentStore, so responses always reflect the latest completed cycle.
type Handler struct {
	store SegmentStore
	log   *slog.Logger
}

// NewHandler returns a Handler backed by store.
func NewHandler(store SegmentStore, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Routes mounts the artifact endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/playlist.m3u8", h.GetMasterPlaylist)
	r.Route("/channels/{channel_id}", func(r chi.Router) {
		r.Get("/playlist.m3u8", h.GetChannelPlaylist)
		r.Get("/{file}", h.GetSegment)
	})
}

// GetMasterPlaylist handles GET /playlist.m3u8.
func (h *Handler) GetMasterPlaylist(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ReadMasterPlaylist()
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetChannelPlaylist handles GET /channels/{channel_id}/playlist.m3u8.
func (h *Handler) GetChannelPlaylist(w http.ResponseWriter, r *http.Request) {
	id := ChannelID(chi.URLParam(r, "channel_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	data, err := h.store.ReadChannelPlaylist(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetSegment handles GET /channels/{channel_id}/{file}. Only stored segment
// names are served; anything else is rejected before touching the store.
func (h *Handler) GetSegment(w http.ResponseWriter, r *http.Request) {
	id := ChannelID(chi.URLParam(r, "channel_id"))
	file := chi.URLParam(r, "file")

	if id == "" || !strings.HasPrefix(file, segmentPrefix) || !strings.HasSuffix(file, segmentSuffix) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	data, err := h.store.ReadSegment(id, file)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", segmentContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
