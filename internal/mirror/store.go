package mirror

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// SegmentFilePattern names stored segments: seg_<zero-padded index>.ts.
	SegmentFilePattern = "seg_%04d.ts"

	// ChannelPlaylistName is the per-channel local playlist filename.
	ChannelPlaylistName = "playlist.m3u8"

	// MasterPlaylistName is the aggregate playlist filename at the store root.
	MasterPlaylistName = "playlist.m3u8"

	segmentPrefix = "seg_"
	segmentSuffix = ".ts"
)

// SegmentStore is the persistence abstraction for mirrored artifacts.
// All writes are upserts: writing an existing name overwrites it. Each cycle
// renumbers segments from zero, so name collisions with a prior cycle are
// expected and must not fail.
type SegmentStore interface {
	// WriteSegment persists a segment payload under the channel namespace.
	WriteSegment(id ChannelID, filename string, data []byte) error

	// ListSegments returns the channel's stored segment filenames in
	// lexicographic order (numeric order, given the fixed-width names).
	// A channel with no stored segments yields an empty list, not an error.
	ListSegments(id ChannelID) ([]string, error)

	// RemoveSegment deletes one stored segment.
	RemoveSegment(id ChannelID, filename string) error

	// ReadSegment returns a stored segment payload.
	ReadSegment(id ChannelID, filename string) ([]byte, error)

	// WriteChannelPlaylist persists the channel's local media playlist.
	WriteChannelPlaylist(id ChannelID, data []byte) error

	// ReadChannelPlaylist returns the channel's local media playlist.
	ReadChannelPlaylist(id ChannelID) ([]byte, error)

	// WriteMasterPlaylist persists the aggregate master playlist.
	WriteMasterPlaylist(data []byte) error

	// ReadMasterPlaylist returns the aggregate master playlist.
	ReadMasterPlaylist() ([]byte, error)
}

// DirStore is the on-disk SegmentStore. Layout:
//
//	<root>/playlist.m3u8
//	<root>/<channel-id>/seg_0000.ts
//	<root>/<channel-id>/playlist.m3u8
type DirStore struct {
	root string
}

// NewDirStore returns a DirStore rooted at dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &DirStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *DirStore) Root() string { return s.root }

// WriteSegment implements SegmentStore.WriteSegment.
func (s *DirStore) WriteSegment(id ChannelID, filename string, data []byte) error {
	dir := filepath.Join(s.root, string(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create channel dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, filename), data, 0o644)
}

// ListSegments implements SegmentStore.ListSegments.
func (s *DirStore) ListSegments(id ChannelID) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// RemoveSegment implements SegmentStore.RemoveSegment.
func (s *DirStore) RemoveSegment(id ChannelID, filename string) error {
	return os.Remove(filepath.Join(s.root, string(id), filename))
}

// ReadSegment implements SegmentStore.ReadSegment.
func (s *DirStore) ReadSegment(id ChannelID, filename string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, string(id), filename))
}

// WriteChannelPlaylist implements SegmentStore.WriteChannelPlaylist.
func (s *DirStore) WriteChannelPlaylist(id ChannelID, data []byte) error {
	dir := filepath.Join(s.root, string(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create channel dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ChannelPlaylistName), data, 0o644)
}

// ReadChannelPlaylist implements SegmentStore.ReadChannelPlaylist.
func (s *DirStore) ReadChannelPlaylist(id ChannelID) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, string(id), ChannelPlaylistName))
}

// WriteMasterPlaylist implements SegmentStore.WriteMasterPlaylist.
func (s *DirStore) WriteMasterPlaylist(data []byte) error {
	return os.WriteFile(filepath.Join(s.root, MasterPlaylistName), data, 0o644)
}

// ReadMasterPlaylist implements SegmentStore.ReadMasterPlaylist.
func (s *DirStore) ReadMasterPlaylist() ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, MasterPlaylistName))
}

// MemStore is an in-memory SegmentStore for tests.
type MemStore struct {
	mu        sync.RWMutex
	segments  map[ChannelID]map[string][]byte
	playlists map[ChannelID][]byte
	master    []byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		segments:  make(map[ChannelID]map[string][]byte),
		playlists: make(map[ChannelID][]byte),
	}
}

// WriteSegment implements SegmentStore.WriteSegment.
func (s *MemStore) WriteSegment(id ChannelID, filename string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.segments[id] == nil {
		s.segments[id] = make(map[string][]byte)
	}
	s.segments[id][filename] = append([]byte(nil), data...)
	return nil
}

// ListSegments implements SegmentStore.ListSegments.
func (s *MemStore) ListSegments(id ChannelID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.segments[id]))
	for name := range s.segments[id] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RemoveSegment implements SegmentStore.RemoveSegment.
func (s *MemStore) RemoveSegment(id ChannelID, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.segments[id][filename]; !ok {
		return os.ErrNotExist
	}
	delete(s.segments[id], filename)
	return nil
}

// ReadSegment implements SegmentStore.ReadSegment.
func (s *MemStore) ReadSegment(id ChannelID, filename string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.segments[id][filename]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// WriteChannelPlaylist implements SegmentStore.WriteChannelPlaylist.
func (s *MemStore) WriteChannelPlaylist(id ChannelID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[id] = append([]byte(nil), data...)
	return nil
}

// ReadChannelPlaylist implements SegmentStore.ReadChannelPlaylist.
func (s *MemStore) ReadChannelPlaylist(id ChannelID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.playlists[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// WriteMasterPlaylist implements SegmentStore.WriteMasterPlaylist.
func (s *MemStore) WriteMasterPlaylist(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = append([]byte(nil), data...)
	return nil
}

// ReadMasterPlaylist implements SegmentStore.ReadMasterPlaylist.
func (s *MemStore) ReadMasterPlaylist() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.master == nil {
		return nil, os.ErrNotExist
	}
	return s.master, nil
}
