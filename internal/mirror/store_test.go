package mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirStore_segment_lifecycle(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	if names, err := store.ListSegments("ch1"); err != nil || len(names) != 0 {
		t.Errorf("empty channel: names=%v err=%v", names, err)
	}

	// Written out of order; listing must come back sorted.
	_ = store.WriteSegment("ch1", "seg_0002.ts", []byte("c"))
	_ = store.WriteSegment("ch1", "seg_0000.ts", []byte("a"))
	_ = store.WriteSegment("ch1", "seg_0001.ts", []byte("b"))

	names, err := store.ListSegments("ch1")
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(names) != 3 || names[0] != "seg_0000.ts" || names[2] != "seg_0002.ts" {
		t.Errorf("expected sorted segment names, got %v", names)
	}

	data, err := store.ReadSegment("ch1", "seg_0001.ts")
	if err != nil || string(data) != "b" {
		t.Errorf("ReadSegment: %q err=%v", data, err)
	}

	if err := store.RemoveSegment("ch1", "seg_0000.ts"); err != nil {
		t.Fatalf("RemoveSegment: %v", err)
	}
	names, _ = store.ListSegments("ch1")
	if len(names) != 2 {
		t.Errorf("expected 2 segments after removal, got %v", names)
	}
}

func TestDirStore_write_is_upsert(t *testing.T) {
	store, _ := NewDirStore(t.TempDir())

	if err := store.WriteSegment("ch1", "seg_0000.ts", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteSegment("ch1", "seg_0000.ts", []byte("new")); err != nil {
		t.Fatalf("overwrite must not error: %v", err)
	}
	data, _ := store.ReadSegment("ch1", "seg_0000.ts")
	if string(data) != "new" {
		t.Errorf("expected overwritten payload, got %q", data)
	}
}

func TestDirStore_playlist_files(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDirStore(dir)

	if err := store.WriteChannelPlaylist("ch1", []byte("#EXTM3U\n")); err != nil {
		t.Fatalf("WriteChannelPlaylist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ch1", ChannelPlaylistName)); err != nil {
		t.Errorf("channel playlist file not on disk: %v", err)
	}
	if data, err := store.ReadChannelPlaylist("ch1"); err != nil || string(data) != "#EXTM3U\n" {
		t.Errorf("ReadChannelPlaylist: %q err=%v", data, err)
	}

	if err := store.WriteMasterPlaylist([]byte("#EXTM3U\n")); err != nil {
		t.Fatalf("WriteMasterPlaylist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, MasterPlaylistName)); err != nil {
		t.Errorf("master playlist file not on disk: %v", err)
	}
}

func TestDirStore_list_ignores_non_segment_files(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewDirStore(dir)

	_ = store.WriteSegment("ch1", "seg_0000.ts", []byte("a"))
	_ = store.WriteChannelPlaylist("ch1", []byte("#EXTM3U\n"))

	names, err := store.ListSegments("ch1")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "seg_0000.ts" {
		t.Errorf("playlist file must not be listed as a segment: %v", names)
	}
}

func TestMemStore_matches_interface_behavior(t *testing.T) {
	store := NewMemStore()

	if _, err := store.ReadMasterPlaylist(); !os.IsNotExist(err) {
		t.Errorf("expected not-exist before write, got %v", err)
	}
	if _, err := store.ReadChannelPlaylist("ch1"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist before write, got %v", err)
	}

	_ = store.WriteSegment("ch1", "seg_0001.ts", []byte("b"))
	_ = store.WriteSegment("ch1", "seg_0000.ts", []byte("a"))
	names, _ := store.ListSegments("ch1")
	if len(names) != 2 || names[0] != "seg_0000.ts" {
		t.Errorf("expected sorted names, got %v", names)
	}

	if err := store.RemoveSegment("ch1", "seg_9999.ts"); !os.IsNotExist(err) {
		t.Errorf("removing a missing segment: got %v", err)
	}
}
