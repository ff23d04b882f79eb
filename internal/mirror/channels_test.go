package mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadChannels_missing_file_uses_defaults(t *testing.T) {
	channels, err := LoadChannels(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != len(DefaultChannels) {
		t.Errorf("expected default channel set, got %d channels", len(channels))
	}
}

func TestLoadChannels_valid_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	body := `[
  {"id": "news-1", "name": "News One", "url": "https://www.youtube.com/@news1", "logo": "https://img.example.com/n1.png", "group": "News"},
  {"id": "music-1", "name": "Music One", "url": "https://www.youtube.com/@music1"}
]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	channels, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].ID != "news-1" || channels[0].Group != "News" {
		t.Errorf("first channel: %+v", channels[0])
	}
	if channels[1].Logo != "" {
		t.Errorf("optional fields should stay empty: %+v", channels[1])
	}
}

func TestLoadChannels_malformed_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChannels(path); err == nil {
		t.Error("expected error for malformed channels file")
	}
}
