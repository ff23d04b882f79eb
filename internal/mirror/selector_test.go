package mirror

import "testing"

func TestSelectVariant_highest_bandwidth(t *testing.T) {
	variants := []Variant{
		{Bandwidth: 500000, URL: "low.m3u8"},
		{Bandwidth: 1200000, URL: "high.m3u8"},
		{Bandwidth: 800000, URL: "mid.m3u8"},
	}
	best, ok := SelectVariant(variants)
	if !ok {
		t.Fatal("expected ok")
	}
	if best.URL != "high.m3u8" || best.Bandwidth != 1200000 {
		t.Errorf("expected high.m3u8, got %+v", best)
	}
}

func TestSelectVariant_tie_prefers_first(t *testing.T) {
	variants := []Variant{
		{Bandwidth: 900000, URL: "first.m3u8"},
		{Bandwidth: 900000, URL: "second.m3u8"},
	}
	best, ok := SelectVariant(variants)
	if !ok || best.URL != "first.m3u8" {
		t.Errorf("tie should resolve to first-encountered, got %+v", best)
	}
}

func TestSelectVariant_empty(t *testing.T) {
	if _, ok := SelectVariant(nil); ok {
		t.Error("expected ok false for empty variant list")
	}
}
