package common

import (
	"strings"
	"testing"
	"time"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		if id <= 0 {
			t.Fatalf("id must be positive, got %d", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestNextNumber(t *testing.T) {
	inv := NextNumber("inv")
	if !strings.HasPrefix(inv, "INV-") {
		t.Errorf("prefix must be uppercased, got %q", inv)
	}
	dev := NextNumber("DEV")
	if !strings.HasPrefix(dev, "DEV-") {
		t.Errorf("expected DEV prefix, got %q", dev)
	}
	if inv == dev {
		t.Error("numbers must be unique across prefixes")
	}
}

func TestIfEmptyStr(t *testing.T) {
	if got := IfEmptyStr("", "fallback"); got != "fallback" {
		t.Errorf("empty: got %q", got)
	}
	if got := IfEmptyStr("   ", "fallback"); got != "fallback" {
		t.Errorf("blank: got %q", got)
	}
	if got := IfEmptyStr("value", "fallback"); got != "value" {
		t.Errorf("non-empty: got %q", got)
	}
}

func TestFmtDate(t *testing.T) {
	ts := time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC)
	if got := FmtDate(ts); got != "2025-03-09" {
		t.Errorf("got %q", got)
	}
}
