package fallback

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/comptoirlabs/comptoir/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fallback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMirrorRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := []domain.Product{
		{ID: 1, Name: "Savon", Price: 500, Stock: 12},
		{ID: 2, Name: "Bougie", Price: 250, Stock: 3},
	}
	if err := s.Write("products", in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out []domain.Product
	if err := s.Read("products", &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 || out[0].Name != "Savon" || out[1].Stock != 3 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestReadMissingCollection(t *testing.T) {
	s := openTestStore(t)

	var out []domain.Product
	if err := s.Read("products", &out); err != ErrNoMirror {
		t.Fatalf("expected ErrNoMirror, got %v", err)
	}
	if s.ReadOr("products", &out) {
		t.Error("ReadOr must report false for a missing mirror")
	}
}

func TestWriteOverwritesWholesale(t *testing.T) {
	s := openTestStore(t)

	if err := s.Write("products", []domain.Product{{ID: 1}, {ID: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("products", []domain.Product{{ID: 3}}); err != nil {
		t.Fatal(err)
	}
	var out []domain.Product
	if err := s.Read("products", &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != 3 {
		t.Errorf("second write must replace the blob, got %+v", out)
	}
}

func TestUnsyncedMarkers(t *testing.T) {
	s := openTestStore(t)

	if err := s.MarkUnsynced("products", 10); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkUnsynced("products", 11); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkUnsynced("sales", 99); err != nil {
		t.Fatal(err)
	}

	pending, err := s.Unsynced()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending["products"]) != 2 || len(pending["sales"]) != 1 {
		t.Fatalf("unexpected markers: %+v", pending)
	}

	if err := s.ClearUnsynced("products"); err != nil {
		t.Fatal(err)
	}
	pending, err = s.Unsynced()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending["products"]) != 0 {
		t.Errorf("products markers must be cleared, got %+v", pending["products"])
	}
	if len(pending["sales"]) != 1 {
		t.Errorf("clearing one collection must not touch another, got %+v", pending)
	}
}

func TestActivityLogOrderAndRecording(t *testing.T) {
	s := openTestStore(t)

	if err := s.Write("products", []domain.Product{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("sales", []domain.Sale{}); err != nil {
		t.Fatal(err)
	}

	acts, err := s.Activities(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(acts))
	}
	// newest first
	if acts[0].Action != "Updated sales" || acts[1].Action != "Updated products" {
		t.Errorf("unexpected order: %+v", acts)
	}
}

func TestActivityLogBounded(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < ActivityLimit+50; i++ {
		if err := s.Write(fmt.Sprintf("c%d", i%7), []int{i}); err != nil {
			t.Fatal(err)
		}
	}
	acts, err := s.Activities(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != ActivityLimit {
		t.Fatalf("log must be capped at %d entries, got %d", ActivityLimit, len(acts))
	}
}

func TestExportActivities(t *testing.T) {
	s := openTestStore(t)
	if err := s.Write("products", []domain.Product{}); err != nil {
		t.Fatal(err)
	}
	data, err := s.ExportActivities()
	if err != nil {
		t.Fatal(err)
	}
	var acts []Activity
	if err := json.Unmarshal(data, &acts); err != nil {
		t.Fatalf("export must be valid json: %v", err)
	}
	if len(acts) != 1 {
		t.Errorf("expected 1 exported activity, got %d", len(acts))
	}
}
