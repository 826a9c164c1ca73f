package store

import (
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func TestRemoteRejected(t *testing.T) {
	rejected := []error{
		&pgconn.PgError{Code: "23505", Message: "duplicate key"},
		gorm.ErrRecordNotFound,
		gorm.ErrDuplicatedKey,
		gorm.ErrForeignKeyViolated,
		errors.Wrap(&pgconn.PgError{Code: "23503"}, "insert sale"),
	}
	for _, err := range rejected {
		if !RemoteRejected(err) {
			t.Errorf("expected %v to be classified as rejected", err)
		}
		if RemoteUnavailable(err) {
			t.Errorf("rejected error %v must not read as unavailable", err)
		}
	}
}

func TestRemoteUnavailable(t *testing.T) {
	unavailable := []error{
		io.EOF,
		errors.New("dial tcp 10.0.0.1:5432: connect: connection refused"),
	}
	for _, err := range unavailable {
		if !RemoteUnavailable(err) {
			t.Errorf("expected %v to be classified as unavailable", err)
		}
		if RemoteRejected(err) {
			t.Errorf("unavailable error %v must not read as rejected", err)
		}
	}
	if RemoteUnavailable(nil) {
		t.Error("nil error is not unavailable")
	}
}

func TestListCache(t *testing.T) {
	var c listCache[int]

	if _, ok := c.get(); ok {
		t.Fatal("empty cache must miss")
	}

	c.set([]int{1, 2, 3})
	got, ok := c.get()
	if !ok || len(got) != 3 {
		t.Fatalf("expected hit with 3 items, got %v %v", got, ok)
	}

	// returned slice is a copy
	got[0] = 99
	again, _ := c.get()
	if again[0] != 1 {
		t.Error("mutating a cache result must not affect the cache")
	}

	c.invalidate()
	if _, ok := c.get(); ok {
		t.Error("invalidated cache must miss")
	}
}

func TestListCacheEmptySliceIsValid(t *testing.T) {
	var c listCache[int]
	c.set([]int{})
	got, ok := c.get()
	if !ok || len(got) != 0 {
		t.Errorf("an empty cached list is still a hit, got %v %v", got, ok)
	}
}
