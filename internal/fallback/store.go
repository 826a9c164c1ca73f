package fallback

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Store is the durable client-side mirror of the remote collections. Each
// collection is kept wholesale as one serialized blob, read and written as a
// unit. It serves degraded reads when the remote store is unreachable and
// buffers optimistic writes that could not be committed remotely.
//
// Divergence policy: remote wins. A successful remote fetch overwrites the
// mirror and clears the unsynced markers for that collection; local-only
// writes are surfaced through Unsynced until then.

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoMirror is returned when a collection has never been mirrored.
var ErrNoMirror = errors.New("no local mirror for collection")

var (
	bucketCollections = []byte("collections")
	bucketActivities  = []byte("site_activities")
	bucketUnsynced    = []byte("unsynced")
)

// ActivityLimit bounds the activity log; oldest entries are pruned first.
const ActivityLimit = 1000

type Activity struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open fallback store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketCollections, bucketActivities, bucketUnsynced} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init fallback buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Write persists the whole collection blob and appends an activity entry.
func (s *Store) Write(collection string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode mirror %q", collection)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketCollections).Put([]byte(collection), blob); err != nil {
			return err
		}
		return appendActivity(tx, fmt.Sprintf("Updated %s", collection))
	})
}

// Read decodes the last known good blob for collection into out.
func (s *Store) Read(collection string, out interface{}) error {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCollections).Get([]byte(collection))
		if v == nil {
			return ErrNoMirror
		}
		blob = append(blob, v...)
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(blob, out), "decode mirror %q", collection)
}

// ReadOr reports whether a mirror existed; out is left untouched when it did not.
func (s *Store) ReadOr(collection string, out interface{}) bool {
	return s.Read(collection, out) == nil
}

// MarkUnsynced records that the given row only exists (or was last changed)
// in the local mirror.
func (s *Store) MarkUnsynced(collection string, id int64) error {
	key := []byte(collection + "/" + strconv.FormatInt(id, 10))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnsynced).Put(key, []byte(time.Now().Format(time.RFC3339)))
	})
}

// ClearUnsynced drops every marker for the collection, called after a
// successful remote fetch replaces the mirror.
func (s *Store) ClearUnsynced(collection string) error {
	prefix := []byte(collection + "/")
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketUnsynced).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Unsynced lists row ids per collection that were never confirmed remotely.
func (s *Store) Unsynced() (map[string][]int64, error) {
	out := map[string][]int64{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnsynced).ForEach(func(k, _ []byte) error {
			collection, idstr, found := strings.Cut(string(k), "/")
			if !found {
				return nil
			}
			id, err := strconv.ParseInt(idstr, 10, 64)
			if err != nil {
				return nil
			}
			out[collection] = append(out[collection], id)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Activities returns the newest entries of the bounded activity log.
func (s *Store) Activities(limit int) ([]Activity, error) {
	if limit <= 0 || limit > ActivityLimit {
		limit = ActivityLimit
	}
	var acts []Activity
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.Last(); k != nil && len(acts) < limit; k, v = c.Prev() {
			var a Activity
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			acts = append(acts, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acts, nil
}

// ExportActivities returns the full retained log as a JSON document.
func (s *Store) ExportActivities() ([]byte, error) {
	acts, err := s.Activities(ActivityLimit)
	if err != nil {
		return nil, err
	}
	if acts == nil {
		acts = []Activity{}
	}
	return json.Marshal(acts)
}

func appendActivity(tx *bolt.Tx, action string) error {
	b := tx.Bucket(bucketActivities)
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	blob, err := json.Marshal(Activity{Timestamp: time.Now(), Action: action})
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	if err := b.Put(key, blob); err != nil {
		return err
	}
	// prune oldest beyond the retention bound; keys are big-endian sequence
	// numbers so lexicographic order matches insertion order
	if seq > ActivityLimit {
		cutoff := seq - ActivityLimit
		c := b.Cursor()
		for k, _ := c.First(); k != nil && binary.BigEndian.Uint64(k) <= cutoff; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}
