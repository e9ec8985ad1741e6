package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"cmdref/internal/domain"
)

var (
	bucketCommands     = []byte("commands")
	bucketTerms        = []byte("terms")
	bucketCategories   = []byte("categories")
	bucketComplexities = []byte("complexities")
	bucketMeta         = []byte("meta")
	keySnapshotMeta    = []byte("snapshot")

	dataBuckets = [][]byte{bucketCommands, bucketTerms, bucketCategories, bucketComplexities}
)

// BoltStore keeps the last imported snapshot so host programs can serve it
// without re-reading the source file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range append(dataBuckets, bucketMeta) {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// PutSnapshot replaces the stored snapshot in one transaction. progress,
// when set, is called once per stored command.
func (s *BoltStore) PutSnapshot(snap *domain.IndexSnapshot, meta domain.SnapshotMeta, progress func()) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	meta.Commands = len(snap.Commands)
	meta.Tokens = len(snap.InvertedIndex)
	meta.SchemaVersion = CurrentSchemaVersion

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := resetBuckets(tx); err != nil {
			return err
		}

		commands := tx.Bucket(bucketCommands)
		for id, rec := range snap.Commands {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := commands.Put([]byte(id), data); err != nil {
				return err
			}
			if progress != nil {
				progress()
			}
		}

		if err := putSets(tx.Bucket(bucketTerms), snap.InvertedIndex); err != nil {
			return err
		}
		if err := putSets(tx.Bucket(bucketCategories), snap.CategoryIndex); err != nil {
			return err
		}
		if err := putSets(tx.Bucket(bucketComplexities), snap.ComplexityIndex); err != nil {
			return err
		}

		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySnapshotMeta, data)
	})
}

// resetBuckets drops and recreates every data bucket.
func resetBuckets(tx *bbolt.Tx) error {
	for _, name := range dataBuckets {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		if _, err := tx.CreateBucket(name); err != nil {
			return err
		}
	}
	return nil
}

func putSets(b *bbolt.Bucket, sets map[string][]string) error {
	for key, ids := range sets {
		if key == "" {
			continue
		}
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(key), data); err != nil {
			return err
		}
	}
	return nil
}

func getSets(b *bbolt.Bucket) (map[string][]string, error) {
	sets := make(map[string][]string)
	err := b.ForEach(func(k, v []byte) error {
		var ids []string
		if err := json.Unmarshal(v, &ids); err != nil {
			return err
		}
		sets[string(k)] = ids
		return nil
	})
	return sets, err
}

// LoadSnapshot returns the stored snapshot, or domain.ErrNotFound when
// nothing has been imported yet.
func (s *BoltStore) LoadSnapshot() (*domain.IndexSnapshot, error) {
	var snap *domain.IndexSnapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMeta).Get(keySnapshotMeta) == nil {
			return fmt.Errorf("snapshot: %w", domain.ErrNotFound)
		}

		out := &domain.IndexSnapshot{Commands: make(map[string]domain.CommandRecord)}
		err := tx.Bucket(bucketCommands).ForEach(func(k, v []byte) error {
			var rec domain.CommandRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("command %s: %w", k, err)
			}
			out.Commands[string(k)] = rec
			return nil
		})
		if err != nil {
			return err
		}

		if out.InvertedIndex, err = getSets(tx.Bucket(bucketTerms)); err != nil {
			return err
		}
		if out.CategoryIndex, err = getSets(tx.Bucket(bucketCategories)); err != nil {
			return err
		}
		if out.ComplexityIndex, err = getSets(tx.Bucket(bucketComplexities)); err != nil {
			return err
		}
		snap = out
		return nil
	})
	return snap, err
}

func (s *BoltStore) GetCommand(id string) (domain.CommandRecord, error) {
	var rec domain.CommandRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCommands).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("command %q: %w", id, domain.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (s *BoltStore) GetMeta() (domain.SnapshotMeta, error) {
	var meta domain.SnapshotMeta
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySnapshotMeta)
		if data == nil {
			return fmt.Errorf("snapshot meta: %w", domain.ErrNotFound)
		}
		return json.Unmarshal(data, &meta)
	})
	return meta, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
