package testsupport

import (
	"context"
	"testing"

	"fileset/internal/catalog"
	"fileset/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Record describes one catalog entry seeded by SeedCollection.
type Record struct {
	Set   string
	Name  string
	Data  []byte
	Found bool
}

// SeedCollection inserts a collection whose records fingerprint the given
// payloads. It returns the file ids in record order.
func SeedCollection(t testing.TB, store *catalog.Store, name, root string, records ...Record) []int64 {
	t.Helper()

	ids := make([]int64, 0, len(records))
	err := store.Load(context.Background(), func(w catalog.Writer) error {
		ctx := context.Background()
		collectionID, err := w.InsertCollection(ctx, catalog.Collection{Name: name, Root: root})
		if err != nil {
			return err
		}
		sets := map[string]int64{}
		for _, rec := range records {
			setID, ok := sets[rec.Set]
			if !ok {
				setID, err = w.InsertSet(ctx, catalog.Set{CollectionID: collectionID, Name: rec.Set})
				if err != nil {
					return err
				}
				sets[rec.Set] = setID
			}
			id, err := w.InsertFile(ctx, catalog.FileRecord{
				SetID: setID,
				Name:  rec.Name,
				Size:  int64(len(rec.Data)),
				CRC32: Checksum(rec.Data),
				Found: rec.Found,
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed collection %q: %v", name, err)
	}
	return ids
}

// MustGetFile fetches a record or fails the test.
func MustGetFile(t testing.TB, store *catalog.Store, id int64) *catalog.FileRecord {
	t.Helper()

	rec, err := store.GetFile(context.Background(), id)
	if err != nil {
		t.Fatalf("GetFile(%d): %v", id, err)
	}
	return rec
}
