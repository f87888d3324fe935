package scan_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fileset/internal/catalog"
	"fileset/internal/config"
	"fileset/internal/container"
	"fileset/internal/logging"
	"fileset/internal/relocate"
	"fileset/internal/scan"
	"fileset/internal/testsupport"
)

func newWalker(t *testing.T, mode scan.Mode, store *catalog.Store, observer scan.Observer) *scan.Walker {
	t.Helper()
	opts := scan.Options{
		Mode:     mode,
		Opener:   container.NewOpener(config.ArchiveFormats, logging.NewNop()),
		Observer: observer,
		Logger:   logging.NewNop(),
	}
	if store != nil {
		opts.Index = store
		opts.Relocator = relocate.New(store, logging.NewNop())
	}
	w, err := scan.NewWalker(opts)
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}
	return w
}

func TestModeString(t *testing.T) {
	if got := (scan.ModeHunt | scan.ModeZip | scan.ModeDelete).String(); got != "hunt|zip|delete" {
		t.Fatalf("String = %q", got)
	}
	if got := scan.Mode(0).String(); got != "none" {
		t.Fatalf("String = %q", got)
	}
	if !(scan.ModeSearch | scan.ModeVerbose).Has(scan.ModeVerbose) || scan.ModeSearch.Has(scan.ModeSearch|scan.ModeVerbose) {
		t.Fatal("Has misreports flags")
	}
	if scan.ModeSearch != 1 || scan.ModeVerify != 2 || scan.ModeHunt != 4 || scan.ModeCount != 8 ||
		scan.ModeVerbose != 16 || scan.ModeZip != 32 || scan.ModeDelete != 64 || scan.ModeOnlyDelete != 128 {
		t.Fatal("mode bit values changed")
	}
}

func TestCountIgnoresVerbose(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.rom"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "b.rom"), 20)
	testsupport.WriteFile(t, filepath.Join(dir, "sub", "c.rom"), 30)
	testsupport.WriteZip(t, filepath.Join(dir, "pack.zip"),
		testsupport.ZipMember{Name: "inner/"},
		testsupport.ZipMember{Name: "inner/d.rom", Data: []byte("d")},
		testsupport.ZipMember{Name: "e.rom", Data: []byte("e")},
	)

	for _, mode := range []scan.Mode{scan.ModeCount, scan.ModeCount | scan.ModeVerbose} {
		var seen []scan.Visit
		w := newWalker(t, mode, nil, scan.ObserverFunc(func(v scan.Visit, _ int) { seen = append(seen, v) }))
		res, err := w.Walk(context.Background(), dir)
		if err != nil {
			t.Fatalf("Walk(%s): %v", mode, err)
		}
		if res.Visited != 5 || len(seen) != 5 {
			t.Fatalf("mode %s visited %d (observed %d), want 5", mode, res.Visited, len(seen))
		}
		for _, v := range seen {
			if v.Status != scan.StatusCounted {
				t.Fatalf("count mode should not match, got %v for %s", v.Status, v.Path)
			}
		}
	}
}

func TestSearchMarksMatchesFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ids := testsupport.SeedCollection(t, store, "SetA", "/roms",
		testsupport.Record{Set: "Game1", Name: "loose.rom", Data: []byte("loose content")},
		testsupport.Record{Set: "Game1", Name: "packed.rom", Data: []byte("packed content")},
		testsupport.Record{Set: "Game2", Name: "missing.rom", Data: []byte("never present")},
	)

	dir := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(dir, "renamed.bin"), []byte("loose content"))
	testsupport.WriteContent(t, filepath.Join(dir, "junk.txt"), []byte("not in catalog"))
	testsupport.WriteZip(t, filepath.Join(dir, "bundle.zip"), testsupport.ZipMember{Name: "x.rom", Data: []byte("packed content")})

	statuses := map[string]scan.Status{}
	w := newWalker(t, scan.ModeSearch|scan.ModeVerbose, store, scan.ObserverFunc(func(v scan.Visit, _ int) {
		statuses[v.Path] = v.Status
	}))
	res, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Visited != 3 || res.Matched != 2 || res.Unknown != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if statuses[filepath.Join(dir, "bundle.zip")+"/x.rom"] != scan.StatusFound {
		t.Fatalf("expected archive member found, got %v", statuses)
	}
	if statuses[filepath.Join(dir, "junk.txt")] != scan.StatusUnknown {
		t.Fatalf("expected junk unknown, got %v", statuses)
	}

	for i, want := range []bool{true, true, false} {
		if rec := testsupport.MustGetFile(t, store, ids[i]); rec.Found != want {
			t.Fatalf("record %s found=%v, want %v", rec.Name, rec.Found, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "renamed.bin")); err != nil {
		t.Fatalf("search must not move files: %v", err)
	}
}

func TestHuntRelocates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := filepath.Join(testsupport.BaseDir(cfg), "roms")
	data := []byte("foo rom bytes")
	ids := testsupport.SeedCollection(t, store, "SetA", root,
		testsupport.Record{Set: "Game1", Name: "foo.rom", Data: data},
	)

	incoming := t.TempDir()
	src := filepath.Join(incoming, "foo.rom")
	testsupport.WriteContent(t, src, data)

	w := newWalker(t, scan.ModeHunt|scan.ModeDelete, store, nil)
	res, err := w.Walk(context.Background(), incoming)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Relocated != 1 || res.Matched != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(filepath.Join(root, "SetA", "Game1", "foo.rom")); err != nil {
		t.Fatalf("expected relocated file: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err=%v", err)
	}
	if rec := testsupport.MustGetFile(t, store, ids[0]); !rec.Found {
		t.Fatal("expected record found")
	}

	// A second copy of the same content is now a duplicate.
	testsupport.WriteContent(t, src, data)
	res, err = w.Walk(context.Background(), incoming)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Deleted != 1 || res.Relocated != 0 {
		t.Fatalf("expected duplicate deleted, got %+v", res)
	}
}

func TestHuntSkipsAmbiguous(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	root := filepath.Join(testsupport.BaseDir(cfg), "roms")
	data := []byte("shared")
	testsupport.SeedCollection(t, store, "SetA", root,
		testsupport.Record{Set: "One", Name: "a.rom", Data: data},
		testsupport.Record{Set: "Two", Name: "b.rom", Data: data},
	)

	incoming := t.TempDir()
	src := filepath.Join(incoming, "shared.rom")
	testsupport.WriteContent(t, src, data)

	var got scan.Visit
	w := newWalker(t, scan.ModeHunt|scan.ModeDelete, store, scan.ObserverFunc(func(v scan.Visit, _ int) { got = v }))
	res, err := w.Walk(context.Background(), incoming)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Ambiguous != 1 || res.Relocated != 0 || got.Status != scan.StatusAmbiguous || got.Err == nil {
		t.Fatalf("unexpected result %+v visit %+v", res, got)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("ambiguous source must stay: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("nothing should be placed, stat err=%v", err)
	}
}

func TestSymlinkCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a", "one.rom"), 4)
	if err := os.Symlink("..", filepath.Join(dir, "a", "up")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "a"), filepath.Join(dir, "again")); err != nil {
		t.Fatal(err)
	}

	w := newWalker(t, scan.ModeCount, nil, nil)
	res, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Visited != 1 {
		t.Fatalf("visited %d, want 1", res.Visited)
	}
}

func TestSymlinkToFileIsFollowed(t *testing.T) {
	outside := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(outside, "real.rom"), 8)
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "real.rom"), filepath.Join(dir, "link.rom")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "gone.rom"), filepath.Join(dir, "dangling.rom")); err != nil {
		t.Fatal(err)
	}

	w := newWalker(t, scan.ModeCount, nil, nil)
	res, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if res.Visited != 1 {
		t.Fatalf("visited %d, want 1", res.Visited)
	}
}

func TestWalkStopsWhenCanceled(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 1)
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := newWalker(t, scan.ModeCount, nil, scan.ObserverFunc(func(scan.Visit, int) { cancel() }))
	res, err := w.Walk(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if res.Visited != 1 {
		t.Fatalf("visited %d after cancel, want 1", res.Visited)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	w := newWalker(t, scan.ModeCount, nil, nil)
	if _, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestNewWalkerRequiresDependencies(t *testing.T) {
	opener := container.NewOpener(nil, logging.NewNop())
	if _, err := scan.NewWalker(scan.Options{Mode: scan.ModeSearch, Opener: opener}); err == nil {
		t.Fatal("expected error without index")
	}
	if _, err := scan.NewWalker(scan.Options{Mode: scan.ModeCount}); err == nil {
		t.Fatal("expected error without opener")
	}
}

func TestFingerprintStreamsWithoutPrecomputedCRC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.rom")
	data := []byte("fingerprint me")
	testsupport.WriteContent(t, path, data)
	e, err := container.OpenRegularFile(path)
	if err != nil {
		t.Fatal(err)
	}
	fp, err := scan.Fingerprint(e)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp.Size != int64(len(data)) || fp.CRC32 != testsupport.Checksum(data) {
		t.Fatalf("unexpected fingerprint %+v", fp)
	}
}

func TestSearchMatchesInsideSevenZipAndRar(t *testing.T) {
	alpha := []byte("alpha member payload\n")
	bravo := []byte("bravo member payload, stored without a digest\n")

	for _, fixture := range []string{"set.7z", "set.rar"} {
		t.Run(fixture, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			store := testsupport.MustOpenStore(t, cfg)
			ids := testsupport.SeedCollection(t, store, "SetA", "/roms",
				testsupport.Record{Set: "Game1", Name: "a.rom", Data: alpha},
				testsupport.Record{Set: "Game1", Name: "b.rom", Data: bravo},
			)

			data, err := os.ReadFile(filepath.Join("..", "container", "testdata", fixture))
			if err != nil {
				t.Fatalf("read fixture: %v", err)
			}
			dir := t.TempDir()
			archive := filepath.Join(dir, fixture)
			testsupport.WriteContent(t, archive, data)

			statuses := map[string]scan.Status{}
			w := newWalker(t, scan.ModeSearch, store, scan.ObserverFunc(func(v scan.Visit, _ int) {
				statuses[v.Path] = v.Status
			}))
			res, err := w.Walk(context.Background(), dir)
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}
			if res.Visited != 2 || res.Matched != 2 || res.Unknown != 0 || res.Unreadable != 0 {
				t.Fatalf("unexpected result %+v", res)
			}
			for _, member := range []string{"game/a.bin", "game/b.bin"} {
				if statuses[archive+"/"+member] != scan.StatusFound {
					t.Fatalf("expected %s found, got %v", member, statuses)
				}
			}
			for _, id := range ids {
				if rec := testsupport.MustGetFile(t, store, id); !rec.Found {
					t.Fatalf("record %s should be marked found", rec.Name)
				}
			}
		})
	}
}
