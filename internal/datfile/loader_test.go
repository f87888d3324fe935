package datfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileset/internal/catalog"
	"fileset/internal/container"
	"fileset/internal/datfile"
	"fileset/internal/faults"
	"fileset/internal/logging"
	"fileset/internal/testsupport"
)

func load(t *testing.T, store *catalog.Store, loader *datfile.Loader, req datfile.Request) (datfile.Result, error) {
	t.Helper()
	var result datfile.Result
	err := store.Load(context.Background(), func(w catalog.Writer) error {
		var err error
		result, err = loader.Load(context.Background(), w, req)
		return err
	})
	return result, err
}

func TestLoadDelimited(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	dir := testsupport.BaseDir(cfg)

	path := filepath.Join(dir, "SetA.csv")
	content := strings.Join([]string{
		`foo\,bar.rom,00000010,DEADBEEF,Game1`,
		`second.rom,400,0000ABCD,Game1,verified`,
		``,
		`broken line`,
		`root.rom,1,00000001,\`,
		`other.rom,2,00000002,Game2`,
	}, "\n") + "\n"
	testsupport.WriteContent(t, path, []byte(content))

	result, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: path, Dialect: datfile.DialectDelimited, Root: "/roms"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Files != 4 || result.Sets != 3 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Collections) != 1 || result.Collections[0] != "SetA" {
		t.Fatalf("unexpected collections %v", result.Collections)
	}

	ctx := context.Background()
	match, err := store.LookupByFingerprint(ctx, catalog.Fingerprint{Size: 16, CRC32: 0xdeadbeef})
	if err != nil || match.Outcome != catalog.OutcomeOne {
		t.Fatalf("expected escaped-comma record, got %+v %v", match, err)
	}
	p, err := store.Placement(ctx, match.ID)
	if err != nil {
		t.Fatalf("placement: %v", err)
	}
	if p.File != "foo,bar.rom" || p.Set != "Game1" || p.Collection != "SetA" || p.Root != "/roms" {
		t.Fatalf("unexpected placement %+v", p)
	}

	match, _ = store.LookupByFingerprint(ctx, catalog.Fingerprint{Size: 1024, CRC32: 0xabcd})
	if rec := testsupport.MustGetFile(t, store, match.ID); rec.Comment != "verified" {
		t.Fatalf("expected comment from fifth field, got %+v", rec)
	}

	match, _ = store.LookupByFingerprint(ctx, catalog.Fingerprint{Size: 1, CRC32: 1})
	p, err = store.Placement(ctx, match.ID)
	if err != nil || p.Set != "/" {
		t.Fatalf("expected backslash set normalized to /, got %+v %v", p, err)
	}

	summaries, err := store.Summarize(ctx)
	if err != nil || len(summaries) != 1 || summaries[0].Sets != 3 || summaries[0].Files != 4 {
		t.Fatalf("unexpected summary %+v %v", summaries, err)
	}
}

const sampleBlockDat = `clrmamepro (
	name "Nintendo - Game Boy"
	description "Nintendo - Game Boy (20240101)"
	version 20240101
	comment "no-intro"
)

game (
	name "Tetris (World)"
	description "Tetris (World)"
	rom ( name "Tetris (World).gb" size 32768 crc 46DF91AD md5 982ED5D2B12A0377EB14BCDC4123744E sha1 74591CC9501AF93873F9A5D3EB12DA12C0723BBC )
)

game (
	name "Dr. Mario (World)"
	rom ( name "Dr. Mario (World).gb" size 32768 crc 0x12345678 description "rev 1" )
	rom ( name "bad.gb" size abc crc 00000000 )
)
`

func TestLoadBlock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(testsupport.BaseDir(cfg), "gb.dat")
	testsupport.WriteContent(t, path, []byte(sampleBlockDat))

	result, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: path, Dialect: datfile.DialectBlock, Root: "/roms"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Files != 2 || result.Sets != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	ctx := context.Background()
	collections, err := store.ListCollections(ctx)
	if err != nil || len(collections) != 1 {
		t.Fatalf("expected one collection, got %+v %v", collections, err)
	}
	c := collections[0]
	if c.Name != "Nintendo - Game Boy" || c.Version != "20240101" || c.Comment != "no-intro" || c.Root != "/roms" {
		t.Fatalf("unexpected collection %+v", c)
	}

	match, err := store.LookupByFingerprint(ctx, catalog.Fingerprint{Size: 32768, CRC32: 0x46df91ad})
	if err != nil || match.Outcome != catalog.OutcomeOne {
		t.Fatalf("lookup: %+v %v", match, err)
	}
	rec := testsupport.MustGetFile(t, store, match.ID)
	if rec.SHA1 != "74591cc9501af93873f9a5d3eb12da12c0723bbc" || rec.MD5 == "" {
		t.Fatalf("expected hashes captured, got %+v", rec)
	}
	p, err := store.Placement(ctx, match.ID)
	if err != nil || p.Set != "Tetris (World)" || p.File != "Tetris (World).gb" {
		t.Fatalf("unexpected placement %+v %v", p, err)
	}

	match, _ = store.LookupByFingerprint(ctx, catalog.Fingerprint{Size: 32768, CRC32: 0x12345678})
	if rec := testsupport.MustGetFile(t, store, match.ID); rec.Comment != "rev 1" {
		t.Fatalf("expected rom description as comment, got %+v", rec)
	}
}

func TestLoadBlockImplicitCollection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(testsupport.BaseDir(cfg), "Headerless Set.dat")
	testsupport.WriteContent(t, path, []byte("game (\n\tname \"g\"\n\trom ( name \"g.bin\" size 1 crc 01 )\n)\n"))

	result, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: path, Dialect: datfile.DialectBlock, Root: "/r"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(result.Collections) != 1 || result.Collections[0] != "Headerless Set" {
		t.Fatalf("expected implicit collection named after file, got %v", result.Collections)
	}
}

func TestLoadBlockUnterminatedRollsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(testsupport.BaseDir(cfg), "broken.dat")
	truncated := sampleBlockDat[:strings.LastIndex(sampleBlockDat, ")")]
	testsupport.WriteContent(t, path, []byte(truncated))

	_, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: path, Dialect: datfile.DialectBlock, Root: "/roms"})
	if err == nil {
		t.Fatal("expected structural error")
	}
	if !errors.Is(err, faults.ErrStructural) || !faults.IsFatal(err) {
		t.Fatalf("expected fatal structural error, got %v", err)
	}

	collections, err := store.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(collections) != 0 {
		t.Fatalf("expected nothing persisted, got %+v", collections)
	}
}

func TestLoadBlockMalformedRomIsStructural(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(testsupport.BaseDir(cfg), "bad.dat")
	testsupport.WriteContent(t, path, []byte("game (\n\tname \"g\"\n\trom ( name \"g.bin\" size 1 crc 01\n)\n"))

	_, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: path, Dialect: datfile.DialectBlock, Root: "/r"})
	if !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error for rom without ')', got %v", err)
	}
}

func TestLoadMissingFileIsStructural(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_, err := load(t, store, datfile.NewLoader(logging.NewNop(), "utf-8"), datfile.Request{Path: filepath.Join(t.TempDir(), "nope.csv"), Dialect: datfile.DialectDelimited, Root: "/r"})
	if !faults.IsFatal(err) {
		t.Fatalf("expected fatal error for unreadable input, got %v", err)
	}
}

func TestLoadLatin1(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(testsupport.BaseDir(cfg), "latin.csv")
	// "Pokémon.gb" with é encoded as 0xE9.
	testsupport.WriteContent(t, path, []byte("Pok\xe9mon.gb,1,00000005,Pok\xe9mon\n"))

	if _, err := load(t, store, datfile.NewLoader(logging.NewNop(), "latin1"), datfile.Request{Path: path, Dialect: datfile.DialectDelimited, Root: "/r"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	match, err := store.LookupByFingerprint(context.Background(), catalog.Fingerprint{Size: 1, CRC32: 5})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	p, err := store.Placement(context.Background(), match.ID)
	if err != nil || p.File != "Pokémon.gb" || p.Set != "Pokémon" {
		t.Fatalf("expected latin1 decoded names, got %+v %v", p, err)
	}
}

func TestExtractMembers(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "dats.zip")
	testsupport.WriteZip(t, archive,
		testsupport.ZipMember{Name: "a/SetA.csv", Data: []byte("x,1,1,S\n")},
		testsupport.ZipMember{Name: "b/SetA.csv", Data: []byte("y,1,2,S\n")},
		testsupport.ZipMember{Name: "SetB.dat", Data: []byte("game (\n)\n")},
	)
	c, err := container.OpenZip(archive)
	if err != nil {
		t.Fatalf("OpenZip: %v", err)
	}
	defer c.Close()

	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	paths, err := datfile.ExtractMembers(context.Background(), c, out)
	if err != nil {
		t.Fatalf("ExtractMembers: %v", err)
	}
	want := []string{filepath.Join(out, "SetA.csv"), filepath.Join(out, "SetA-1.csv"), filepath.Join(out, "SetB.dat")}
	if len(paths) != len(want) {
		t.Fatalf("unexpected paths %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}
	data, err := os.ReadFile(paths[1])
	if err != nil || string(data) != "y,1,2,S\n" {
		t.Fatalf("unexpected extracted content %q %v", data, err)
	}
}
