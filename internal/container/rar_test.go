package container

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/nwaples/rardecode/v2"
)

func TestRarEntryBuffersOnceAndExpires(t *testing.T) {
	payload := []byte("sequential member payload")
	entry := &rarEntry{
		archive: "/tmp/set.rar",
		header:  &rardecode.FileHeader{Name: "dir/game.bin", UnPackedSize: int64(len(payload))},
		source:  bytes.NewReader(payload),
		current: true,
	}

	if entry.Path() != "/tmp/set.rar/dir/game.bin" {
		t.Fatalf("unexpected path %q", entry.Path())
	}
	if _, ok := entry.CRC32(); ok {
		t.Fatal("rar entries carry no precomputed crc")
	}
	if entry.Mode().Perm() == 0 {
		t.Fatal("expected a default permission for members without mode bits")
	}

	for i := 0; i < 2; i++ {
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || !bytes.Equal(data, payload) {
			t.Fatalf("open #%d returned %q err=%v", i, data, err)
		}
	}

	entry.release()
	if _, err := entry.Open(); !errors.Is(err, ErrEntryExpired) {
		t.Fatalf("expected ErrEntryExpired after release, got %v", err)
	}
}

func TestKindLabels(t *testing.T) {
	cases := map[Kind]string{
		KindFile:     "File",
		KindZip:      "ZFile",
		KindRar:      "RFile",
		KindSevenZip: "7File",
	}
	for kind, want := range cases {
		if got := kind.Label(); got != want {
			t.Fatalf("%s label = %q, want %q", kind, got, want)
		}
	}
}
