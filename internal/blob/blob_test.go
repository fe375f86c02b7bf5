package blob

import (
	"os"
	"strings"
	"testing"
)

func TestPutIsContentAddressedAndIdempotent(t *testing.T) {
	dir := t.TempDir()
	data := []byte("clip of steady eighth notes")

	digest1, path1, err := Put(dir, data, ".wav")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(digest1) != 64 {
		t.Fatalf("unexpected digest length: %d", len(digest1))
	}
	if !strings.HasSuffix(path1, digest1+".wav") {
		t.Fatalf("path not content-addressed: %s", path1)
	}

	digest2, path2, err := Put(dir, data, "wav")
	if err != nil {
		t.Fatalf("Put (repeat): %v", err)
	}
	if digest1 != digest2 || path1 != path2 {
		t.Fatal("identical bytes produced different locations")
	}

	stored, err := os.ReadFile(path1)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(stored) != string(data) {
		t.Fatal("stored bytes differ from input")
	}
}

func TestPutDefaultsExtension(t *testing.T) {
	dir := t.TempDir()
	_, path, err := Put(dir, []byte{0x01}, "")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(path, ".bin") {
		t.Fatalf("expected .bin fallback, got %s", path)
	}
}
