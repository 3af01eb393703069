package tileindex

import (
	"context"
	"testing"

	"github.com/rok4/rok4go/internal/storage"
)

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend := storage.NewFileBackend(dir)
	ctx := context.Background()

	const tw, th = 4, 4
	idx := &Index{TilesPerWidth: tw, TilesPerHeight: th, Offsets: make([]uint32, tw*th), Lengths: make([]uint32, tw*th)}
	body := []byte("tile-body-bytes")
	bodyOffset := uint32(HeaderSize + tw*th*8)
	idx.Offsets[5] = bodyOffset
	idx.Lengths[5] = uint32(len(body))

	if err := Write(ctx, backend, "tile.dat", idx); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := backend.Write(ctx, "tile.dat", int64(bodyOffset), body); err != nil {
		t.Fatalf("writing body: %v", err)
	}

	got, err := Read(ctx, backend, "tile.dat", tw, th)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Offsets[5] != bodyOffset || got.Lengths[5] != uint32(len(body)) {
		t.Fatalf("index mismatch: got offset=%d length=%d", got.Offsets[5], got.Lengths[5])
	}

	row, col := 5/tw, 5%tw
	readBody, err := ReadTileBody(ctx, backend, "tile.dat", got, col, row)
	if err != nil {
		t.Fatalf("ReadTileBody: %v", err)
	}
	if string(readBody) != string(body) {
		t.Fatalf("body mismatch: got %q want %q", readBody, body)
	}
}

func TestValidateRejectsShortFile(t *testing.T) {
	if err := Validate(100, 16, 16); err == nil {
		t.Fatal("expected error for file shorter than header+index")
	}
	if err := Validate(int64(HeaderSize+16*16*8), 16, 16); err != nil {
		t.Fatalf("expected minimum-size file to validate, got %v", err)
	}
}
