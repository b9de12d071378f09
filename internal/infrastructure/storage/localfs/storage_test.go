package localfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestStorageSaveOpenDelete(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "exports/7/Detail.xlsx", strings.NewReader("first")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "exports/7/Detail.xlsx", strings.NewReader("second")); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	rc, err := store.Open(ctx, "exports/7/Detail.xlsx")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "second" {
		t.Fatalf("unexpected body: %q", body)
	}

	if err := store.Delete(ctx, "exports/7/Detail.xlsx"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "exports/7/Detail.xlsx"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	_, err = store.Open(ctx, "exports/7/Detail.xlsx")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist after delete, got %v", err)
	}
}

func TestStorageRejectsEscapingKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"", "../outside", "/etc/passwd", "a/../../b"} {
		if err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
