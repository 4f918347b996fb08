package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreRoundtrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "co_1.pdf", strings.NewReader("%PDF-1.4 data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/") || !strings.HasSuffix(ref, "co_1.pdf") {
		t.Errorf("ref = %q", ref)
	}

	rc, err := store.Open(context.Background(), ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 data" {
		t.Errorf("content = %q", data)
	}
}

func TestLocalStoreStripsPathComponents(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(ref, "..") {
		t.Errorf("ref must not carry path components: %q", ref)
	}

	if _, err := store.Open(context.Background(), "/uploads/../outside"); err == nil {
		t.Log("open resolved, base name applies")
	}
}
