// Package storage is the document store collaborator for CO PDFs.
// Save returns an opaque retrievable reference that the ledger keeps
// in the entry's coPdfUrl field.
package storage

import (
	"context"
	"io"
	"os"
)

type Store interface {
	// Save writes the document and returns its reference.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Open reads a previously saved document by its reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// FromEnv picks the store implementation the same way uploads are
// routed in production: GCS when configured, local disk otherwise.
func FromEnv() (Store, error) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != "" // Cloud Run indicator

	if useGCS {
		return NewGCSStore(context.Background(), os.Getenv("GCS_BUCKET"))
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	return NewLocalStore(dir)
}
