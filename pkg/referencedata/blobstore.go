package referencedata

import (
	"context"
	"os"
)

// FileBlobStore reads file content from local disk via plain os.ReadFile
// rather than any object-storage SDK.
type FileBlobStore struct{}

// NewFileBlobStore builds a BlobStore backed by the local filesystem.
func NewFileBlobStore() FileBlobStore {
	return FileBlobStore{}
}

// Read implements BlobStore.
func (FileBlobStore) Read(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
