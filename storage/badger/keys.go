package badger

import (
	"strings"

	"github.com/google/uuid"

	"github.com/poiesic/gallerit/storage"
)

// Key prefixes for different data types
const (
	blobMetaPrefix = "blobmeta"
	blobDataPrefix = "blobdata"
)

// URLScheme prefixes every URL minted by the blob repository.
const URLScheme = "blob:gallerit/"

// newBlobID mints a fresh blob identifier and its URL.
func newBlobID() (uuid.UUID, string) {
	id := uuid.New()
	return id, URLScheme + id.String()
}

// parseBlobURL extracts the blob identifier from a minted URL.
func parseBlobURL(url string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(url, URLScheme)
	if !ok {
		return uuid.Nil, storage.ErrInvalidURL
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, storage.ErrInvalidURL
	}
	return id, nil
}

// makeBlobMetaKey generates the key holding a blob's metadata.
// Format: prefix:uuid (16 raw bytes)
func makeBlobMetaKey(id uuid.UUID) []byte {
	return makeBlobKey(blobMetaPrefix, id)
}

// makeBlobDataKey generates the key holding a blob's bytes.
func makeBlobDataKey(id uuid.UUID) []byte {
	return makeBlobKey(blobDataPrefix, id)
}

func makeBlobKey(prefix string, id uuid.UUID) []byte {
	buf := make([]byte, 0, len(prefix)+1+len(id))
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	return append(buf, id[:]...)
}
