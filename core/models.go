package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Digest is a content hash of a pixel blob.
// It is generated using BLAKE2b so that identical uploads share a digest.
type Digest uint64

// DigestFromContent generates a deterministic Digest from raw bytes using BLAKE2b hashing.
func DigestFromContent(data []byte) Digest {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return Digest(binary.LittleEndian.Uint64(sum))
}

// NewKey returns a fresh process-unique record key.
// Keys are assigned at capture time and never change afterwards.
func NewKey() string {
	return uuid.NewString()
}

// CapturedImage is a freshly uploaded image that has not been enriched yet.
// It is produced by the capture collaborator and consumed by the ingestion pipeline.
type CapturedImage struct {
	URL   string // Opaque reference to displayable pixel data
	Title string // Display title, defaults to the uploaded file name
	Key   string // Stable identity assigned at capture time
}

// ImageRecord is an enriched, searchable image in the gallery.
type ImageRecord struct {
	URL             string
	Key             string
	Title           string
	Classifications []string  // Label tokens in classifier confidence order (populated by the pipeline)
	EnrichedAt      time.Time // When enrichment completed
}

// NewImageRecord creates an unenriched record from a captured image.
// Classifications always start empty.
func NewImageRecord(img CapturedImage) ImageRecord {
	return ImageRecord{
		URL:             img.URL,
		Key:             img.Key,
		Title:           img.Title,
		Classifications: []string{},
	}
}

// Clone returns a deep copy of the record.
func (r ImageRecord) Clone() ImageRecord {
	c := r
	if r.Classifications != nil {
		c.Classifications = make([]string, len(r.Classifications))
		copy(c.Classifications, r.Classifications)
	}
	return c
}

// FieldConfig selects which record fields participate in fuzzy search.
// A config with no field enabled matches nothing for a non-empty query.
type FieldConfig struct {
	Title           bool
	Classifications bool
}

// DefaultFieldConfig enables both title and classification search.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{Title: true, Classifications: true}
}

// Any reports whether at least one field is enabled.
func (c FieldConfig) Any() bool {
	return c.Title || c.Classifications
}

// BlobInfo describes pixel bytes held by the blob store.
type BlobInfo struct {
	MIMEType  string
	Size      int64
	Digest    Digest
	CreatedAt int64 // Unix microseconds
}

// Created returns CreatedAt as a time.Time.
func (b *BlobInfo) Created() time.Time {
	return time.UnixMicro(b.CreatedAt).UTC()
}
