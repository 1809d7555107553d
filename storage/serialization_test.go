package storage

import (
	"errors"
	"testing"

	"github.com/poiesic/gallerit/core"
)

func TestBlobInfoSerialization(t *testing.T) {
	info := &core.BlobInfo{
		MIMEType:  "image/png",
		Size:      1024,
		Digest:    core.DigestFromContent([]byte("pixels")),
		CreatedAt: 1700000000000000,
	}

	data := MarshalBlobInfo(info)
	got, err := UnmarshalBlobInfo(data)
	if err != nil {
		t.Fatalf("UnmarshalBlobInfo() error = %v", err)
	}
	if *got != *info {
		t.Errorf("UnmarshalBlobInfo() = %+v, want %+v", got, info)
	}
}

func TestUnmarshalBlobInfo_Truncated(t *testing.T) {
	data := MarshalBlobInfo(&core.BlobInfo{MIMEType: "image/jpeg", Size: 10})
	_, err := UnmarshalBlobInfo(data[:2])
	if !errors.Is(err, ErrSerializationFailed) {
		t.Errorf("UnmarshalBlobInfo() error = %v, want %v", err, ErrSerializationFailed)
	}
}
