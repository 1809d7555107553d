package core

import (
	"errors"
	"testing"
)

func TestValidateImageRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *ImageRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &ImageRecord{
				URL:   "blob:abc",
				Key:   "k1",
				Title: "sunset.png",
			},
			wantErr: nil,
		},
		{
			name: "valid record with empty title",
			record: &ImageRecord{
				URL: "blob:abc",
				Key: "k1",
			},
			wantErr: nil,
		},
		{
			name: "valid record with classifications",
			record: &ImageRecord{
				URL:             "blob:abc",
				Key:             "k1",
				Classifications: []string{"sky", "cloud"},
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidImageRecord,
		},
		{
			name: "empty key",
			record: &ImageRecord{
				URL: "blob:abc",
			},
			wantErr: ErrEmptyKey,
		},
		{
			name: "empty url",
			record: &ImageRecord{
				Key: "k1",
			},
			wantErr: ErrEmptyURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageRecord(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateImageRecord() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateImageRecord() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateImageRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCapturedImage(t *testing.T) {
	if err := ValidateCapturedImage(&CapturedImage{URL: "blob:1", Key: "k1"}); err != nil {
		t.Errorf("ValidateCapturedImage() error = %v, want nil", err)
	}

	err := ValidateCapturedImage(nil)
	if !errors.Is(err, ErrInvalidImageRecord) {
		t.Errorf("ValidateCapturedImage(nil) error = %v, want %v", err, ErrInvalidImageRecord)
	}

	err = ValidateCapturedImage(&CapturedImage{URL: "blob:1"})
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("ValidateCapturedImage() error = %v, want %v", err, ErrEmptyKey)
	}
}
