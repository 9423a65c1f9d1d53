// internal/storage/archive/s3_test.go
package archive

import (
	"strings"
	"testing"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Config_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "symbols/AAPL/forecast.json", "symbols/AAPL/forecast.json"},
		{"data", "markets/overview.json", "data/markets/overview.json"},
		{"data/", "markets/overview.json", "data/markets/overview.json"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.TrimSuffix(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("symbols/index.json"); got != "application/json" {
		t.Errorf("got %q", got)
	}
	if got := contentType("raw.bin"); got != "application/octet-stream" {
		t.Errorf("got %q", got)
	}
}

func TestNewS3(t *testing.T) {
	s, err := NewS3(S3Config{Bucket: "tickervista", Region: "us-east-1", Endpoint: "http://localhost:9000", Prefix: "data/"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.prefix != "data" || s.bucket != "tickervista" {
		t.Errorf("unexpected storage: %+v", s)
	}
}
