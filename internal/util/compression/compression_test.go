package compression

import (
	"bytes"
	"testing"
)

func TestForEncoding(t *testing.T) {
	testCases := []struct {
		name        string
		encoding    string
		expectNil   bool
		expectError bool
	}{
		{"Empty", "", true, false},
		{"Identity", "identity", true, false},
		{"Zstd", "zstd", false, false},
		{"Gzip", "gzip", false, false},
		{"Gzip mixed case", " GZip ", false, false},
		{"Legacy gzip", "x-gzip", false, false},
		{"Brotli", "br", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ForEncoding(tc.encoding)
			if tc.expectError != (err != nil) {
				t.Fatalf("Expected error=%v, got %v", tc.expectError, err)
			}
			if tc.expectNil != (c == nil) {
				t.Errorf("Expected nil=%v, got %T", tc.expectNil, c)
			}
		})
	}
}

func TestCompressors(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"posts":[{"id":"a","title":"foo","body":"x"}]}`), 50)

	for _, c := range []Compressor{ZstdCompressor{}, GzipCompressor{}} {
		t.Run("Round trip", func(t *testing.T) {
			compressed, err := c.Compress(payload)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if len(compressed) >= len(payload) {
				t.Errorf("Expected compressed output to be smaller, got %d >= %d", len(compressed), len(payload))
			}

			got, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Error("Decompressed payload does not match")
			}
		})

		t.Run("Garbage input", func(t *testing.T) {
			if _, err := c.Decompress([]byte("definitely not compressed")); err == nil {
				t.Error("Expected error decompressing garbage")
			}
		})
	}
}
