// Package compression decodes the content encodings the API client negotiates.
package compression

import (
	"fmt"
	"strings"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// AcceptEncoding lists the encodings ForEncoding understands, in preference order.
const AcceptEncoding = "zstd, gzip"

// ForEncoding returns the compressor for a Content-Encoding value. An empty
// value or "identity" returns nil with no error.
func ForEncoding(name string) (Compressor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity":
		return nil, nil
	case "zstd":
		return ZstdCompressor{}, nil
	case "gzip", "x-gzip":
		return GzipCompressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", name)
	}
}
