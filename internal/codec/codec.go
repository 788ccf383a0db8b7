// Package codec turns post identifiers into opaque, self-validating link tokens and back.
//
// The transform is obfuscation for shareable links, not encryption: the key is
// a non-secret configuration value.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/debemdeboas/notedesk/internal/model"
)

const (
	DefaultKey = "//TODO:_ChangeTh!s_B4_Deploy"
	DefaultTag = "my-note-app-post"
)

var (
	ErrEmptyKey = errors.New("codec key must not be empty")
	ErrEmptyTag = errors.New("codec tag must not be empty")
)

type Codec struct {
	key    []rune
	suffix string
}

// New returns a codec keyed with key whose tokens carry the domain tag.
func New(key, tag string) (*Codec, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if tag == "" {
		return nil, ErrEmptyTag
	}
	return &Codec{
		key:    []rune(key),
		suffix: ":" + tag,
	}, nil
}

// Encode returns the token for id.
func (c *Codec) Encode(id model.PostID) string {
	plain := []rune(string(id) + c.suffix)

	buf := make([]byte, 0, len(plain))
	var prev uint32
	for i, r := range plain {
		mixed := uint32(r) ^ c.keyAt(i) ^ prev
		prev = mixed
		buf = binary.AppendUvarint(buf, uint64(mixed))
	}

	return base64.StdEncoding.EncodeToString(buf)
}

// Decode recovers the identifier from token. It reports false for anything
// that is not a token produced by this codec.
func (c *Codec) Decode(token string) (model.PostID, bool) {
	raw, ok := decodeBase64(strings.TrimPrefix(token, "#"))
	if !ok {
		return "", false
	}

	scrambled, ok := readCodePoints(raw)
	if !ok {
		return "", false
	}

	var sb strings.Builder
	var prev uint32
	for i, code := range scrambled {
		orig := code ^ c.keyAt(i) ^ prev
		prev = code
		if orig > utf8.MaxRune || !utf8.ValidRune(rune(orig)) {
			return "", false
		}
		sb.WriteRune(rune(orig))
	}

	plain := sb.String()
	if !strings.HasSuffix(plain, c.suffix) {
		return "", false
	}
	return model.PostID(strings.TrimSuffix(plain, c.suffix)), true
}

func (c *Codec) keyAt(i int) uint32 {
	return uint32(c.key[i%len(c.key)])
}

func decodeBase64(token string) ([]byte, bool) {
	enc := base64.StdEncoding.Strict()
	if !strings.HasSuffix(token, "=") && len(token)%4 != 0 {
		enc = base64.RawStdEncoding.Strict()
	}
	raw, err := enc.DecodeString(token)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// readCodePoints parses the varint sequence written by Encode. Truncated,
// overflowing or non-minimal varints are rejected.
func readCodePoints(raw []byte) ([]uint32, bool) {
	codes := make([]uint32, 0, len(raw))
	var scratch [binary.MaxVarintLen64]byte
	for len(raw) > 0 {
		v, n := binary.Uvarint(raw)
		if n <= 0 || v > 0xFFFFFFFF {
			return nil, false
		}
		if binary.PutUvarint(scratch[:], v) != n {
			return nil, false
		}
		codes = append(codes, uint32(v))
		raw = raw[n:]
	}
	return codes, true
}
