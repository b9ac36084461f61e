// Package serialization provides the byte pipeline for persisted graph
// snapshots: a pluggable codec (JSON or MessagePack), optional compression
// (gzip or zstd), and optional AES-GCM encryption. Snapshot repositories
// treat the result as opaque bytes.
package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes and decodes snapshot payloads.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Compression selects the compression layer.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Pipeline applies codec, compression, and encryption in order on Marshal
// and in reverse on Unmarshal.
type Pipeline struct {
	codec       Codec
	compression Compression
	key         []byte // AES-256 key, 32 bytes, empty disables encryption
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCodec selects the payload codec.
func WithCodec(c Codec) Option { return func(p *Pipeline) { p.codec = c } }

// WithCompression selects the compression layer.
func WithCompression(c Compression) Option { return func(p *Pipeline) { p.compression = c } }

// WithEncryptionKey enables AES-GCM encryption with a 32-byte key.
func WithEncryptionKey(key []byte) Option { return func(p *Pipeline) { p.key = key } }

// New builds a pipeline; the zero configuration is msgpack with zstd.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{codec: MsgpackCodec{}, compression: CompressionZstd}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Marshal encodes, compresses, and encrypts a snapshot payload.
func (p *Pipeline) Marshal(v any) ([]byte, error) {
	data, err := p.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%s encoding failed: %w", p.codec.Name(), err)
	}
	if data, err = p.compress(data); err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	if len(p.key) > 0 {
		if data, err = p.encrypt(data); err != nil {
			return nil, fmt.Errorf("encryption failed: %w", err)
		}
	}
	return data, nil
}

// Unmarshal reverses Marshal.
func (p *Pipeline) Unmarshal(data []byte, v any) error {
	var err error
	if len(p.key) > 0 {
		if data, err = p.decrypt(data); err != nil {
			return fmt.Errorf("decryption failed: %w", err)
		}
	}
	if data, err = p.decompress(data); err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if err = p.codec.Decode(data, v); err != nil {
		return fmt.Errorf("%s decoding failed: %w", p.codec.Name(), err)
	}
	return nil
}

func (p *Pipeline) compress(data []byte) ([]byte, error) {
	switch p.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func (p *Pipeline) decompress(data []byte) ([]byte, error) {
	switch p.compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

func (p *Pipeline) encrypt(data []byte) ([]byte, error) {
	gcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func (p *Pipeline) decrypt(data []byte) ([]byte, error) {
	gcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (p *Pipeline) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// JSONCodec encodes snapshots as JSON, the interoperable choice.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSONCodec) Name() string { return "json" }

// MsgpackCodec encodes snapshots as MessagePack, the compact default.
type MsgpackCodec struct{}

func (MsgpackCodec) Encode(v any) ([]byte, error) { return msgpack.Marshal(v) }
func (MsgpackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (MsgpackCodec) Name() string { return "msgpack" }
