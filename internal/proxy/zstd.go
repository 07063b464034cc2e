package proxy

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdFrameWriter passes the first skip writes through unchanged and then
// compresses every later write into its own zstd frame. The handshake
// packets stay readable while the rest of the stream is compressed.
type ZstdFrameWriter struct {
	mu   sync.Mutex
	w    io.Writer
	enc  *zstd.Encoder
	skip int
}

func NewZstdFrameWriter(w io.Writer, skipPackets int) (*ZstdFrameWriter, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}

	return &ZstdFrameWriter{
		w:    w,
		enc:  enc,
		skip: skipPackets,
	}, nil
}

func (z *ZstdFrameWriter) Write(p []byte) (int, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.enc == nil {
		return 0, io.ErrClosedPipe
	}

	if z.skip > 0 {
		z.skip--
		return z.w.Write(p)
	}

	_, err := z.w.Write(z.enc.EncodeAll(p, nil))
	if err != nil {
		return 0, err
	}
	// Report the uncompressed length so callers see a complete write
	return len(p), nil
}

// Close releases the encoder. The underlying writer is left open.
func (z *ZstdFrameWriter) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.enc == nil {
		return nil
	}
	err := z.enc.Close()
	z.enc = nil
	return err
}
