package journal

import (
	"io"
	"pulsed/internal/journal/interfaces"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompression is stateless: each call wraps the destination or
// source in its own zstd stream, so a rotation of any segment size
// runs in constant memory.
type ZstdCompression struct{}

func NewZstdCompressor() interfaces.CompressorInterface {
	return &ZstdCompression{}
}

func (z *ZstdCompression) Compress(dst io.Writer, src io.Reader) (int64, error) {
	enc, err := zstd.NewWriter(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(enc, src)
	if err != nil {
		enc.Close()
		return n, err
	}
	return n, enc.Close()
}

func (z *ZstdCompression) Decompress(dst io.Writer, src io.Reader) (int64, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return 0, err
	}
	defer dec.Close()
	return io.Copy(dst, dec)
}
