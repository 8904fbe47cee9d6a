package interfaces

import "io"

// CompressorInterface streams data through a codec. Rotation pipes the
// finished segment straight into its archive file, so implementations
// must not require the whole input in memory.
type CompressorInterface interface {
	// Compress copies src into dst compressed, returning the number of
	// raw bytes consumed.
	Compress(dst io.Writer, src io.Reader) (int64, error)
	// Decompress copies compressed src into dst expanded, returning
	// the number of raw bytes produced.
	Decompress(dst io.Writer, src io.Reader) (int64, error)
}

type SchedulerInterface interface {
	Init()
	Stop()
	Persist() error
}
