// Package compress pools zstd encoders and decoders for the token file
// loader, which accepts gzip-grade .txt.zst token maps without paying an
// allocation per call.
package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var decoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd decoder: %v", err))
		}

		return d
	},
}

var encoderPool = sync.Pool{
	New: func() any {
		e, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd encoder: %v", err))
		}

		return e
	},
}

// DecodeAll decompresses a complete zstd frame, such as a .txt.zst token file.
func DecodeAll(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	d, _ := decoderPool.Get().(*zstd.Decoder)
	defer decoderPool.Put(d)

	out, err := d.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}

// EncodeAll compresses data as a complete zstd frame. Used by the test suite
// to produce .txt.zst fixtures without shelling out to the zstd binary.
func EncodeAll(data []byte) []byte {
	e, _ := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(e)

	return e.EncodeAll(data, nil)
}
