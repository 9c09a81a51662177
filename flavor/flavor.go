// Package flavor implements the two fixed-point float encodings used by the
// binary save format. These are the only legal interpretations of the
// format's float tokens; nothing here is a general-purpose float codec.
package flavor

import (
	"encoding/binary"
	"math"
)

// DecodeF32 reads 4 little-endian bytes as a signed 32-bit integer and
// divides by 1000.0. data must be at least 4 bytes.
func DecodeF32(data []byte) float64 {
	v := int32(binary.LittleEndian.Uint32(data))

	return float64(v) / 1000.0
}

// DecodeF64 reads 8 little-endian bytes as a signed 64-bit integer, divides
// by 32768.0, then floors to 5 decimal places. data must be at least 8
// bytes.
//
// The floor (rather than round) matches the source encoder; changing this
// without a regression corpus can silently diverge melted output from a
// freshly-saved text file.
func DecodeF64(data []byte) float64 {
	v := int64(binary.LittleEndian.Uint64(data))
	scaled := float64(v) / 32768.0

	return floorTo5(scaled)
}

func floorTo5(v float64) float64 {
	const scale = 100000.0

	return math.Floor(v*scale) / scale
}
