// Package reader implements a streaming reader over the binary save token
// protocol: a sequence of 16-bit little-endian token IDs, some of which
// carry an inline payload of known width, the rest of which are resolved
// identifiers looked up by the caller.
package reader

import (
	"encoding/binary"
	"io"

	"github.com/rakaly/hoi4save/errs"
	"github.com/rakaly/hoi4save/flavor"
)

// Kind discriminates the classified token variants the melter consumes.
type Kind uint8

const (
	KindOpen Kind = iota
	KindClose
	KindEqual
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindF32
	KindF64
	KindQuoted
	KindUnquoted
	KindRGB
	KindID
	// KindScaledI64 is the wide-save-format payload of 0x000D: an 8-byte
	// signed integer that the melter must divide by 100000 before emitting,
	// distinct from KindI64's ordinary 0x0317 payload.
	KindScaledI64
)

// Fixed-ID primitive token IDs, per the binary save format.
const (
	idEqual        uint16 = 0x0001
	idOpen         uint16 = 0x0003
	idClose        uint16 = 0x0004
	idI32          uint16 = 0x000C
	idF32OrWideI64 uint16 = 0x000D
	idBool         uint16 = 0x000E
	idQuoted       uint16 = 0x000F
	idU32          uint16 = 0x0014
	idUnquoted     uint16 = 0x0017
	idF64          uint16 = 0x0167
	idU64          uint16 = 0x029C
	idI64          uint16 = 0x0317
	idRGB          uint16 = 0x0243

	// IDNull and IDPad are the two padding identifiers newer saves emit.
	// They are ordinary KindID tokens as far as the reader is concerned;
	// the melter is the one that knows to skip them.
	IDNull uint16 = 0x0000
	IDPad  uint16 = 0xFFFF
)

// RGB holds the three channel values carried by a KindRGB token.
type RGB struct {
	R, G, B uint32
}

// Token is a single classified unit of the binary stream.
type Token struct {
	Kind    Kind
	Bool    bool
	I32     int32
	I64     int64
	U32     uint32
	U64     uint64
	F32     float64
	F64     float64
	Bytes   []byte // owned copy, valid for Quoted and Unquoted
	RGB     RGB
	ID      uint16 // valid for KindID
}

// Reader pulls classified tokens one at a time from an io.Reader. It never
// materializes the whole binary body, so SkipContainer must stay expressible
// without random access — it counts matched braces instead.
type Reader struct {
	r            io.Reader
	scratch      [8]byte
	wideF32Field bool // true once a save_version >= 30 has been observed
}

// New wraps r in a streaming token Reader.
func New(r io.Reader) *Reader {
	return &Reader{r: r}
}

// SetWideField tells the reader whether 0x000D now carries an 8-byte scaled
// integer (new_save_format) instead of a 4-byte f32 flavor payload. The
// melter calls this the moment it observes save_version >= 30.
func (r *Reader) SetWideField(wide bool) {
	r.wideF32Field = wide
}

// Next reads the next token, returning (nil, nil) at a clean end of stream.
func (r *Reader) Next() (*Token, error) {
	id, err := r.readU16()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}

		return nil, err
	}

	return r.classify(id)
}

// ReadRequired reads the next token, treating end of stream as an error.
// Used by skip logic that already expects more tokens to follow.
func (r *Reader) ReadRequired() (Token, error) {
	tok, err := r.Next()
	if err != nil {
		return Token{}, err
	}
	if tok == nil {
		return Token{}, errs.ErrEOF
	}

	return *tok, nil
}

// SkipContainer consumes tokens up through the Close that balances an Open
// already consumed by the caller, without building any intermediate tape.
func (r *Reader) SkipContainer() error {
	depth := 1
	for depth > 0 {
		tok, err := r.ReadRequired()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case KindOpen:
			depth++
		case KindClose:
			depth--
		}
	}

	return nil
}

func (r *Reader) classify(id uint16) (*Token, error) {
	switch id {
	case idEqual:
		return &Token{Kind: KindEqual}, nil
	case idOpen:
		return &Token{Kind: KindOpen}, nil
	case idClose:
		return &Token{Kind: KindClose}, nil
	case idI32:
		v, err := r.readI32()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindI32, I32: v}, nil
	case idF32OrWideI64:
		if r.wideF32Field {
			v, err := r.readI64()
			if err != nil {
				return nil, err
			}

			return &Token{Kind: KindScaledI64, I64: v}, nil
		}
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindF32, F32: flavor.DecodeF32(b)}, nil
	case idBool:
		b, err := r.readN(1)
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindBool, Bool: b[0] != 0}, nil
	case idQuoted:
		s, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindQuoted, Bytes: s}, nil
	case idU32:
		v, err := r.readU32()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindU32, U32: v}, nil
	case idUnquoted:
		s, err := r.readLengthPrefixed()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindUnquoted, Bytes: s}, nil
	case idF64:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindF64, F64: flavor.DecodeF64(b)}, nil
	case idU64:
		v, err := r.readU64()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindU64, U64: v}, nil
	case idI64:
		v, err := r.readI64()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindI64, I64: v}, nil
	case idRGB:
		rgb, err := r.readRGB()
		if err != nil {
			return nil, err
		}

		return &Token{Kind: KindRGB, RGB: rgb}, nil
	default:
		return &Token{Kind: KindID, ID: id}, nil
	}
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := r.scratch[:n]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errs.ErrEOF
		}

		return nil, &errs.IOError{Err: err}
	}

	return buf, nil
}

func (r *Reader) readU16() (uint16, error) {
	buf := r.scratch[:2]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) readI32() (int32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) readU32() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) readI64() (int64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}

	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (r *Reader) readU64() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) readRGB() (RGB, error) {
	red, err := r.readU32()
	if err != nil {
		return RGB{}, err
	}
	green, err := r.readU32()
	if err != nil {
		return RGB{}, err
	}
	blue, err := r.readU32()
	if err != nil {
		return RGB{}, err
	}

	return RGB{R: red, G: green, B: blue}, nil
}

func (r *Reader) readLengthPrefixed() ([]byte, error) {
	n, err := r.readU16Payload()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r.r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errs.ErrEOF
			}

			return nil, &errs.IOError{Err: err}
		}
	}

	return buf, nil
}

// readU16Payload reads a 2-byte little-endian length prefix, distinct from
// readU16 (token IDs) only in its EOF handling: a truncated length prefix
// mid-payload is a stream error, not a clean end of stream.
func (r *Reader) readU16Payload() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}
