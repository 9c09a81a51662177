package reader_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rakaly/hoi4save/internal/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder struct {
	buf bytes.Buffer
}

func (b *builder) u16(v uint16) *builder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])

	return b
}

func (b *builder) i32(v int32) *builder {
	b.u16(0x000C)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.buf.Write(tmp[:])

	return b
}

func (b *builder) equal() *builder    { return b.u16(0x0001) }
func (b *builder) open() *builder     { return b.u16(0x0003) }
func (b *builder) closeT() *builder   { return b.u16(0x0004) }
func (b *builder) boolean(v bool) *builder {
	b.u16(0x000E)
	if v {
		b.buf.WriteByte(1)
	} else {
		b.buf.WriteByte(0)
	}

	return b
}

func (b *builder) quoted(s string) *builder {
	b.u16(0x000F)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(len(s)))
	b.buf.Write(tmp[:])
	b.buf.WriteString(s)

	return b
}

func (b *builder) unquoted(s string) *builder {
	b.u16(0x0017)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(len(s)))
	b.buf.Write(tmp[:])
	b.buf.WriteString(s)

	return b
}

func (b *builder) id(v uint16) *builder { return b.u16(v) }

func (b *builder) rgb(r, g, bl uint32) *builder {
	b.u16(0x0243)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], r)
	b.buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], g)
	b.buf.Write(tmp[:])
	binary.LittleEndian.PutUint32(tmp[:], bl)
	b.buf.Write(tmp[:])

	return b
}

func TestNextClassifiesFixedPrimitives(t *testing.T) {
	b := (&builder{}).equal().open().closeT().i32(-5).boolean(true).
		quoted("FRA").unquoted("bar").id(0x2d2c).rgb(10, 20, 30)

	r := reader.New(bytes.NewReader(b.buf.Bytes()))

	tok, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindEqual, tok.Kind)

	tok, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, reader.KindOpen, tok.Kind)

	tok, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, reader.KindClose, tok.Kind)

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindI32, tok.Kind)
	assert.EqualValues(t, -5, tok.I32)

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindBool, tok.Kind)
	assert.True(t, tok.Bool)

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindQuoted, tok.Kind)
	assert.Equal(t, "FRA", string(tok.Bytes))

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindUnquoted, tok.Kind)
	assert.Equal(t, "bar", string(tok.Bytes))

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindID, tok.Kind)
	assert.EqualValues(t, 0x2d2c, tok.ID)

	tok, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindRGB, tok.Kind)
	assert.Equal(t, reader.RGB{R: 10, G: 20, B: 30}, tok.RGB)

	tok, err = r.Next()
	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestWideFieldSwitchesF32Width(t *testing.T) {
	b := &builder{}
	b.u16(0x000D)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(int32(1500)))
	b.buf.Write(tmp[:])

	r := reader.New(bytes.NewReader(b.buf.Bytes()))
	tok, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindF32, tok.Kind)
	assert.InDelta(t, 1.5, tok.F32, 1e-9)

	b2 := &builder{}
	b2.u16(0x000D)
	var tmp8 [8]byte
	binary.LittleEndian.PutUint64(tmp8[:], uint64(int64(500000)))
	b2.buf.Write(tmp8[:])

	r2 := reader.New(bytes.NewReader(b2.buf.Bytes()))
	r2.SetWideField(true)
	tok2, err := r2.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindScaledI64, tok2.Kind)
	assert.EqualValues(t, 500000, tok2.I64)
}

func TestSkipContainerBalancesBraces(t *testing.T) {
	// Open already consumed by caller; body has a nested Open/Close pair.
	b := (&builder{}).open().i32(1).closeT().closeT().id(0x99)

	r := reader.New(bytes.NewReader(b.buf.Bytes()))
	require.NoError(t, r.SkipContainer())

	tok, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, reader.KindID, tok.Kind)
	assert.EqualValues(t, 0x99, tok.ID)
}

func TestReadRequiredErrorsOnEOF(t *testing.T) {
	r := reader.New(bytes.NewReader(nil))
	_, err := r.ReadRequired()
	require.Error(t, err)
}

func TestTruncatedPayloadIsEOFError(t *testing.T) {
	b := &builder{}
	b.u16(0x000C) // I32 token id with no payload bytes following
	r := reader.New(bytes.NewReader(b.buf.Bytes()))
	_, err := r.Next()
	assert.Error(t, err)
}
