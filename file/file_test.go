package file_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rakaly/hoi4save/file"
	"github.com/rakaly/hoi4save/melt"
	"github.com/rakaly/hoi4save/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffPlaintext(t *testing.T) {
	enc, err := file.Sniff([]byte("HOI4txt\nplayer=FRA\n"))
	require.NoError(t, err)
	assert.Equal(t, file.Plaintext, enc)
}

func TestSniffBinary(t *testing.T) {
	enc, err := file.Sniff([]byte("HOI4bin\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, file.Binary, enc)
}

func TestSniffUnknownHeader(t *testing.T) {
	_, err := file.Sniff([]byte("HELLO.."))
	assert.Error(t, err)
}

func TestSliceFileParsePlaintext(t *testing.T) {
	f := file.FromSlice([]byte("HOI4txt\nplayer=FRA\ndate=1936.1.1.12\n"))

	save, enc, err := f.Parse(tokens.Empty())
	require.NoError(t, err)
	assert.Equal(t, file.Plaintext, enc)
	assert.Equal(t, "FRA", save.Player)
	assert.Equal(t, "1936.1.1.12", save.Date.GameFormat())
}

func TestSliceFileMeltPlaintextIsIdentity(t *testing.T) {
	body := []byte("HOI4txt\nplayer=FRA\n")
	f := file.FromSlice(body)

	var out bytes.Buffer
	_, err := f.Melt(melt.DefaultOptions(), tokens.Empty(), &out)
	require.NoError(t, err)
	assert.Equal(t, body, out.Bytes())
}

// binaryBuilder assembles a minimal binary save body for facade tests.
type binaryBuilder struct {
	buf bytes.Buffer
}

func (b *binaryBuilder) u16(v uint16) *binaryBuilder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])

	return b
}

func (b *binaryBuilder) id(v uint16) *binaryBuilder { return b.u16(v) }
func (b *binaryBuilder) equal() *binaryBuilder      { return b.u16(0x0001) }

func (b *binaryBuilder) quoted(s string) *binaryBuilder {
	b.u16(0x000F)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(len(s)))
	b.buf.Write(tmp[:])
	b.buf.WriteString(s)

	return b
}

func (b *binaryBuilder) i32(v int32) *binaryBuilder {
	b.u16(0x000C)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.buf.Write(tmp[:])

	return b
}

func TestSliceFileParseBinaryMeltsThenDeserializes(t *testing.T) {
	bb := (&binaryBuilder{}).id(0x01).equal().quoted("FRA").
		id(0x02).equal().i32(60759371)

	resolver := tokens.NewMapResolver(map[uint16]string{0x01: "player", 0x02: "date"})

	body := append([]byte(nil), []byte("HOI4bin")...)
	body = append(body, bb.buf.Bytes()...)

	f := file.FromSlice(body)
	save, enc, err := f.Parse(resolver)
	require.NoError(t, err)
	assert.Equal(t, file.Binary, enc)
	assert.Equal(t, "FRA", save.Player)
	assert.Equal(t, "1936.1.1.12", save.Date.GameFormat())
}

func TestReaderFileMeltPlaintextIsIdentity(t *testing.T) {
	body := []byte("HOI4txt\nplayer=FRA\n")
	f := file.FromReader(bytes.NewReader(body))

	var out bytes.Buffer
	_, err := f.Melt(melt.DefaultOptions(), tokens.Empty(), &out)
	require.NoError(t, err)
	assert.Equal(t, body, out.Bytes())
}

func TestReaderFileMeltBinary(t *testing.T) {
	bb := (&binaryBuilder{}).id(0x01).equal().quoted("FRA")
	resolver := tokens.NewMapResolver(map[uint16]string{0x01: "player"})

	body := append([]byte(nil), []byte("HOI4bin")...)
	body = append(body, bb.buf.Bytes()...)

	f := file.FromReader(bytes.NewReader(body))

	var out bytes.Buffer
	_, err := f.Melt(melt.DefaultOptions(), resolver, &out)
	require.NoError(t, err)
	assert.Equal(t, "HOI4txt\nplayer=\"FRA\"\n", out.String())
}
