// Package file implements the thin format-sniffing facade: given the raw
// bytes (or a reader) of a save, it inspects the 7-byte magic header and
// dispatches to either a verbatim text pass-through or the binary melter in
// package melt. It also exposes a minimal Deserializer collaborator
// interface and a placeholder Save record, just enough to make the
// package's own tests concrete — typed deserialization into full game
// records is explicitly out of scope (spec.md §1) and belongs to a
// separate collaborator this module does not implement.
package file

import (
	"bufio"
	"bytes"
	"io"

	"github.com/rakaly/hoi4save/date"
	"github.com/rakaly/hoi4save/errs"
	"github.com/rakaly/hoi4save/melt"
	"github.com/rakaly/hoi4save/tokens"
)

// Encoding reports which of the two on-disk forms a save used.
type Encoding uint8

const (
	Unknown Encoding = iota
	Plaintext
	Binary
)

func (e Encoding) String() string {
	switch e {
	case Plaintext:
		return "Plaintext"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

const headerLen = 7

const (
	textHeader   = "HOI4txt"
	binaryHeader = "HOI4bin"
)

// Sniff classifies the first 7 bytes of a save. header must be at least 7
// bytes long; shorter input is reported as errs.ErrUnknownHeader rather than
// a separate "too short" error, since the caller's remedy is the same.
func Sniff(header []byte) (Encoding, error) {
	if len(header) < headerLen {
		return Unknown, errs.ErrUnknownHeader
	}

	switch string(header[:headerLen]) {
	case textHeader:
		return Plaintext, nil
	case binaryHeader:
		return Binary, nil
	default:
		return Unknown, errs.ErrUnknownHeader
	}
}

// Save is a placeholder for the out-of-scope typed save record: only the
// two fields spec.md §8.3's concrete scenarios assert on.
type Save struct {
	Player string
	Date   date.Date
}

// Deserializer is the minimal collaborator contract spec.md §6.3 assigns to
// the typed domain deserializer this module does not implement.
type Deserializer interface {
	Deserialize(r io.Reader) (any, error)
}

// SliceFile is a save held entirely in memory, allowing zero-copy string
// borrowing from the backing slice on the text path.
type SliceFile struct {
	data []byte
}

// FromSlice wraps an in-memory save. It does not copy data.
func FromSlice(data []byte) *SliceFile {
	return &SliceFile{data: data}
}

// Encoding sniffs the file's header.
func (f *SliceFile) Encoding() (Encoding, error) {
	return Sniff(f.data)
}

// Parse dispatches by header: a text save is handed to the placeholder line
// deserializer directly; a binary save is melted first (using resolver)
// and the melted text is then handed to the same deserializer, since the
// real typed binary deserializer is the out-of-scope collaborator this
// package only stubs.
func (f *SliceFile) Parse(resolver tokens.Resolver) (Save, Encoding, error) {
	enc, err := Sniff(f.data)
	if err != nil {
		return Save{}, Unknown, err
	}

	body := f.data[headerLen:]
	switch enc {
	case Plaintext:
		save, err := deserializeText(bytes.NewReader(body))

		return save, enc, err
	default: // Binary
		var out bytes.Buffer
		if _, err := melt.Melt(bytes.NewReader(body), resolver, &out, melt.DefaultOptions()); err != nil {
			return Save{}, enc, err
		}
		// Melt output carries its own "HOI4txt\n" header; strip it before
		// handing the body to the same text deserializer used above.
		save, err := deserializeText(bytes.NewReader(out.Bytes()[len(textHeader)+1:]))

		return save, enc, err
	}
}

// Melt writes the melted plaintext form of a binary save to w, copying text
// saves through verbatim (spec.md §8.2 "melting a text file is the
// identity on the body").
func (f *SliceFile) Melt(opts melt.Options, resolver tokens.Resolver, w io.Writer) (melt.Document, error) {
	enc, err := Sniff(f.data)
	if err != nil {
		return melt.Document{}, err
	}

	if enc == Plaintext {
		_, err := w.Write(f.data)

		return melt.Document{}, err
	}

	return melt.Melt(bytes.NewReader(f.data[headerLen:]), resolver, w, opts)
}

// ReaderFile is a save streamed from an io.Reader rather than held
// in memory, for inputs too large to buffer twice. Its header is peeked
// through a small bufio.Reader so the body never needs to be copied to
// classify it.
type ReaderFile struct {
	br *bufio.Reader
}

// FromReader wraps r for streaming access.
func FromReader(r io.Reader) *ReaderFile {
	return &ReaderFile{br: bufio.NewReaderSize(r, 64*1024)}
}

// Encoding peeks the header without consuming it.
func (f *ReaderFile) Encoding() (Encoding, error) {
	header, err := f.br.Peek(headerLen)
	if err != nil && len(header) == 0 {
		return Unknown, &errs.IOError{Err: err}
	}

	return Sniff(header)
}

// Melt writes the melted plaintext form to w, consuming the header itself
// (it is never re-readable after this call).
func (f *ReaderFile) Melt(opts melt.Options, resolver tokens.Resolver, w io.Writer) (melt.Document, error) {
	enc, err := f.Encoding()
	if err != nil {
		return melt.Document{}, err
	}

	if _, err := f.br.Discard(headerLen); err != nil {
		return melt.Document{}, &errs.IOError{Err: err}
	}

	if enc == Plaintext {
		if _, err := io.WriteString(w, textHeader); err != nil {
			return melt.Document{}, err
		}
		_, err := io.Copy(w, f.br)

		return melt.Document{}, err
	}

	return melt.Melt(f.br, resolver, w, opts)
}

// Parse mirrors SliceFile.Parse but reads through the buffered reader
// instead of a backing slice.
func (f *ReaderFile) Parse(resolver tokens.Resolver) (Save, Encoding, error) {
	enc, err := f.Encoding()
	if err != nil {
		return Save{}, Unknown, err
	}

	if _, err := f.br.Discard(headerLen); err != nil {
		return Save{}, enc, &errs.IOError{Err: err}
	}

	if enc == Plaintext {
		save, err := deserializeText(f.br)

		return save, enc, err
	}

	var out bytes.Buffer
	if _, err := melt.Melt(f.br, resolver, &out, melt.DefaultOptions()); err != nil {
		return Save{}, enc, err
	}
	save, err := deserializeText(bytes.NewReader(out.Bytes()[len(textHeader)+1:]))

	return save, enc, err
}
