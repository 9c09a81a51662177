// Package writer implements the stateful plaintext emitter the melter
// writes through: it knows whether the next token is in key or value
// position and whether the current container is an object, an array, or
// still undetermined, and renders tab-indented bracketed text accordingly.
package writer

import (
	"fmt"
	"io"

	"github.com/rakaly/hoi4save/internal/pool"
)

type containerKind uint8

const (
	kindUnknown containerKind = iota
	kindObject
	kindArray
	kindMixed
)

type frame struct {
	kind      containerKind
	expectKey bool
	started   bool
}

// Writer renders the bracketed game text grammar, tracking just enough
// container state to answer ExpectingKey and AtUnknownStart for the melter.
//
// Writer is NOT thread-safe and NOT reusable: construct a fresh one (via
// New) for every melt call.
type Writer struct {
	out           io.Writer
	buf           *pool.ByteBuffer
	stack         []frame
	depth         int
	afterOperator bool
	// stmtStarted marks that the current line already has content, so the
	// next fresh statement needs a newline written before it.
	stmtStarted bool
}

// New creates a Writer that buffers output and flushes it to out on Flush.
func New(out io.Writer) *Writer {
	return &Writer{
		out:   out,
		buf:   pool.Get(),
		stack: []frame{{kind: kindObject, expectKey: true, started: true}},
	}
}

// Release returns the Writer's internal buffer to the shared pool. Call
// after Flush, once the Writer is no longer needed.
func (w *Writer) Release() {
	pool.Put(w.buf)
	w.buf = nil
}

// Flush writes any buffered bytes to the underlying io.Writer.
func (w *Writer) Flush() error {
	_, err := w.out.Write(w.buf.Bytes())

	return err
}

func (w *Writer) cur() *frame {
	return &w.stack[len(w.stack)-1]
}

// ExpectingKey reports whether the writer is currently positioned where a
// bare identifier would be interpreted as an object key. It does not
// resolve the ambiguous-first-element case; callers about to fill a
// container element slot should use NextElement instead, which resolves
// and records that case so a later sibling isn't mistaken for a key.
func (w *Writer) ExpectingKey() bool {
	return w.cur().expectKey
}

// NextElement reports whether the slot about to be filled is (or, for an
// as-yet-undetermined container, is provisionally assumed to be) a key,
// and advances the container's kind/expectKey bookkeeping accordingly.
//
// Call this exactly once per token that occupies a container element slot
// — including ones the caller ultimately decides not to render, such as a
// skipped padding token or an elided key — so that an undetermined
// container correctly becomes an array the moment a second bare element
// arrives with no intervening Equal, even when the first element produced
// no output.
func (w *Writer) NextElement() bool {
	f := w.cur()
	switch f.kind {
	case kindObject, kindMixed:
		wasKey := f.expectKey
		if !wasKey {
			// That was the value half of a pair; the next slot is a key again.
			f.expectKey = true
		}

		return wasKey
	case kindArray:
		return false
	default: // kindUnknown
		if f.started {
			// A second bare slot with no intervening Equal: this
			// container is an array, not an object.
			f.kind = kindArray
			f.expectKey = false

			return false
		}
		f.started = true

		return true // first element: ambiguous, assumed a key until proven otherwise
	}
}

// AtUnknownStart reports whether the current container has not yet emitted
// any element and its kind (object vs array) is still undetermined. A
// quoted string arriving here must be buffered until the following token
// reveals whether it was a key or a bare value.
func (w *Writer) AtUnknownStart() bool {
	f := w.cur()

	return f.kind == kindUnknown && !f.started
}

// StartMixedMode marks the current container as holding both key=value
// pairs and bare positional elements.
func (w *Writer) StartMixedMode() {
	w.cur().kind = kindMixed
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.depth; i++ {
		w.buf.WriteByte('\t')
	}
}

// beginStatement emits the separator before a fresh statement (a key, a
// bare array element, or a brace) unless we're continuing the current line
// right after an operator. Newlines precede statements rather than follow
// them, so the writer never needs to look ahead to know if one is needed.
func (w *Writer) beginStatement() {
	if w.afterOperator {
		return
	}
	if w.stmtStarted {
		w.buf.WriteByte('\n')
	}
	w.writeIndent()
}

// finishStatement closes out the bookkeeping shared by every leaf write,
// once its bytes are on the buffer. Container-kind/key-position bookkeeping
// is NextElement's job, not this one: callers must invoke NextElement
// themselves for every element slot, since some slots (skipped tokens)
// never reach a Write* call at all.
func (w *Writer) finishStatement() {
	w.afterOperator = false
	w.stmtStarted = true
}

// WriteOperator emits the '=' between a key and its value.
func (w *Writer) WriteOperator() error {
	f := w.cur()
	switch f.kind {
	case kindUnknown:
		f.kind = kindObject
	case kindArray:
		f.kind = kindMixed
	}
	f.expectKey = false
	f.started = true
	w.buf.WriteByte('=')
	w.afterOperator = true

	return nil
}

// WriteStart emits '{', opening a new container.
func (w *Writer) WriteStart() error {
	w.beginStatement()
	w.buf.WriteByte('{')
	w.buf.WriteByte('\n')
	w.afterOperator = false
	w.stmtStarted = false
	w.depth++
	w.stack = append(w.stack, frame{kind: kindUnknown, expectKey: true})

	return nil
}

// WriteEnd emits '}', closing the innermost container.
func (w *Writer) WriteEnd() error {
	if len(w.stack) > 1 {
		w.stack = w.stack[:len(w.stack)-1]
	}
	w.depth--
	if w.stmtStarted {
		w.buf.WriteByte('\n')
	}
	w.writeIndent()
	w.buf.WriteByte('}')
	w.afterOperator = false
	w.stmtStarted = true

	return nil
}

// WriteUnquoted emits s without surrounding quotes. Used both for values
// and for keys, since the game text format renders keys as bare
// identifiers regardless of how the binary stream encoded them.
func (w *Writer) WriteUnquoted(s []byte) error {
	w.beginStatement()
	w.buf.MustWrite(s)
	w.finishStatement()

	return nil
}

// WriteQuoted emits s wrapped in double quotes. Callers are responsible
// for routing key-position strings to WriteUnquoted instead: a quoted
// string in key position is rendered unquoted, and only the caller (which
// already consulted NextElement or deferred via AtUnknownStart) knows
// which position this is.
func (w *Writer) WriteQuoted(s []byte) error {
	w.beginStatement()
	w.buf.WriteByte('"')
	w.buf.MustWrite(s)
	w.buf.WriteByte('"')
	w.finishStatement()

	return nil
}

// WriteBool emits "yes" or "no".
func (w *Writer) WriteBool(v bool) error {
	w.beginStatement()
	if v {
		w.buf.WriteString("yes")
	} else {
		w.buf.WriteString("no")
	}
	w.finishStatement()

	return nil
}

// WriteI32 emits a signed 32-bit integer.
func (w *Writer) WriteI32(v int32) error {
	return w.writeNumber(fmt.Sprintf("%d", v))
}

// WriteI64 emits a signed 64-bit integer.
func (w *Writer) WriteI64(v int64) error {
	return w.writeNumber(fmt.Sprintf("%d", v))
}

// WriteU32 emits an unsigned 32-bit integer.
func (w *Writer) WriteU32(v uint32) error {
	return w.writeNumber(fmt.Sprintf("%d", v))
}

// WriteU64 emits an unsigned 64-bit integer.
func (w *Writer) WriteU64(v uint64) error {
	return w.writeNumber(fmt.Sprintf("%d", v))
}

// WriteF32 emits a float decoded via the f32 flavor.
func (w *Writer) WriteF32(v float64) error {
	return w.writeNumber(formatFloat(v))
}

// WriteF64 emits a float decoded via the f64 flavor.
func (w *Writer) WriteF64(v float64) error {
	return w.writeNumber(formatFloat(v))
}

// WriteDate emits a pre-formatted game-format date string, e.g. "1936.1.1.12".
func (w *Writer) WriteDate(s string) error {
	return w.writeNumber(s)
}

// WriteRGB emits "rgb = { R G B }"'s value half: "rgb { R G B }".
func (w *Writer) WriteRGB(r, g, b uint32) error {
	return w.writeNumber(fmt.Sprintf("rgb { %d %d %d }", r, g, b))
}

// WriteHeader emits the literal melted-document header line.
func (w *Writer) WriteHeader() error {
	w.buf.WriteString("HOI4txt\n")

	return nil
}

// WriteRaw appends arbitrary bytes without any statement bookkeeping. Used
// only for the final trailing newline, which is unconditional regardless of
// writer state.
func (w *Writer) WriteRaw(s string) error {
	w.buf.WriteString(s)

	return nil
}

func (w *Writer) writeNumber(s string) error {
	w.beginStatement()
	w.buf.WriteString(s)
	w.finishStatement()

	return nil
}

func formatFloat(v float64) string {
	return trimFloat(fmt.Sprintf("%.5f", v))
}

// trimFloat strips trailing zeros (and a trailing dot) from a fixed-
// precision formatted float, since the game's own text encoder never pads
// floats to a constant width.
func trimFloat(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == '0' {
		end--
	}
	if end > 0 && s[end-1] == '.' {
		end--
	}
	if end == 0 {
		return "0"
	}

	return s[:end]
}
