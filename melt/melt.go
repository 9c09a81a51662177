// Package melt implements the binary-to-text conversion at the heart of
// this module: it drives the internal token reader and writer, resolving
// identifiers through a caller-supplied tokens.Resolver and applying the
// save format's context-sensitive reinterpretation rules for integers,
// dates, and the ironman key.
package melt

import (
	"fmt"
	"io"
	"strings"

	"github.com/rakaly/hoi4save/date"
	"github.com/rakaly/hoi4save/errs"
	"github.com/rakaly/hoi4save/internal/reader"
	"github.com/rakaly/hoi4save/internal/writer"
	"github.com/rakaly/hoi4save/tokens"
)

// FailedResolveStrategy governs what happens when a token ID has no entry
// in the resolver.
type FailedResolveStrategy int

const (
	// Ignore silently drops the key=value pair an unresolved token in key
	// position belongs to, without recording the ID. An unresolved token in
	// value position is handled as under Stringify.
	Ignore FailedResolveStrategy = iota
	// Stringify emits "__unknown_0x<hex>" in its place and records the ID.
	Stringify
	// Error fails the melt immediately with an UnknownTokenError.
	Error
)

// Options controls melt's behavior.
type Options struct {
	// Verbatim, when false (the default), elides is_ironman/ironman keys
	// and their value from the output entirely.
	Verbatim bool
	// OnFailedResolve governs unresolved-token handling; see
	// FailedResolveStrategy.
	OnFailedResolve FailedResolveStrategy
}

// DefaultOptions returns the zero-value-equivalent Options: non-verbatim,
// ignore unresolved tokens.
func DefaultOptions() Options {
	return Options{Verbatim: false, OnFailedResolve: Ignore}
}

// Document is the result of a successful melt: the set of token IDs the
// resolver failed to resolve and that were emitted as "__unknown_0x<hex>".
// Under Stringify that is every unresolved token; under Ignore only those
// in value position, since dropped key-position tokens are not recorded;
// under Error the melt never returns one at all.
type Document struct {
	unknown map[uint16]struct{}
}

// UnknownTokens returns every recorded unresolved token ID, in no
// particular order.
func (d Document) UnknownTokens() []uint16 {
	if len(d.unknown) == 0 {
		return nil
	}
	out := make([]uint16, 0, len(d.unknown))
	for id := range d.unknown {
		out = append(out, id)
	}

	return out
}

func (d *Document) record(id uint16) {
	if d.unknown == nil {
		d.unknown = make(map[uint16]struct{})
	}
	d.unknown[id] = struct{}{}
}

// Melt consumes r (the binary save body, with its 7-byte header already
// stripped) and writes the melted plaintext body to w, including the
// leading "HOI4txt\n" header and the trailing newline.
func Melt(r io.Reader, resolver tokens.Resolver, w io.Writer, opts Options) (Document, error) {
	rd := reader.New(r)
	wtr := writer.New(w)
	defer wtr.Release()

	var doc Document

	if err := wtr.WriteHeader(); err != nil {
		return doc, &errs.WriterError{Err: err}
	}

	var (
		knownNumber         bool
		knownDate           bool
		saveVersionPending  bool
		quotedBufferEnabled bool
		quotedBuffer        []byte
	)

	for {
		tok, err := rd.Next()
		if err != nil {
			return doc, err
		}
		if tok == nil {
			break
		}

		if quotedBufferEnabled {
			wtr.NextElement() // advance bookkeeping for the slot the buffered string occupies

			var werr error
			if tok.Kind == reader.KindEqual {
				werr = wtr.WriteUnquoted(quotedBuffer)
			} else {
				werr = wtr.WriteQuoted(quotedBuffer)
			}
			if werr != nil {
				return doc, &errs.WriterError{Err: werr}
			}
			quotedBuffer = nil
			quotedBufferEnabled = false
		}

		switch tok.Kind {
		case reader.KindOpen:
			wtr.NextElement() // the container itself occupies the parent's element slot
			if err := wtr.WriteStart(); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindClose:
			if err := wtr.WriteEnd(); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindI32:
			wtr.NextElement()
			if err := writeInt32(rd, wtr, tok.I32, &knownNumber, &knownDate, &saveVersionPending, opts); err != nil {
				return doc, err
			}
		case reader.KindQuoted:
			if wtr.AtUnknownStart() {
				quotedBufferEnabled = true
				quotedBuffer = append(quotedBuffer, tok.Bytes...)
				continue
			}
			if wtr.NextElement() {
				if err := wtr.WriteUnquoted(tok.Bytes); err != nil {
					return doc, &errs.WriterError{Err: err}
				}
			} else if err := wtr.WriteQuoted(tok.Bytes); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindUnquoted:
			wtr.NextElement()
			if err := wtr.WriteUnquoted(tok.Bytes); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindF32:
			wtr.NextElement()
			if err := wtr.WriteF32(tok.F32); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindF64:
			wtr.NextElement()
			if err := wtr.WriteF64(tok.F64); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindScaledI64:
			wtr.NextElement()
			if err := wtr.WriteI64(tok.I64 / 100000); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindID:
			isKey := wtr.NextElement()

			if tok.ID == reader.IDNull || tok.ID == reader.IDPad {
				if isKey {
					if err := skipKeyAndValue(rd); err != nil {
						return doc, err
					}
				}
				continue
			}

			name, ok := resolver.Resolve(tok.ID)
			if !ok {
				switch opts.OnFailedResolve {
				case Error:
					return doc, &errs.UnknownTokenError{TokenID: tok.ID}
				case Ignore:
					if isKey {
						if err := skipKeyAndValue(rd); err != nil {
							return doc, err
						}

						continue
					}
					fallthrough
				default:
					doc.record(tok.ID)
					if err := wtr.WriteUnquoted([]byte(fmt.Sprintf("__unknown_0x%x", tok.ID))); err != nil {
						return doc, &errs.WriterError{Err: err}
					}
				}

				continue
			}

			if !opts.Verbatim && (name == "is_ironman" || name == "ironman") && isKey {
				if err := skipKeyAndValue(rd); err != nil {
					return doc, err
				}

				continue
			}

			knownNumber = strings.HasSuffix(name, "seed") || name == "total" || name == "available" || name == "locked"
			knownDate = name == "date"
			saveVersionPending = name == "save_version"

			if err := wtr.WriteUnquoted([]byte(name)); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindEqual:
			if err := wtr.WriteOperator(); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindU32:
			wtr.NextElement()
			if err := wtr.WriteU32(tok.U32); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindU64:
			wtr.NextElement()
			if err := wtr.WriteU64(tok.U64); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindBool:
			wtr.NextElement()
			if err := wtr.WriteBool(tok.Bool); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindRGB:
			wtr.NextElement()
			if err := wtr.WriteRGB(tok.RGB.R, tok.RGB.G, tok.RGB.B); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		case reader.KindI64:
			wtr.NextElement()
			if err := wtr.WriteI64(tok.I64); err != nil {
				return doc, &errs.WriterError{Err: err}
			}
		}
	}

	if err := wtr.WriteRaw("\n"); err != nil {
		return doc, &errs.WriterError{Err: err}
	}
	if err := wtr.Flush(); err != nil {
		return doc, &errs.IOError{Err: err}
	}

	return doc, nil
}

// writeInt32 applies the context-sensitive reinterpretation rules to a
// plain I32 token, in priority order: a pending save_version value is
// emitted verbatim and flips the reader's wide-field switch; then a
// known-number or known-date key makes it verbatim or a date respectively;
// otherwise a heuristic date decode is attempted before falling back to a
// verbatim integer.
func writeInt32(rd *reader.Reader, wtr *writer.Writer, x int32, knownNumber, knownDate, saveVersionPending *bool, opts Options) error {
	switch {
	case *saveVersionPending:
		*saveVersionPending = false
		rd.SetWideField(x >= 30)
		if err := wtr.WriteI32(x); err != nil {
			return &errs.WriterError{Err: err}
		}
	case *knownNumber:
		*knownNumber = false
		if err := wtr.WriteI32(x); err != nil {
			return &errs.WriterError{Err: err}
		}
	case *knownDate:
		*knownDate = false
		if d, ok := date.FromBinary(x); ok {
			if err := wtr.WriteDate(d.GameFormat()); err != nil {
				return &errs.WriterError{Err: err}
			}
		} else if opts.OnFailedResolve != Error {
			if err := wtr.WriteI32(x); err != nil {
				return &errs.WriterError{Err: err}
			}
		} else {
			return &errs.InvalidDateError{Value: x}
		}
	default:
		if d, ok := date.FromBinaryHeuristic(x); ok {
			if err := wtr.WriteDate(d.GameFormat()); err != nil {
				return &errs.WriterError{Err: err}
			}
		} else if err := wtr.WriteI32(x); err != nil {
			return &errs.WriterError{Err: err}
		}
	}

	return nil
}

// skipKeyAndValue consumes the Equal and following value (or balanced
// container) belonging to a key the melter has decided to drop, matching
// the elision procedure for ironman keys, unresolved tokens, and padding.
func skipKeyAndValue(rd *reader.Reader) error {
	next, err := rd.ReadRequired()
	if err != nil {
		return err
	}
	if next.Kind == reader.KindEqual {
		next, err = rd.ReadRequired()
		if err != nil {
			return err
		}
	}
	if next.Kind == reader.KindOpen {
		return rd.SkipContainer()
	}

	return nil
}
