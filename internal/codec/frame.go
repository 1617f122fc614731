// Package codec implements the length-prefixed JSON framing used on the
// control channel: a 4-byte big-endian length followed by that many bytes
// of UTF-8 JSON.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest frame payload the codec will accept, per
// spec.md §4.1. A frame exceeding this (or of zero length) is a protocol
// error.
const MaxFrameSize = 65536

// ErrFrameTooLarge is returned when a peer declares a frame bigger than
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("codec: frame exceeds maximum size")

// ErrEmptyFrame is returned when a peer declares a zero-length frame.
var ErrEmptyFrame = errors.New("codec: frame has zero length")

// ReadFrame blocks until it has read one complete frame from r, looping
// over partial reads the way a stream socket requires. It returns io.EOF
// verbatim when the peer closes before sending a length prefix at all, so
// callers can distinguish a clean disconnect from a mid-frame protocol
// error.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if err := readFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(lenBuf[:])
	if size == 0 {
		return nil, ErrEmptyFrame
	}
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, size)
	if err := readFull(r, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes payload to w as one frame, looping over partial writes.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyFrame
	}
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if err := writeFull(w, lenBuf[:]); err != nil {
		return fmt.Errorf("codec: writing frame length: %w", err)
	}
	if err := writeFull(w, payload); err != nil {
		return fmt.Errorf("codec: writing frame payload: %w", err)
	}
	return nil
}

// readFull reads exactly len(buf) bytes from r, looping on short reads. It
// returns io.EOF only when zero bytes were read before the peer closed.
func readFull(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			if read == 0 && err == io.EOF {
				return io.EOF
			}
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// writeFull writes exactly len(buf) bytes to w, looping on short writes.
func writeFull(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n
		if err != nil {
			return err
		}
	}
	return nil
}
