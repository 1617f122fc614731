package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteThenReadFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"action":"login"}`)

	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("ReadFrame() round-trip mismatch; diff:\n%s", diff)
	}
}

func TestReadFrame_EmptyFrame(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})
	if _, err := ReadFrame(buf); err != ErrEmptyFrame {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrEmptyFrame)
	}
}

func TestReadFrame_TooLarge(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 1, 1, 0}) // declares 65536 + 256 bytes
	if _, err := ReadFrame(buf); err != ErrFrameTooLarge {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrFrameTooLarge)
	}
}

func TestReadFrame_PartialReads(t *testing.T) {
	payload := []byte(`{"action":"list_games"}`)
	var full bytes.Buffer
	if err := WriteFrame(&full, payload); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	r := &oneByteReader{data: full.Bytes()}
	got, err := ReadFrame(r)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("ReadFrame() mismatch with one-byte-at-a-time reader; diff:\n%s", diff)
	}
}

func TestReadFrame_DisconnectBeforeLength(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	if _, err := ReadFrame(buf); err != io.EOF {
		t.Errorf("ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestReadFrame_DisconnectMidFrame(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 10, 'h', 'i'})
	if _, err := ReadFrame(buf); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

// oneByteReader forces every caller to deal with partial reads, one byte
// at a time, exercising the readFull loop.
type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
