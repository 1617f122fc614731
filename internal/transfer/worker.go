// Package transfer implements the one-shot, ephemeral-port data-channel
// workers described in spec.md §4.4, grounded on
// original_source/server/main.cpp's handle_file_upload_connection and
// handle_file_download_connection.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/kestrelworks/lobbyhub"
)

// chunkSize bounds every read/write on the data channel to spec.md §4.4's
// "≤4 KiB chunks".
const chunkSize = 4096

// acceptTimeout is how long a worker waits for the client's second
// connection before giving up.
const acceptTimeout = 10 * time.Second

// Kind distinguishes the two transfer directions for logging/grants.
type Kind string

const (
	KindUpload   Kind = "upload"
	KindDownload Kind = "download"
)

// Listen opens an ephemeral TCP listener on host (no specific
// port), returning it along with the port the caller should report back
// to the client.
func Listen(host string) (*net.TCPListener, int, error) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP(host)})
	if err != nil {
		return nil, 0, fmt.Errorf("transfer: listen: %w", err)
	}
	return ln, ln.Addr().(*net.TCPAddr).Port, nil
}

// RunUpload accepts exactly one connection on ln, then copies exactly
// size bytes from it into path, in ≤4KiB chunks. Always closes ln. Errors
// are returned for logging only — per spec.md §7, the client observes
// failure purely through its own socket behavior.
func RunUpload(ln *net.TCPListener, path string, size int64) error {
	defer ln.Close()

	conn, err := acceptOne(ln)
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transfer: creating %s: %w", path, err)
	}
	defer f.Close()

	copied, err := io.CopyBuffer(f, io.LimitReader(conn, size), make([]byte, chunkSize))
	if err != nil {
		return fmt.Errorf("transfer: upload read/write: %w", err)
	}
	if copied != size {
		return fmt.Errorf("transfer: upload got %d bytes, want %d", copied, size)
	}
	return nil
}

// RunDownload accepts exactly one connection on ln, then streams path to
// it in ≤4KiB chunks until EOF. Always closes ln.
func RunDownload(ln *net.TCPListener, path string) error {
	defer ln.Close()

	conn, err := acceptOne(ln)
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("transfer: opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.CopyBuffer(conn, f, make([]byte, chunkSize)); err != nil {
		return fmt.Errorf("transfer: download write: %w", err)
	}
	return nil
}

func acceptOne(ln *net.TCPListener) (net.Conn, error) {
	if err := ln.SetDeadline(time.Now().Add(acceptTimeout)); err != nil {
		return nil, fmt.Errorf("transfer: set accept deadline: %w", err)
	}
	conn, err := ln.Accept()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, fmt.Errorf("transfer: accept timed out after %s", acceptTimeout)
		}
		return nil, fmt.Errorf("transfer: accept: %w", err)
	}
	return conn, nil
}

// Spawn launches a transfer worker on its own goroutine and logs its
// outcome. If grants is non-nil, port's grant is marked complete once the
// worker finishes, whether or not it succeeded.
func Spawn(kind Kind, ln *net.TCPListener, path string, size int64, grants *Grants, port int) {
	go func() {
		var err error
		switch kind {
		case KindUpload:
			err = RunUpload(ln, path, size)
		case KindDownload:
			err = RunDownload(ln, path)
		}
		if grants != nil {
			grants.Complete(port)
		}
		if err != nil {
			lobbyhub.Log.WithError(err).WithField("kind", kind).WithField("path", path).
				Warn("transfer worker finished with error")
		}
	}()
}
