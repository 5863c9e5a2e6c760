package pipeline

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// pumpChunk is the bounded read size used by capture pumps.
const pumpChunk = 4096

// pump forwards bytes from a capture pipe to dst verbatim, flushing
// after every chunk so consumers see output promptly. The loop ends on
// EOF or the first non-retryable error; EINTR is retried without data
// loss.
func pump(r *os.File, dst io.Writer) error {
	defer r.Close()

	buf := make([]byte, pumpChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			flush(dst)
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, syscall.EINTR):
			continue
		default:
			return err
		}
	}
}

type flusher interface {
	Flush() error
}

func flush(w io.Writer) {
	if f, ok := w.(flusher); ok {
		_ = f.Flush()
	}
}

// feed dispatches once on the input source tag, writes everything into
// the first stage's stdin pipe, then closes the pipe to signal
// end-of-input. A stage that stops reading early is not an error,
// matching shell behavior for pipelines like "yes | head".
func feed(src inputSource, w *os.File) error {
	defer w.Close()

	var err error
	switch src.kind {
	case inputBytes:
		_, err = w.Write(src.buf)
	case inputStream:
		_, err = io.Copy(w, src.r)
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
