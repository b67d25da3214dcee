package core

// streaming.go wraps the raw upload stream before it reaches the CSV reader.
//
//   - sizeCappedReader fails once more than the configured number of bytes
//     has been read, so an oversized upload never has to be buffered
//   - the x/text UTF-8 BOM decoder drops a leading byte order mark and
//     replaces invalid UTF-8 sequences with U+FFFD
//
// Use wrapForStreaming to apply both in the correct order.

import (
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// errSizeCapExceeded is returned by sizeCappedReader; the pipeline reports it
// to callers as ErrFileTooLarge.
var errSizeCapExceeded = errors.New("upload exceeds size cap")

// sizeCappedReader reads at most limit bytes from r. Reading past the limit
// returns errSizeCapExceeded and sets exceeded. A limit <= 0 disables the cap.
type sizeCappedReader struct {
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func newSizeCappedReader(r io.Reader, limit int64) *sizeCappedReader {
	return &sizeCappedReader{r: r, limit: limit}
}

func (c *sizeCappedReader) Read(p []byte) (int, error) {
	if c.limit <= 0 {
		n, err := c.r.Read(p)
		c.read += int64(n)
		return n, err
	}
	if c.exceeded {
		return 0, errSizeCapExceeded
	}

	// Allow one byte past the limit so an exact-size file is not rejected.
	if remaining := c.limit - c.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		c.exceeded = true
		return n - int(c.read-c.limit), errSizeCapExceeded
	}
	return n, err
}

// BytesRead returns how many bytes were consumed from the underlying reader.
func (c *sizeCappedReader) BytesRead() int64 {
	return c.read
}

// wrapForStreaming caps r at maxBytes and then strips a UTF-8 BOM and repairs
// invalid UTF-8. The cap applies to raw bytes, before any decoding.
func wrapForStreaming(r io.Reader, maxBytes int64) (io.Reader, *sizeCappedReader) {
	capped := newSizeCappedReader(r, maxBytes)
	return transform.NewReader(capped, unicode.UTF8BOM.NewDecoder()), capped
}
