package listener

import (
	"bytes"
	"io"
)

var (
	crlf  = []byte("\r\n")
	crnul = []byte("\r\x00")
	cr    = []byte("\r")
	lf    = []byte("\n")
)

// lineEndingRW gives the console plain \n line endings whatever the client
// sends, and writes \r\n back.
type lineEndingRW struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndingRW{rw: rw}
}

// Read maps \r\n (telnet), \r\x00 (telnet without binary mode) and a bare \r
// (ssh without a pty) to \n.
func (c *lineEndingRW) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n == 0 {
		return n, err
	}

	data := bytes.ReplaceAll(p[:n], crlf, lf)
	data = bytes.ReplaceAll(data, crnul, lf)
	data = bytes.ReplaceAll(data, cr, lf)
	return copy(p, data), err
}

// Write reports len(p) on success even though more bytes reach the wire.
func (c *lineEndingRW) Write(p []byte) (int, error) {
	_, err := c.rw.Write(bytes.ReplaceAll(p, lf, crlf))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
