package container

import (
	"bufio"
	"io"
	"strings"
)

// ForEachLine calls fn for every line read from r. A line longer than the
// internal buffer is delivered in buffer-sized chunks instead of aborting
// the read: a reader that stops before EOF leaves the child process
// blocked writing into a full pipe, and Wait never returns.
func ForEachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			fn(strings.TrimRight(string(chunk), "\r\n"))
		}
		switch err {
		case nil, bufio.ErrBufferFull:
		case io.EOF:
			return nil
		default:
			// Keep draining so the child can still exit.
			_, _ = io.Copy(io.Discard, r)
			return err
		}
	}
}
