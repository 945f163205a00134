package progress

import (
	"bufio"
	"io"
	"strings"
)

// Reader decodes events from a newline-delimited stream.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next blocks until a complete line arrives. Blank lines are skipped. If the stream
// ends in the middle of a line, that partial line is discarded and io.EOF returned.
func (r *Reader) Next() (Event, error) {
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		return Parse(line), nil
	}
}
