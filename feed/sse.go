package feed

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// EventActivity is the event name the backend uses for new activities
const EventActivity = "activity"

const maxLineSize = 1 << 20

var errLineTooLong = errors.New("event stream line too long")

// Event is one dispatched server-sent event
type Event struct {
	Name string
	Data string
	ID   string
}

// readEvents parses a text/event-stream and calls yield for every dispatched
// event until yield returns false or the stream ends. An event with a line
// longer than maxLineSize is dropped and the stream continues.
func readEvents(r io.Reader, yield func(Event) bool) error {
	br := bufio.NewReaderSize(r, 4096)

	var (
		ev       Event
		data     []string
		hasData  bool
		dropping bool
	)

	for {
		line, err := readLine(br)
		if errors.Is(err, errLineTooLong) {
			dropping = true
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if line == "" {
			if hasData && !dropping {
				ev.Data = strings.Join(data, "\n")
				if !yield(ev) {
					return nil
				}
			}
			ev, data, hasData, dropping = Event{}, data[:0], false, false
			continue
		}

		if dropping || strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Name = value
		case "data":
			data = append(data, value)
			hasData = true
		case "id":
			ev.ID = value
		}
	}
}

// readLine returns the next line without its line ending. A line over
// maxLineSize is consumed up to its newline and reported as errLineTooLong.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, err := br.ReadSlice('\n')
		if len(buf)+len(chunk) > maxLineSize {
			if err == bufio.ErrBufferFull {
				if err := discardLine(br); err != nil {
					return "", err
				}
			}
			return "", errLineTooLong
		}
		buf = append(buf, chunk...)

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF && len(buf) > 0:
			return trimLineEnding(buf), nil
		case err != nil:
			return "", err
		}
		return trimLineEnding(buf), nil
	}
}

func discardLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

func trimLineEnding(b []byte) string {
	b = bytes.TrimSuffix(b, []byte("\n"))
	b = bytes.TrimSuffix(b, []byte("\r"))
	return string(b)
}
