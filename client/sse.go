package client

import (
	"bufio"
	"bytes"
	"io"
)

// event is one server-sent event.
type event struct {
	Name string
	Data []byte
}

// eventReader splits a text/event-stream body into events. Comment lines and
// unknown fields are ignored; multiple data lines are joined with newlines.
type eventReader struct {
	r *bufio.Reader
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReader(r)}
}

// Next blocks until a complete event has been read.
func (er *eventReader) Next() (event, error) {
	var (
		ev      event
		data    [][]byte
		hasData bool
	)
	for {
		line, err := er.r.ReadBytes('\n')
		if err != nil {
			return event{}, err
		}
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if ev.Name == "" && !hasData {
				continue
			}
			if ev.Name == "" {
				ev.Name = "message"
			}
			ev.Data = bytes.Join(data, []byte("\n"))
			return ev, nil
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "event":
			ev.Name = string(value)
		case "data":
			data = append(data, append([]byte(nil), value...))
			hasData = true
		}
	}
}
