// File: internal/llmclient/sse.go
package llmclient

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// errStreamDone stops readSSE once the [DONE] sentinel arrives.
var errStreamDone = errors.New("stream done")

// readSSE reads a server-sent event stream and hands the data of each event
// to onData. Multi-line data is joined with newlines. A callback returning
// errStreamDone ends the read without error.
func readSSE(r io.Reader, onData func(data string) error) error {
	br := bufio.NewReader(r)
	var dataLines []string

	flush := func() error {
		if len(dataLines) == 0 {
			return nil
		}
		data := strings.Join(dataLines, "\n")
		dataLines = nil
		return onData(data)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if ferr := flush(); ferr != nil {
				return doneIsNil(ferr)
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}

		if eof {
			return doneIsNil(flush())
		}
	}
}

func doneIsNil(err error) error {
	if errors.Is(err, errStreamDone) {
		return nil
	}
	return err
}
