package cli

import (
	"bufio"
	"strings"
)

// StartLineReader feeds lines read from reader into the returned channel.
// The channel has capacity one so typing stays responsive while a broadcast
// is in flight, and is closed on EOF or read error so the session ends
// cleanly when input runs out.
func StartLineReader(reader *bufio.Reader) <-chan string {
	lines := make(chan string, 1)
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line != "" {
				lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}
