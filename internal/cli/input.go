package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input
// was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password from the
// user's terminal without echo. A newline is printed after the read to
// keep the UI tidy.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword()
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetPhoneNo prompts until the operator enters a parseable phone number.
// Only EOF or a write failure ends the loop early.
func GetPhoneNo(reader *bufio.Reader, prompt string, w io.Writer) (uint64, error) {
	for {
		line, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return 0, err
		}
		phone, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			fmt.Fprintln(w, "Please enter digits only.")
			continue
		}
		return phone, nil
	}
}

// Select prints a numbered menu and reads the operator's pick, re-prompting
// on anything that is not a valid option number. It returns the selected
// option's index.
func Select(reader *bufio.Reader, prompt string, options []string, w io.Writer) (int, error) {
	for {
		fmt.Fprintln(w, prompt)
		for i, opt := range options {
			fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
		}

		line, err := GetSimpleText(reader, "", w)
		if err != nil {
			return 0, err
		}

		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(options) {
			fmt.Fprintf(w, "Please enter a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, nil
	}
}
