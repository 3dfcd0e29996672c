// Package prompt implements the line-oriented prompting used by the
// interactive commands. Reading and writing go through injected streams so
// command flows are testable without a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter asks questions on a line-oriented stream pair.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// New creates a prompter over the given streams.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), writer: w}
}

// Printf writes formatted output to the prompter's stream.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.writer, format, args...)
}

// Ask prints the label and returns the trimmed input line. EOF returns "".
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.writer, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// AskDefault asks with a default shown in brackets, returned on empty input.
func (p *Prompter) AskDefault(label, def string) string {
	answer := p.Ask(fmt.Sprintf("%s [%s]", label, def))
	if answer == "" {
		return def
	}
	return answer
}

// AskRequired repeats the question until the answer is non-empty or the input
// stream ends.
func (p *Prompter) AskRequired(label string) string {
	for {
		answer := p.Ask(label)
		if answer != "" {
			return answer
		}
		if _, err := p.reader.Peek(1); err != nil {
			return ""
		}
		fmt.Fprintln(p.writer, "A value is required.")
	}
}

// AskYesNo asks a y/n question; empty input takes the default.
func (p *Prompter) AskYesNo(label string, def bool) bool {
	suffix := "y/N"
	if def {
		suffix = "Y/n"
	}
	answer := strings.ToLower(p.Ask(fmt.Sprintf("%s [%s]", label, suffix)))
	switch answer {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return def
}

// AskChoice asks for a 1-based choice among count options and returns the
// 0-based index, or -1 when the input is not a valid choice.
func (p *Prompter) AskChoice(label string, count int) int {
	answer := p.Ask(fmt.Sprintf("%s [1-%d]", label, count))
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > count {
		return -1
	}
	return n - 1
}

// AskFloat asks for an optional number; empty input returns nil.
func (p *Prompter) AskFloat(label string) (*float64, error) {
	answer := p.Ask(label)
	if answer == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %s", answer)
	}
	return &value, nil
}

// AskList asks for a comma-separated list and returns the trimmed non-empty
// items.
func (p *Prompter) AskList(label string) []string {
	answer := p.Ask(label)
	if answer == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(answer, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
