package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer gates destructive cleanup. Returning false skips the clean step.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Always answers every question the same way; it backs -clean yes|no.
type Always bool

func (a Always) Confirm(context.Context, string) (bool, error) { return bool(a), nil }

// Prompter asks on an interactive terminal and accepts "yes" or "y".
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s (yes/no): ", question)

	answer, err := p.in.ReadString('\n')
	// EOF without an answer counts as no
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

// ParseCleanMode maps the -clean flag to a Confirmer.
func ParseCleanMode(mode string, in io.Reader, out io.Writer) (Confirmer, error) {
	switch strings.ToLower(mode) {
	case "ask", "":
		return NewPrompter(in, out), nil
	case "yes", "y", "true":
		return Always(true), nil
	case "no", "n", "false":
		return Always(false), nil
	default:
		return nil, fmt.Errorf("invalid clean mode %q (want ask, yes or no)", mode)
	}
}
