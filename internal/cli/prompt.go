package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eagraf/habitat-store/core/state/catalog"
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/orchestrator"
)

// terminalPrompter asks questions on out and reads numbered answers from in.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

var _ orchestrator.Prompter = &terminalPrompter{}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) ChooseVersion(ctx context.Context, app *catalog.App, current, latest string) (string, error) {
	i, err := p.choose(fmt.Sprintf("%s %s is installed.", app.Name, current), []string{
		"Keep " + current,
		"Update to " + latest,
	})
	if err != nil {
		return "", err
	}
	if i == 0 {
		return current, nil
	}
	return latest, nil
}

func (p *terminalPrompter) ChooseVariant(ctx context.Context, app *catalog.App, version *catalog.Version, variants []library.Variant) (library.Variant, error) {
	options := make([]string, 0, len(variants))
	for _, v := range variants {
		options = append(options, describeVariant(v))
	}
	i, err := p.choose(fmt.Sprintf("%s %s can be installed from:", app.Name, version.Number), options)
	if err != nil {
		return library.Variant{}, err
	}
	return variants[i], nil
}

// choose prints the numbered options and reads until it gets a valid answer.
func (p *terminalPrompter) choose(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}
	for {
		fmt.Fprintf(p.out, "Choose [1-%d]: ", len(options))
		line, err := p.in.ReadString('\n')
		if answer, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && answer >= 1 && answer <= len(options) {
			return answer - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("no choice made: %w", err)
		}
		fmt.Fprintln(p.out, "Please enter one of the numbers above.")
	}
}

func describeVariant(v library.Variant) string {
	switch v.Kind {
	case library.VariantKindBinary:
		return "download " + v.DownloadURL
	default:
		return fmt.Sprintf("%s %s", v.Kind, v.URL)
	}
}
