// Package console prints lin's user-facing output: icon-prefixed log lines
// with inline markdown, sections, progress bars and simple prompts.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Icon prefixes a log line.
type Icon string

const (
	Info    Icon = "ℹ"
	Success Icon = "✓"
	Warning Icon = "⚠"
	Error   Icon = "✗"
	Note    Icon = "›"
	Result  Icon = "→"
)

var iconColor = map[Icon]*color.Color{
	Info:    color.New(color.FgBlue),
	Success: color.New(color.FgGreen),
	Warning: color.New(color.FgYellow),
	Error:   color.New(color.FgRed),
	Note:    color.New(color.Faint),
	Result:  color.New(color.FgCyan),
}

var (
	bold = color.New(color.Bold).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

var (
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codeRe = regexp.MustCompile("`([^`]+)`")
	dimRe  = regexp.MustCompile(`\*([^*]+)\*`)
)

// Format renders inline markdown: **bold**, `code` in cyan, *dim*.
func Format(s string) string {
	s = boldRe.ReplaceAllStringFunc(s, func(m string) string {
		return bold(boldRe.FindStringSubmatch(m)[1])
	})
	s = codeRe.ReplaceAllStringFunc(s, func(m string) string {
		return cyan(codeRe.FindStringSubmatch(m)[1])
	})
	s = dimRe.ReplaceAllStringFunc(s, func(m string) string {
		return dim(dimRe.FindStringSubmatch(m)[1])
	})
	return s
}

// Console writes log lines to Out, progress to Err and reads answers from In.
type Console struct {
	Out io.Writer
	Err io.Writer
	in  *bufio.Reader
}

// New returns a console on the given streams.
func New(out, errOut io.Writer, in io.Reader) *Console {
	return &Console{Out: out, Err: errOut, in: bufio.NewReader(in)}
}

// Std returns a console on the process's standard streams.
func Std() *Console {
	return New(os.Stdout, os.Stderr, os.Stdin)
}

// Discard returns a console that prints nothing and answers every prompt
// with its default.
func Discard() *Console {
	return New(io.Discard, io.Discard, strings.NewReader(""))
}

// Log prints "ICON message" with inline markdown applied.
func (c *Console) Log(icon Icon, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if icon == "" {
		fmt.Fprintln(c.Out, Format(msg))
		return
	}
	fmt.Fprintf(c.Out, "%s %s\n", iconColor[icon].Sprint(string(icon)), Format(msg))
}

// Print writes a line without an icon.
func (c *Console) Print(format string, args ...any) {
	c.Log("", format, args...)
}

// Section prints a bold title, runs fn and ends with an empty line.
func (c *Console) Section(title string, fn func() error) error {
	fmt.Fprintln(c.Out, bold(title))
	err := fn()
	fmt.Fprintln(c.Out)
	return err
}

// Progress returns a bar of total steps written to Err.
func (c *Console) Progress(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.Err),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

// Confirm asks a yes/no question. An empty answer or end of input yields def.
func (c *Console) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(c.Out, "%s %s %s ", color.New(color.FgCyan).Sprint("?"), Format(question), dim("("+hint+")"))
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Text asks for a line of input. An empty answer yields def.
func (c *Console) Text(question, def string) (string, error) {
	prompt := Format(question)
	if def != "" {
		prompt += " " + dim("("+def+")")
	}
	fmt.Fprintf(c.Out, "%s %s ", color.New(color.FgCyan).Sprint("?"), prompt)
	answer, err := c.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
