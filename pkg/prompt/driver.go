package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question is a free-text prompt. Validate, when set, keeps the prompt open
// until it returns nil.
type Question struct {
	Message  string
	Default  string
	Help     string
	Validate func(string) error
}

// Confirmation is a yes/no prompt.
type Confirmation struct {
	Message string
	Default bool
}

// PromptDriver is the terminal as the order flow sees it.
type PromptDriver interface {
	Ask(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, c Confirmation) (bool, error)
	Say(ctx context.Context, msg string) error
}

// SurveyDriver prompts through survey on the given terminal streams.
type SurveyDriver struct {
	in     terminal.FileReader
	out    terminal.FileWriter
	errOut *os.File
}

// NewSurveyDriver uses the process stdio.
func NewSurveyDriver() *SurveyDriver {
	return NewSurveyDriverWithStdio(os.Stdin, os.Stdout, os.Stderr)
}

// NewSurveyDriverWithStdio prompts on in/out and reports survey's own errors on
// errOut.
func NewSurveyDriverWithStdio(in terminal.FileReader, out terminal.FileWriter, errOut *os.File) *SurveyDriver {
	return &SurveyDriver{in: in, out: out, errOut: errOut}
}

func (d *SurveyDriver) Ask(ctx context.Context, q Question) (string, error) {
	var answer string
	opts := []survey.AskOpt{}
	if q.Validate != nil {
		check := q.Validate
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return check(text)
		}))
	}
	err := d.ask(ctx, &survey.Input{Message: q.Message, Default: q.Default, Help: q.Help}, &answer, opts...)
	return answer, err
}

func (d *SurveyDriver) Confirm(ctx context.Context, c Confirmation) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: c.Message, Default: c.Default}, &answer)
	return answer, err
}

func (d *SurveyDriver) Say(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func (d *SurveyDriver) ask(ctx context.Context, p survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts = append(opts, survey.WithStdio(d.in, d.out, d.errOut))
	if err := survey.AskOne(p, answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}
