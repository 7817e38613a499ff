package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"tracksift/internal/services"
)

// ErrCancelled is returned when the user interrupts a prompt.
var ErrCancelled = services.ErrCancelled

// Option is one labelled entry of a multi-select list.
type Option struct {
	Label    string
	Selected bool
}

// Chooser presents choices to the user.
type Chooser interface {
	Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error)
	MultiSelect(ctx context.Context, message string, options []Option) ([]int, error)
	Confirm(ctx context.Context, message string, defaultValue bool) (bool, error)
}

// Survey implements Chooser on an interactive terminal.
type Survey struct {
	pageSize int
	askOpts  []survey.AskOpt
}

// SurveyOption configures a Survey chooser.
type SurveyOption func(*Survey)

// WithPageSize sets how many entries a list shows before scrolling.
func WithPageSize(size int) SurveyOption {
	return func(s *Survey) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithStdio redirects prompt input and output.
func WithStdio(in terminal.FileReader, out terminal.FileWriter, errOut terminal.FileWriter) SurveyOption {
	return func(s *Survey) {
		s.askOpts = append(s.askOpts, survey.WithStdio(in, out, errOut))
	}
}

// NewSurvey returns a terminal chooser.
func NewSurvey(opts ...SurveyOption) *Survey {
	s := &Survey{pageSize: 15}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select asks for exactly one option and returns its index.
func (s *Survey) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return -1, services.Wrap(services.ErrValidation, "prompt", "select", "no options to choose from", nil)
	}
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	q := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: s.pageSize,
	}
	if defaultIndex >= 0 && defaultIndex < len(options) {
		q.Default = defaultIndex
	}
	var answer int
	if err := survey.AskOne(q, &answer, s.askOpts...); err != nil {
		return -1, translate(err)
	}
	return answer, nil
}

// MultiSelect returns the indices of the checked options in list order.
func (s *Survey) MultiSelect(ctx context.Context, message string, options []Option) ([]int, error) {
	if len(options) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	labels := make([]string, len(options))
	defaults := make([]int, 0, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
		if opt.Selected {
			defaults = append(defaults, i)
		}
	}
	q := &survey.MultiSelect{
		Message:  message,
		Options:  labels,
		Default:  defaults,
		PageSize: s.pageSize,
	}
	var answer []int
	if err := survey.AskOne(q, &answer, s.askOpts...); err != nil {
		return nil, translate(err)
	}
	return answer, nil
}

// Confirm asks a yes/no question.
func (s *Survey) Confirm(ctx context.Context, message string, defaultValue bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	q := &survey.Confirm{Message: message, Default: defaultValue}
	var answer bool
	if err := survey.AskOne(q, &answer, s.askOpts...); err != nil {
		return false, translate(err)
	}
	return answer, nil
}

func translate(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt: %w", err)
}
