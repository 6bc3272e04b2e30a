package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-widgetlist/pkg/form"
)

// Renderer walks a form session in the terminal: class selector first when
// the session offers one, then one prompt per input. Values land in the
// session through its setters; submitting stays with the caller.
type Renderer struct {
	driver   PromptDriver
	theme    Theme
	pageSize int
}

// New constructs a renderer backed by the survey driver unless overridden.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Fill prompts for every input of s.
func (r *Renderer) Fill(ctx context.Context, s *form.Session) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if s == nil {
		return errors.New("tui: session is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.HasClassSelector() {
		if err := r.promptClass(ctx, s); err != nil {
			return err
		}
	}

	for _, in := range s.Inputs() {
		var err error
		switch field := in.(type) {
		case *form.TextField:
			err = r.promptText(ctx, field)
		case *form.TextareaField:
			err = r.promptTextarea(ctx, field)
		case *form.SelectField:
			err = r.promptSelect(ctx, field)
		default:
			err = fmt.Errorf("tui: unsupported input %T", in)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Confirm asks a yes/no question.
func (r *Renderer) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
}

// Info prints a message with the theme's info prefix.
func (r *Renderer) Info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

// Error prints a message with the theme's error prefix.
func (r *Renderer) Error(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) promptClass(ctx context.Context, s *form.Session) error {
	classes := s.Classes()
	current := indexOf(classes, s.Class())
	if current < 0 {
		current = 0
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Widget class",
		Options:      classes,
		DefaultIndex: current,
		PageSize:     r.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(classes) {
		return fmt.Errorf("tui: class selection %d out of range", idx)
	}
	return s.SelectClass(classes[idx])
}

func (r *Renderer) promptText(ctx context.Context, field *form.TextField) error {
	value, err := r.driver.Input(ctx, InputConfig{
		Message: field.Label(),
		Default: field.Value(),
		Help:    helpFor(field.Props()),
	})
	if err != nil {
		return err
	}
	return field.Set(value)
}

func (r *Renderer) promptTextarea(ctx context.Context, field *form.TextareaField) error {
	value, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: field.Label(),
		Default: field.Value(),
		Help:    helpFor(field.Props()),
	})
	if err != nil {
		return err
	}
	return field.Set(value)
}

func (r *Renderer) promptSelect(ctx context.Context, field *form.SelectField) error {
	options := field.Options()
	if len(options) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOptions, field.Key())
	}
	labels := make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, opt.Label)
	}
	selectedIdx := selectedIndices(options, field.Selected())

	if field.Multi() {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label(),
			Options:  labels,
			Defaults: selectedIdx,
			Help:     helpFor(field.Props()),
			PageSize: r.pageSize,
		})
		if err != nil {
			return err
		}
		values := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				values = append(values, options[idx].Value)
			}
		}
		return field.Select(values...)
	}

	def := 0
	if len(selectedIdx) > 0 {
		def = selectedIdx[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.Label(),
		Options:      labels,
		DefaultIndex: def,
		Help:         helpFor(field.Props()),
		PageSize:     r.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return field.Select()
	}
	return field.Select(options[idx].Value)
}

func selectedIndices(options, selected []form.Option) []int {
	var out []int
	for _, sel := range selected {
		for i, opt := range options {
			if opt.Key == sel.Key {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func helpFor(props map[string]any) string {
	if props == nil {
		return ""
	}
	if help, ok := props["help"].(string); ok {
		return help
	}
	if placeholder, ok := props["placeholder"].(string); ok {
		return placeholder
	}
	return ""
}
