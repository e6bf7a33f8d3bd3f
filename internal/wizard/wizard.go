// Package wizard drives the multi-step application form. It holds the
// answers collected so far, validates one step at a time and hands the
// finished application to a Submitter.
package wizard

import (
	"context"
	"errors"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/ThanimaVITC/thanima-connect/internal/department"
)

// State is the wizard position: one of the five steps or a terminal state.
type State int

const (
	StepIdentity State = iota
	StepExperience
	StepPreferences
	StepEssays
	StepBonus
	Submitted
	AlreadyApplied
)

// StepCount is the number of input steps.
const StepCount = int(StepBonus) + 1

var stepFields = [StepCount][]string{
	{application.FieldName, application.FieldRegNo, application.FieldBranchAndYear, application.FieldEmail, application.FieldPhone},
	{application.FieldPreviousExperience},
	{application.FieldPrimaryPreference, application.FieldSecondaryPreference, application.FieldTertiaryPreference},
	{application.FieldDepartmentJustification, application.FieldSkillsAndExperience, application.FieldResume},
	{application.FieldBonusEssay1, application.FieldBonusEssay2},
}

var stepTitles = [StepCount]string{
	"Personal details",
	"Previous experience",
	"Department preferences",
	"About you",
	"Bonus questions",
}

func (s State) String() string {
	switch {
	case s >= 0 && int(s) < StepCount:
		return stepTitles[s]
	case s == Submitted:
		return "Submitted"
	case s == AlreadyApplied:
		return "Already applied"
	}
	return "unknown"
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool { return s == Submitted || s == AlreadyApplied }

// Resume is a local file chosen for upload.
type Resume struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Submitter sends a complete application. An error that also implements
// FieldErrors() map[string]string reports server-side rejections per field.
type Submitter interface {
	Submit(ctx context.Context, fields map[string]string, resume *Resume) error
}

// Flags persists whether this client already applied.
type Flags interface {
	Applied() bool
	MarkApplied() error
}

type fieldErrorer interface {
	FieldErrors() map[string]string
}

// ErrTerminal is returned by Next once the wizard has finished.
var ErrTerminal = errors.New("application already submitted")

// Wizard is not safe for concurrent use.
type Wizard struct {
	validator *application.Validator
	submitter Submitter
	flags     Flags

	state  State
	values map[string]string
	resume *Resume

	fieldErrs map[string]string
	err       error
}

// New returns a wizard on the first step, or in AlreadyApplied when flags
// records an earlier submission.
func New(v *application.Validator, s Submitter, flags Flags) *Wizard {
	w := &Wizard{validator: v, submitter: s, flags: flags, values: map[string]string{}}
	if flags != nil && flags.Applied() {
		w.state = AlreadyApplied
	}
	return w
}

func (w *Wizard) State() State { return w.state }

// Fields lists the inputs of the current step; none in a terminal state.
func (w *Wizard) Fields() []string {
	if w.state.Terminal() {
		return nil
	}
	return append([]string(nil), stepFields[w.state]...)
}

// Progress is the 1-based step number out of StepCount.
func (w *Wizard) Progress() (int, int) {
	if w.state.Terminal() {
		return StepCount, StepCount
	}
	return int(w.state) + 1, StepCount
}

// Set records an answer. A blank value clears it.
func (w *Wizard) Set(field, value string) {
	if value == "" {
		delete(w.values, field)
		return
	}
	w.values[field] = value
}

func (w *Wizard) Value(field string) string { return w.values[field] }

// SetResume selects the file to upload; nil removes it.
func (w *Wizard) SetResume(r *Resume) { w.resume = r }

func (w *Wizard) Resume() *Resume { return w.resume }

// FieldErrors are the messages from the last Next, keyed by field.
func (w *Wizard) FieldErrors() map[string]string { return w.fieldErrs }

// Err is the submission error from the last Next on the final step.
func (w *Wizard) Err() error { return w.err }

// Next validates the current step and advances. On the last step it checks
// the whole form and submits; success moves to Submitted and sets the local
// flag. It reports whether the wizard moved forward.
func (w *Wizard) Next(ctx context.Context) bool {
	w.fieldErrs, w.err = nil, nil
	if w.state.Terminal() {
		w.err = ErrTerminal
		return false
	}

	in := w.input()
	fields := stepFields[w.state]
	if w.state == StepBonus {
		fields = allFields()
	}
	if errs := w.validator.ValidateFields(in, fields...); len(errs) > 0 {
		w.fieldErrs = errs
		return false
	}
	if w.state < StepBonus {
		w.state++
		return true
	}

	if err := w.submitter.Submit(ctx, w.values, w.resume); err != nil {
		w.err = err
		var fe fieldErrorer
		if errors.As(err, &fe) {
			w.fieldErrs = fe.FieldErrors()
		}
		return false
	}
	w.state = Submitted
	if w.flags != nil {
		if err := w.flags.MarkApplied(); err != nil {
			w.err = err
		}
	}
	return true
}

// Back moves to the previous step without validating. It does nothing on
// the first step or in a terminal state.
func (w *Wizard) Back() {
	w.fieldErrs, w.err = nil, nil
	if w.state.Terminal() || w.state == StepIdentity {
		return
	}
	w.state--
}

// Options lists the departments selectable for a preference field. A
// department chosen for an earlier preference is not offered again.
func (w *Wizard) Options(field string) []department.Department {
	var taken []string
	switch field {
	case application.FieldPrimaryPreference:
	case application.FieldSecondaryPreference:
		taken = []string{w.values[application.FieldPrimaryPreference]}
	case application.FieldTertiaryPreference:
		taken = []string{w.values[application.FieldPrimaryPreference], w.values[application.FieldSecondaryPreference]}
	default:
		return nil
	}
	var out []department.Department
	for _, d := range department.All() {
		if !contains(taken, string(d)) {
			out = append(out, d)
		}
	}
	return out
}

func (w *Wizard) input() application.Input {
	fields := make(map[string]any, len(w.values))
	for k, v := range w.values {
		fields[k] = v
	}
	in := application.Normalize(fields, nil)
	if w.resume != nil {
		in.Resume = &application.Attachment{
			Filename:    w.resume.Name,
			ContentType: w.resume.ContentType,
			Size:        w.resume.Size,
		}
	}
	return in
}

func allFields() []string {
	var out []string
	for _, f := range stepFields {
		out = append(out, f...)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
