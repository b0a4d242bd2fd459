package workflow

import (
	"strings"

	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// SelectionState names the phases of the company/jobsite picker.
type SelectionState string

const (
	StateIdle            SelectionState = "idle"
	StateCompanySelected SelectionState = "company-selected"
	StateConfirmed       SelectionState = "confirmed"
	StateEditing         SelectionState = "editing"
)

// Selection tracks the two-stage company → jobsite choice. The jobsite is
// only selectable once a company is set, and changing the company resets it.
// Confirmed gates the upload action.
type Selection struct {
	state   SelectionState
	company string
	jobsite string
}

// NewSelection starts an empty, unconfirmed selection.
func NewSelection() *Selection {
	return &Selection{state: StateIdle}
}

func (s *Selection) State() SelectionState { return s.state }
func (s *Selection) Company() string       { return s.company }
func (s *Selection) Jobsite() string       { return s.jobsite }

// Confirmed reports whether the selection has been locked in.
func (s *Selection) Confirmed() bool { return s.state == StateConfirmed }

// SelectCompany records a company and clears any previous jobsite choice.
func (s *Selection) SelectCompany(company string) error {
	if s.state == StateConfirmed {
		return appErrors.Clone(appErrors.ErrValidation, "selection is confirmed; edit first")
	}
	company = strings.TrimSpace(company)
	if company == "" {
		return appErrors.Clone(appErrors.ErrValidation, "company is required")
	}
	if company != s.company {
		s.jobsite = ""
	}
	s.company = company
	s.state = StateCompanySelected
	return nil
}

// SelectJobsite records a jobsite. Impossible until a company is chosen.
func (s *Selection) SelectJobsite(jobsite string) error {
	if s.state == StateConfirmed {
		return appErrors.Clone(appErrors.ErrValidation, "selection is confirmed; edit first")
	}
	if s.company == "" {
		return appErrors.Clone(appErrors.ErrValidation, "select a company first")
	}
	jobsite = strings.TrimSpace(jobsite)
	if jobsite == "" {
		return appErrors.Clone(appErrors.ErrValidation, "jobsite is required")
	}
	s.jobsite = jobsite
	return nil
}

// Confirm locks the selection. Reachable only with both fields non-empty.
func (s *Selection) Confirm() error {
	if s.company == "" || s.jobsite == "" {
		return appErrors.Clone(appErrors.ErrValidation, "company and jobsite are required")
	}
	s.state = StateConfirmed
	return nil
}

// Edit reopens a confirmed selection without losing the prior choices.
func (s *Selection) Edit() {
	if s.state == StateConfirmed {
		s.state = StateEditing
	}
}
