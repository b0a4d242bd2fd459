package models

import (
	"fmt"
	"strings"
)

// Company is a directory entry a take-off can be filed under.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Jobsite is a site belonging to a company. Upstream rows are inconsistent:
// some carry a jobsite name, some only a code, some neither.
type Jobsite struct {
	ID      string `json:"id"`
	Company string `json:"company"`
	Jobsite string `json:"jobsite,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Label resolves the human label for a jobsite, preferring the jobsite name,
// then the code, then a synthesized fallback.
func (j Jobsite) Label() string {
	if s := strings.TrimSpace(j.Jobsite); s != "" {
		return s
	}
	if s := strings.TrimSpace(j.Code); s != "" {
		return s
	}
	return fmt.Sprintf("Jobsite %s", j.ID)
}
