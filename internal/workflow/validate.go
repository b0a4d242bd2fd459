// Package workflow models the client-side take-off flow: file acceptance
// rules and the company/jobsite selection state machine.
package workflow

import (
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// MaxFileSize is the upload cap for construction drawings.
const MaxFileSize = 10 * 1024 * 1024

// PDFMimeType is the only accepted upload MIME type.
const PDFMimeType = "application/pdf"

// ValidateFile accepts a drawing only when it is a PDF of at most 10 MiB.
// Deterministic, no side effects; the MIME check runs before the size check.
func ValidateFile(size int64, mimeType string) error {
	if mimeType != PDFMimeType {
		return appErrors.Clone(appErrors.ErrNotPDF, "Please select a PDF file only")
	}
	if size > MaxFileSize {
		return appErrors.Clone(appErrors.ErrFileTooLarge, "File size must be less than 10MB")
	}
	return nil
}
