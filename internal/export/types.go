// Package export renders a project into downloadable document bytes. The
// document model is a pure projection of the project; serialization is
// delegated to pandoc (docx, pptx) and headless Chrome (pdf).
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatPDF  Format = "pdf"
)

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrOfficeDependencyMissing indicates pandoc is not installed.
	ErrOfficeDependencyMissing = errors.New("export office dependency missing")
	// ErrPDFDependencyMissing indicates chromium is not installed.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimePDF  = "application/pdf"
)
