// validate.go - Pre-upload file checks
package uploader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFileSize is the upload ceiling. Files at exactly this size pass.
const MaxFileSize = 5 * 1024 * 1024

// ValidationError is a pre-upload rejection with a user-facing reason. No
// network call is made when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Characters safe for downstream object storage keys.
var safeFileName = regexp.MustCompile(`^[A-Za-z0-9 ._()\-]+$`)

// ValidateFile rejects files that must not be uploaded. Both the MIME type
// and the extension have to say PDF; either one alone is not trusted.
func ValidateFile(name string, size int64, mimeType string) error {
	if size == 0 {
		return &ValidationError{Reason: "File is empty. Please choose a non-empty PDF document."}
	}
	if size > MaxFileSize {
		return &ValidationError{Reason: fmt.Sprintf("File exceeds the %d MB limit. Please upload a smaller PDF.", MaxFileSize/(1024*1024))}
	}
	if !strings.HasPrefix(mimeType, "application/pdf") {
		return &ValidationError{Reason: "Only PDF files are supported. The selected file is not a PDF."}
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return &ValidationError{Reason: "Only PDF files are supported. The file name must end in .pdf."}
	}
	if name == "." || name == ".." || !safeFileName.MatchString(name) {
		return &ValidationError{Reason: "The file name contains unsupported characters. Please rename the file and try again."}
	}
	return nil
}
