// Package media validates files uploaded alongside chat messages before
// they count against a session. Only financial-document formats are
// accepted.
package media

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fenny-ai/fenny/pkg/fenny/config"
)

// AllowedMimeTypes lists permitted document MIME types.
var AllowedMimeTypes = []string{
	"application/pdf",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
}

// AllowedExtensions lists permitted file extensions.
var AllowedExtensions = []string{".pdf", ".xls", ".xlsx", ".txt"}

// Validator checks uploads against the configured limits.
type Validator struct {
	maxFileSize int64
	maxFiles    int
}

// NewValidator creates a validator from the upload config.
func NewValidator(cfg config.UploadConfig) *Validator {
	return &Validator{
		maxFileSize: cfg.MaxFileSize,
		maxFiles:    cfg.MaxFilesPerConversation,
	}
}

// MaxFiles returns the per-conversation upload cap.
func (v *Validator) MaxFiles() int {
	return v.maxFiles
}

// CheckCount verifies that adding newFiles to a session already holding
// current uploads stays within the cap. This is the external policy check
// the session entity itself does not perform.
func (v *Validator) CheckCount(current, newFiles int) error {
	if current+newFiles > v.maxFiles {
		return fmt.Errorf("cannot upload more than %d files in a conversation", v.maxFiles)
	}
	return nil
}

// CheckFile validates one upload by size and type. The MIME type may come
// from the multipart header; when it is empty or generic the first bytes
// of content are sniffed instead.
func (v *Validator) CheckFile(filename string, size int64, mimeType string, head []byte) error {
	if v.maxFileSize > 0 && size > v.maxFileSize {
		return fmt.Errorf("file %s exceeds size limit of %dMB",
			filename, v.maxFileSize/1024/1024)
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = DetectMimeType(head, filename)
	}
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])

	ext := strings.ToLower(filepath.Ext(filename))
	if !isAllowedMime(mimeType) && !isAllowedExtension(ext) {
		return fmt.Errorf("file type %s not allowed. Only %s files are permitted.",
			displayExt(ext), strings.Join(AllowedExtensions, ", "))
	}
	return nil
}

func isAllowedMime(mimeType string) bool {
	for _, m := range AllowedMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DetectMimeType sniffs content with http.DetectContentType, falling back
// to extension heuristics for formats the sniffer reports as generic.
func DetectMimeType(head []byte, filename string) string {
	detected := "application/octet-stream"
	if len(head) > 0 {
		detected = http.DetectContentType(head)
	}

	if detected == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".pdf":
			return "application/pdf"
		case ".xls":
			return "application/vnd.ms-excel"
		case ".xlsx":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case ".txt":
			return "text/plain"
		}
	}
	return detected
}

func displayExt(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}
