package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateDocumentName checks the uploaded file against the supported
// document types before any extraction work is spent on it.
func ValidateDocumentName(name string) error {
	allowed := map[string]bool{
		".pdf": true,
		".txt": true,
		".md":  true,
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowed[ext] {
		return fmt.Errorf("unsupported document type: %s (allowed: pdf, txt, md)", ext)
	}
	return nil
}

var modelIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:/-]+$`)

// ValidateModelID rejects model identifiers with shell or path surprises.
// An empty value is fine; the configured default applies.
func ValidateModelID(model string) error {
	if model == "" {
		return nil
	}
	if len(model) > 128 || !modelIDPattern.MatchString(model) {
		return fmt.Errorf("invalid model id: %s", model)
	}
	return nil
}

var regionPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateRegion checks the region parameter carried with generation requests.
func ValidateRegion(region string) error {
	if region == "" {
		return nil
	}
	if len(region) > 32 || !regionPattern.MatchString(region) {
		return fmt.Errorf("invalid region: %s", region)
	}
	return nil
}
