// Package archive stores downloaded register documents on disk. Each company
// gets its own directory named after a filesystem-safe form of its name; the
// raw PDF and the extracted markdown are stored side by side per document
// type.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resolver/pkg/domain"
)

// maxNameLen bounds the directory name derived from a company name. Register
// names can be sentence-length; the overflow adds nothing to uniqueness worth
// unreadable paths.
const maxNameLen = 30

// Archive writes documents below a fixed root directory.
type Archive struct {
	root string
}

// New returns an Archive rooted at dir. The directory is created lazily on
// the first save.
func New(dir string) *Archive {
	return &Archive{root: dir}
}

// SaveDocument stores the raw PDF and its markdown rendition for a company.
// It returns the PDF path relative to the archive root.
func (a *Archive) SaveDocument(companyName string, docType domain.DocumentType, pdfData []byte, markdown string) (string, error) {
	dir := SafeName(companyName)
	if dir == "" {
		dir = "unnamed"
	}
	if err := os.MkdirAll(filepath.Join(a.root, dir), 0o755); err != nil {
		return "", fmt.Errorf("could not create archive directory: %w", err)
	}

	pdfPath := filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", dir, docType))
	if err := os.WriteFile(filepath.Join(a.root, pdfPath), pdfData, 0o644); err != nil {
		return "", fmt.Errorf("could not write pdf: %w", err)
	}

	mdPath := filepath.Join(a.root, dir, fmt.Sprintf("%s_%s.md", dir, docType))
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("could not write markdown: %w", err)
	}

	return pdfPath, nil
}

// SafeName converts a company name into a filesystem-safe slug: letters,
// digits, dashes and underscores survive, spaces become underscores,
// everything else is dropped, and the result is truncated.
func SafeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			sb.WriteByte('_')
		case r == '-' || r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		}
	}

	s := strings.Trim(sb.String(), "_")
	if len(s) > maxNameLen {
		s = strings.Trim(s[:maxNameLen], "_")
	}

	return s
}
