package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coursecraft/internal/domain"
	"coursecraft/internal/registry"
)

// PublicPrefix is the URL prefix under which stored files are served.
const PublicPrefix = "/uploads"

// PathResolver maps (lessonID, contentType) to the canonical on-disk
// directory and public URL prefix for stored files.
type PathResolver struct {
	uploadRoot string
	registry   *registry.Registry
}

// NewPathResolver creates a resolver rooted at uploadRoot.
func NewPathResolver(uploadRoot string, reg *registry.Registry) *PathResolver {
	return &PathResolver{uploadRoot: uploadRoot, registry: reg}
}

// ResolveContentDir returns the directory for a lesson's content type,
// creating it if absent. Identifiers carrying traversal sequences are
// rejected before any path is formed.
func (p *PathResolver) ResolveContentDir(lessonID, contentType string) (string, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(contentType); err != nil {
		return "", err
	}

	dir := filepath.Join(p.uploadRoot, "lessons", lessonID, p.dirFor(contentType))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content directory for lesson %s: %w", lessonID, err)
	}
	return dir, nil
}

// ResolvePublicPath returns the site-relative path a stored file is served
// under. The result always begins with "/uploads/".
func (p *PathResolver) ResolvePublicPath(lessonID, contentType, filename string) (string, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(contentType); err != nil {
		return "", err
	}
	if err := ValidateIdentifier(filename); err != nil {
		return "", err
	}

	return PublicPrefix + "/lessons/" + lessonID + "/" + p.dirFor(contentType) + "/" + filename, nil
}

// LessonDir returns the lesson's upload directory root without creating it.
func (p *PathResolver) LessonDir(lessonID string) (string, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return "", err
	}
	return filepath.Join(p.uploadRoot, "lessons", lessonID), nil
}

// RemoveLessonDir deletes the lesson's whole upload tree. An absent tree is
// not an error.
func (p *PathResolver) RemoveLessonDir(lessonID string) error {
	dir, err := p.LessonDir(lessonID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// dirFor normalizes content-type aliases to the canonical directory name.
// Unrecognized types pass through unchanged; upload endpoints reject them
// upstream.
func (p *PathResolver) dirFor(contentType string) string {
	if ct, ok := p.registry.Lookup(contentType); ok && ct.Dir != "" {
		return ct.Dir
	}
	return p.registry.Normalize(contentType)
}

// ValidateIdentifier rejects path-traversal sequences and path separators in
// externally supplied identifiers (lesson IDs, content types, filenames).
func ValidateIdentifier(s string) error {
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("%w: identifier is required", domain.ErrValidation)
	case strings.Contains(s, ".."),
		strings.ContainsAny(s, `/\`),
		strings.HasPrefix(s, "."),
		filepath.IsAbs(s):
		return fmt.Errorf("%w: invalid identifier %q", domain.ErrValidation, s)
	}
	return nil
}
