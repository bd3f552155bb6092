// Package registry defines the closed set of lesson content types and their
// slot shapes, loaded from an embedded YAML file.
package registry

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// SlotKind determines a content type's merge policy and wire shape.
type SlotKind string

const (
	// KindSingle slots hold one file; a newer upload replaces it.
	KindSingle SlotKind = "single"
	// KindList slots accumulate files in upload order.
	KindList SlotKind = "list"
	// KindText slots hold freeform or generated text; not upload-able.
	KindText SlotKind = "text"
)

// ContentType describes one slot in the lesson content map.
type ContentType struct {
	Name         string   `yaml:"name"`
	Kind         SlotKind `yaml:"kind"`
	Dir          string   `yaml:"dir"`
	Aliases      []string `yaml:"aliases"`
	MIMETypes    []string `yaml:"mime_types"`
	MIMEPrefixes []string `yaml:"mime_prefixes"`
}

// Uploadable reports whether files can be attached to this content type.
func (ct *ContentType) Uploadable() bool {
	return ct.Kind == KindSingle || ct.Kind == KindList
}

// AllowsMIME checks the upload allowlist for this content type.
func (ct *ContentType) AllowsMIME(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	// strip parameters like "; charset=binary"
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	for _, allowed := range ct.MIMETypes {
		if mimeType == allowed {
			return true
		}
	}
	for _, prefix := range ct.MIMEPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

// Registry holds the closed content-type set. It is immutable after load.
type Registry struct {
	ordered []ContentType
	byName  map[string]*ContentType
	aliases map[string]string
}

type registryFile struct {
	ContentTypes []ContentType `yaml:"content_types"`
}

// NewRegistry loads the embedded content-type definitions.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/content_types.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read content type config: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content type config: %w", err)
	}
	if len(file.ContentTypes) == 0 {
		return nil, fmt.Errorf("content type config is empty")
	}

	r := &Registry{
		ordered: file.ContentTypes,
		byName:  make(map[string]*ContentType, len(file.ContentTypes)),
		aliases: make(map[string]string),
	}
	for i := range r.ordered {
		ct := &r.ordered[i]
		if ct.Uploadable() && ct.Dir == "" {
			return nil, fmt.Errorf("content type %q is uploadable but has no dir", ct.Name)
		}
		r.byName[ct.Name] = ct
		for _, alias := range ct.Aliases {
			r.aliases[alias] = ct.Name
		}
	}

	return r, nil
}

// Normalize maps aliases to canonical content-type names. Unrecognized names
// pass through unchanged; callers that require a known type use Lookup.
func (r *Registry) Normalize(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the content type for a canonical name or alias.
func (r *Registry) Lookup(name string) (*ContentType, bool) {
	ct, ok := r.byName[r.Normalize(name)]
	return ct, ok
}

// Names returns the canonical content-type names in definition order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i := range r.ordered {
		names[i] = r.ordered[i].Name
	}
	return names
}
