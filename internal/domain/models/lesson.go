package models

import (
	"encoding/json"
	"math"
	"time"
)

// Content slot population methods.
const (
	MethodUpload = "upload"
	MethodAI     = "ai_generated"
	MethodManual = "manual"
)

// FileDescriptor is the metadata record for one stored file, independent of
// the file's bytes. Path is site-relative at rest ("/uploads/...") and is
// made absolute only on the response path by the URL rewriter.
type FileDescriptor struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// SingleFileContent backs slots that hold exactly one file (presentation,
// mindmap). A newer upload fully replaces the previous value.
type SingleFileContent struct {
	File FileDescriptor
	URL  string // serialized as "<type>_url"
}

// FileListContent backs slots that accumulate files (video, images).
// Uploads append in request order; count is derived from len(Files).
type FileListContent struct {
	Files []FileDescriptor
}

// TextContent backs the generative/text slots (text, code). Content (or Code
// for code slots) holds the current value; Generated preserves the raw AI
// output when the slot was populated by generation.
type TextContent struct {
	Content   string
	Code      string
	Generated string
	Language  string
}

// ContentSlot is a tagged union over the three slot shapes. Exactly one of
// Single, List, Text is non-nil for a populated slot.
type ContentSlot struct {
	Type   string
	Method string
	Single *SingleFileContent
	List   *FileListContent
	Text   *TextContent
}

// MarshalJSON emits the wire shape for the slot's variant. Single-file slots
// carry a "<type>_url" field named after the slot's content type.
func (s *ContentSlot) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   s.Type,
		"method": s.Method,
	}

	switch {
	case s.Single != nil:
		m["file"] = s.Single.File
		if s.Single.URL != "" {
			m[s.Type+"_url"] = s.Single.URL
		}
	case s.List != nil:
		files := s.List.Files
		if files == nil {
			files = []FileDescriptor{}
		}
		m["files"] = files
		m["count"] = len(files)
	case s.Text != nil:
		if s.Text.Content != "" {
			m["content"] = s.Text.Content
		}
		if s.Text.Code != "" {
			m["code"] = s.Text.Code
		}
		if s.Text.Generated != "" {
			m["generated"] = s.Text.Generated
		}
		if s.Text.Language != "" {
			m["language"] = s.Text.Language
		}
	}

	return json.Marshal(m)
}

// UnmarshalJSON reconstructs the variant from the wire shape. Unknown or
// partial shapes are tolerated: a slot with no recognizable payload keeps
// only its type and method, which read paths treat the same as empty fields.
func (s *ContentSlot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	getString := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		var out string
		if err := json.Unmarshal(v, &out); err != nil {
			return ""
		}
		return out
	}

	s.Type = getString("type")
	s.Method = getString("method")
	// accept the short alias some writers use
	if s.Method == "ai" {
		s.Method = MethodAI
	}

	if v, ok := raw["files"]; ok {
		var files []FileDescriptor
		if err := json.Unmarshal(v, &files); err != nil {
			return err
		}
		s.List = &FileListContent{Files: files}
		return nil
	}

	if v, ok := raw["file"]; ok {
		var fd FileDescriptor
		if err := json.Unmarshal(v, &fd); err != nil {
			return err
		}
		s.Single = &SingleFileContent{
			File: fd,
			URL:  getString(s.Type + "_url"),
		}
		return nil
	}

	if _, ok := raw["content"]; ok {
		s.Text = &TextContent{
			Content:   getString("content"),
			Generated: getString("generated"),
			Language:  getString("language"),
		}
		return nil
	}
	if _, ok := raw["code"]; ok {
		s.Text = &TextContent{
			Code:      getString("code"),
			Generated: getString("generated"),
			Language:  getString("language"),
		}
		return nil
	}

	return nil
}

// ContentMap maps content-type name to its slot. A nil value and an absent
// key both mean "slot empty".
type ContentMap map[string]*ContentSlot

// Metadata is derived from the content map and recomputed after every
// mutation. It is never trusted from caller input.
type Metadata struct {
	TotalContent     int `json:"totalContent"`
	CompletedContent int `json:"completedContent"`
	Progress         int `json:"progress"`
}

// Lesson is the per-lesson aggregate: named content slots plus derived
// metadata and an opaque caller-supplied template descriptor.
type Lesson struct {
	LessonID    string          `json:"lessonId"`
	LessonTitle string          `json:"lessonTitle"`
	CourseID    *string         `json:"courseId"`
	CourseTitle *string         `json:"courseTitle"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Content     ContentMap      `json:"content"`
	Template    json.RawMessage `json:"template,omitempty"`
	Metadata    Metadata        `json:"metadata"`
}

// LessonSummary is the list-view projection of a lesson.
type LessonSummary struct {
	LessonID    string    `json:"lessonId"`
	LessonTitle string    `json:"lessonTitle"`
	CourseID    *string   `json:"courseId"`
	CourseTitle *string   `json:"courseTitle"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Metadata    Metadata  `json:"metadata"`
}

// Summary returns the list-view projection.
func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{
		LessonID:    l.LessonID,
		LessonTitle: l.LessonTitle,
		CourseID:    l.CourseID,
		CourseTitle: l.CourseTitle,
		UpdatedAt:   l.UpdatedAt,
		Metadata:    l.Metadata,
	}
}

// Normalize seeds the content map so every known content type is present as
// an explicit key (nil when empty) and recomputes metadata. Loaded snapshots
// written under older conventions converge to this shape on read.
func (l *Lesson) Normalize(contentTypes []string) {
	if l.Content == nil {
		l.Content = make(ContentMap, len(contentTypes))
	}
	for _, name := range contentTypes {
		if _, ok := l.Content[name]; !ok {
			l.Content[name] = nil
		}
	}
	l.RecomputeMetadata()
}

// RecomputeMetadata derives totals and progress from the content map.
func (l *Lesson) RecomputeMetadata() {
	total := len(l.Content)
	completed := 0
	for _, slot := range l.Content {
		if slot != nil {
			completed++
		}
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(completed) / float64(total) * 100))
	}

	l.Metadata = Metadata{
		TotalContent:     total,
		CompletedContent: completed,
		Progress:         progress,
	}
}

// NewEmptyLesson builds the canonical empty-lesson template returned for
// unknown lesson IDs: all slots nil, all-zero progress, and a default
// template listing the content types in display order.
func NewEmptyLesson(lessonID string, contentTypes []string, now time.Time) *Lesson {
	template, _ := json.Marshal(contentTypes)

	l := &Lesson{
		LessonID:  lessonID,
		CreatedAt: now,
		UpdatedAt: now,
		Content:   make(ContentMap, len(contentTypes)),
		Template:  template,
	}
	l.Normalize(contentTypes)
	return l
}

// Clone returns a deep copy so read paths can rewrite URLs without mutating
// the stored record.
func (l *Lesson) Clone() *Lesson {
	out := *l
	out.Content = l.Content.Clone()
	if l.Template != nil {
		out.Template = append(json.RawMessage(nil), l.Template...)
	}
	return &out
}

// Clone deep-copies the content map.
func (m ContentMap) Clone() ContentMap {
	if m == nil {
		return nil
	}
	out := make(ContentMap, len(m))
	for name, slot := range m {
		out[name] = slot.clone()
	}
	return out
}

func (s *ContentSlot) clone() *ContentSlot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Single != nil {
		single := *s.Single
		out.Single = &single
	}
	if s.List != nil {
		out.List = &FileListContent{Files: append([]FileDescriptor(nil), s.List.Files...)}
	}
	if s.Text != nil {
		text := *s.Text
		out.Text = &text
	}
	return &out
}
