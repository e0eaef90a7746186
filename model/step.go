package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Step represents one flow step. A step is either a plain instruction, a
// structured object that may carry its own references, or an arbitrary JSON
// value that is passed through untouched.
type Step struct {
	Text            string
	IsText          bool
	Citations       []string
	SourceDocuments []string

	fields *Fields
	raw    json.RawMessage
}

// NewTextStep creates a plain instruction step
func NewTextStep(text string) *Step {
	return &Step{Text: text, IsText: true}
}

// NewObjectStep creates a structured step from decoded fields
func NewObjectStep(fields *Fields) (*Step, error) {
	step := &Step{fields: fields}
	if err := step.decodeReferences(); err != nil {
		return nil, err
	}
	return step, nil
}

// IsObject returns true for structured steps
func (s *Step) IsObject() bool {
	return s.fields != nil
}

// HasCitations returns true if the step still carries a citations field
func (s *Step) HasCitations() bool {
	return s.fields != nil && s.Citations != nil
}

// HasSourceDocuments returns true if the step carries a source_documents field
func (s *Step) HasSourceDocuments() bool {
	return s.fields != nil && s.SourceDocuments != nil
}

// Fields returns the step object fields, nil for non object steps
func (s *Step) Fields() *Fields {
	return s.fields
}

func (s *Step) decodeReferences() error {
	if ok, err := s.fields.Get(KeyCitations, &s.Citations); err != nil {
		return err
	} else if ok && s.Citations == nil {
		s.Citations = []string{}
	}
	if ok, err := s.fields.Get(KeySourceDocuments, &s.SourceDocuments); err != nil {
		return err
	} else if ok && s.SourceDocuments == nil {
		s.SourceDocuments = []string{}
	}
	return nil
}

// UnmarshalJSON decodes a step of any supported form
func (s *Step) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty step")
	}
	switch trimmed[0] {
	case '"':
		s.IsText = true
		return json.Unmarshal(trimmed, &s.Text)
	case '{':
		s.fields = NewFields()
		if err := s.fields.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		return s.decodeReferences()
	default:
		s.raw = append(json.RawMessage(nil), trimmed...)
		return nil
	}
}

// MarshalJSON encodes the step, references are written back into the step object
func (s *Step) MarshalJSON() ([]byte, error) {
	switch {
	case s.IsText:
		return Marshal(s.Text)
	case s.fields != nil:
		if err := syncList(s.fields, KeyCitations, s.Citations); err != nil {
			return nil, err
		}
		if err := syncList(s.fields, KeySourceDocuments, s.SourceDocuments); err != nil {
			return nil, err
		}
		return s.fields.MarshalJSON()
	case s.raw != nil:
		return s.raw, nil
	}
	return []byte("null"), nil
}

// syncList writes a list back into fields, a nil list removes the key
func syncList(fields *Fields, key string, values []string) error {
	if values == nil {
		fields.Delete(key)
		return nil
	}
	return fields.Set(key, values)
}
