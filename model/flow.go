package model

import (
	"encoding/json"
	"fmt"
)

// Flow field names as they appear in corpus documents
const (
	KeyID                  = "id"
	KeyFlowID              = "flow_id"
	KeyFlowName            = "flow_name"
	KeyDescription         = "description"
	KeyFlowCategory        = "flowCategory"
	KeyCategoryDescription = "categoryDescription"
	KeySteps               = "steps"
	KeyPrerequisites       = "prerequisites"
	KeyCitations           = "citations"
	KeySourceDocuments     = "source_documents"
	KeyRelatedFlows        = "related_flows"
)

// Flow represents one documented user workflow.
//
// Typed fields mirror the values the pipeline works with; every other key of
// the underlying object is preserved together with the original key order.
// A nil list means the key is absent from the document.
type Flow struct {
	ID                  string
	IDKey               string
	Name                string
	Description         string
	Category            string
	CategoryDescription string
	Steps               []*Step
	Prerequisites       []string
	Citations           []string
	SourceDocuments     []string
	RelatedFlows        []string

	fields *Fields
}

// NewFlow creates a flow with empty backing fields
func NewFlow(id string) *Flow {
	return &Flow{ID: id, IDKey: KeyID, fields: NewFields()}
}

// HasCitations returns true if the flow still carries a citations field
func (f *Flow) HasCitations() bool {
	return f.Citations != nil
}

// UseIDKey re-reads the id from key when the flow carries a non blank value there
func (f *Flow) UseIDKey(key string) error {
	raw, ok := f.fields.Raw(key)
	if !ok {
		return nil
	}
	id, err := decodeID(raw)
	if err != nil {
		return fmt.Errorf("invalid %q: %w", key, err)
	}
	if id != "" {
		f.ID, f.IDKey = id, key
	}
	return nil
}

// Has returns true if the backing object carries the key
func (f *Flow) Has(key string) bool {
	return f.fields.Has(key)
}

// Fields returns the backing object
func (f *Flow) Fields() *Fields {
	return f.fields
}

// StepObjects returns structured steps
func (f *Flow) StepObjects() []*Step {
	var result []*Step
	for _, step := range f.Steps {
		if step.IsObject() {
			result = append(result, step)
		}
	}
	return result
}

// UnmarshalJSON decodes a flow object
func (f *Flow) UnmarshalJSON(data []byte) error {
	f.fields = NewFields()
	if err := f.fields.UnmarshalJSON(data); err != nil {
		return err
	}
	for _, key := range []string{KeyID, KeyFlowID} {
		raw, ok := f.fields.Raw(key)
		if !ok {
			continue
		}
		id, err := decodeID(raw)
		if err != nil {
			return fmt.Errorf("invalid %q: %w", key, err)
		}
		if id != "" {
			f.ID, f.IDKey = id, key
			break
		}
	}
	if f.IDKey == "" {
		f.IDKey = KeyID
	}
	textFields := []struct {
		key  string
		dest *string
	}{
		{KeyFlowName, &f.Name},
		{KeyDescription, &f.Description},
		{KeyFlowCategory, &f.Category},
		{KeyCategoryDescription, &f.CategoryDescription},
	}
	for _, field := range textFields {
		if _, err := f.fields.Get(field.key, field.dest); err != nil {
			return err
		}
	}
	listFields := []struct {
		key  string
		dest *[]string
	}{
		{KeyPrerequisites, &f.Prerequisites},
		{KeyCitations, &f.Citations},
		{KeySourceDocuments, &f.SourceDocuments},
		{KeyRelatedFlows, &f.RelatedFlows},
	}
	for _, field := range listFields {
		ok, err := f.fields.Get(field.key, field.dest)
		if err != nil {
			return err
		}
		if ok && *field.dest == nil {
			*field.dest = []string{}
		}
	}
	if _, err := f.fields.Get(KeySteps, &f.Steps); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the flow writing typed values back into their original positions
func (f *Flow) MarshalJSON() ([]byte, error) {
	if f.fields == nil {
		f.fields = NewFields()
	}
	if f.ID != "" {
		idKey := f.IDKey
		if idKey == "" {
			idKey = KeyID
		}
		if !f.fields.Has(idKey) || f.hasBlankID(idKey) {
			if err := f.fields.Set(idKey, f.ID); err != nil {
				return nil, err
			}
		}
	}
	if err := syncList(f.fields, KeyCitations, f.Citations); err != nil {
		return nil, err
	}
	if err := syncList(f.fields, KeySourceDocuments, f.SourceDocuments); err != nil {
		return nil, err
	}
	if err := syncList(f.fields, KeyRelatedFlows, f.RelatedFlows); err != nil {
		return nil, err
	}
	if f.Steps != nil || f.fields.Has(KeySteps) {
		if err := f.fields.Set(KeySteps, f.Steps); err != nil {
			return nil, err
		}
	}
	return f.fields.MarshalJSON()
}

// Synthesized returns true when the id was assigned rather than read from the document
func (f *Flow) Synthesized() bool {
	if f.ID == "" {
		return false
	}
	key := f.IDKey
	if key == "" {
		key = KeyID
	}
	return !f.fields.Has(key) || f.hasBlankID(key)
}

func (f *Flow) hasBlankID(key string) bool {
	raw, _ := f.fields.Raw(key)
	id, err := decodeID(raw)
	return err == nil && id == ""
}

// decodeID accepts string and numeric identifiers
func decodeID(raw json.RawMessage) (string, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	switch actual := value.(type) {
	case nil:
		return "", nil
	case string:
		return actual, nil
	case float64:
		return string(raw), nil
	}
	return "", fmt.Errorf("unsupported id type %T", value)
}
