package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/viant/flowcorpus/model"
)

var errUnknownShape = errors.New("no user_flows, flows or nested flow container")

// DefaultIndent is used when writing documents
const DefaultIndent = "  "

// DefaultRequiredFields lists flow keys every record must carry
var DefaultRequiredFields = []string{model.KeyFlowName, model.KeyDescription, model.KeySteps}

// Codec converts module documents between bytes and model.Document
type Codec struct {
	Indent         string
	RequiredFields []string
}

// Decode detects the document shape, decodes flows, assigns missing ids and
// checks required fields
func (c *Codec) Decode(file string, data []byte, module *model.Module) (*model.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed(file, "empty document")
	}
	doc := &model.Document{URL: file}
	if module != nil {
		doc.Indent = module.Indent
	}
	var flowsRaw json.RawMessage
	switch trimmed[0] {
	case '[':
		doc.Shape = model.Shape{Kind: model.ShapeList}
		flowsRaw = trimmed
	case '{':
		doc.Root = model.NewFields()
		if err := doc.Root.UnmarshalJSON(trimmed); err != nil {
			return nil, malformed(file, "%v", err)
		}
		shape, container, err := detectShape(doc.Root, module)
		if err != nil {
			return nil, malformed(file, "%v", err)
		}
		doc.Shape, doc.Wrapper = shape, container
		if shape.Kind != model.ShapeNested {
			doc.Wrapper = nil
		}
		flowsRaw, _ = container.Raw(shape.FlowsKey)
	default:
		return nil, malformed(file, "expected JSON object or array")
	}
	if trimmed := bytes.TrimSpace(flowsRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, malformed(file, "flow container %v is not an array", doc.Shape)
	}
	if err := json.Unmarshal(flowsRaw, &doc.Flows); err != nil {
		return nil, malformed(file, "%v", err)
	}
	for i, flow := range doc.Flows {
		if flow == nil {
			return nil, malformed(file, "flow #%d is null", i+1)
		}
	}
	if err := c.ensureIDs(file, doc, module); err != nil {
		return nil, err
	}
	if err := c.checkRequired(file, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode writes the document back in its original shape
func (c *Codec) Encode(doc *model.Document) ([]byte, error) {
	var value interface{}
	flows := doc.Flows
	if flows == nil {
		flows = []*model.Flow{}
	}
	switch doc.Shape.Kind {
	case model.ShapeList:
		value = flows
	case model.ShapeNested:
		if err := doc.Wrapper.Set(doc.Shape.FlowsKey, flows); err != nil {
			return nil, err
		}
		if err := doc.Root.Set(doc.Shape.Wrapper, doc.Wrapper); err != nil {
			return nil, err
		}
		value = doc.Root
	default:
		if err := doc.Root.Set(doc.Shape.FlowsKey, flows); err != nil {
			return nil, err
		}
		value = doc.Root
	}
	buffer := bytes.Buffer{}
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	indent := c.Indent
	if doc.Indent != "" {
		indent = doc.Indent
	}
	encoder.SetIndent("", indent)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// detectShape probes user_flows, then flows, then one level of nesting; a
// nested key mentioning the module is preferred over other wrappers
func detectShape(root *model.Fields, module *model.Module) (model.Shape, *model.Fields, error) {
	for _, key := range []string{model.KeyUserFlows, model.KeyFlows} {
		if root.Has(key) {
			kind := model.ShapeUserFlows
			if key == model.KeyFlows {
				kind = model.ShapeFlows
			}
			return model.Shape{Kind: kind, FlowsKey: key}, root, nil
		}
	}
	var candidates []model.Shape
	wrappers := map[string]*model.Fields{}
	for _, key := range root.Keys() {
		raw, _ := root.Raw(key)
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		wrapper := model.NewFields()
		if err := wrapper.UnmarshalJSON(raw); err != nil {
			continue
		}
		for _, flowsKey := range []string{model.KeyUserFlows, model.KeyFlows} {
			if wrapper.Has(flowsKey) {
				candidates = append(candidates, model.Shape{Kind: model.ShapeNested, Wrapper: key, FlowsKey: flowsKey})
				wrappers[key] = wrapper
				break
			}
		}
	}
	if len(candidates) == 0 {
		return model.Shape{}, nil, errUnknownShape
	}
	selected := candidates[0]
	if module != nil {
		for _, candidate := range candidates {
			if mentionsModule(candidate.Wrapper, module) {
				selected = candidate
				break
			}
		}
	}
	return selected, wrappers[selected.Wrapper], nil
}

func mentionsModule(key string, module *model.Module) bool {
	normalized := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(key))
	if module.Key != "" && strings.Contains(normalized, strings.ToLower(module.Key)) {
		return true
	}
	directory := strings.ToLower(strings.ReplaceAll(module.Directory, " ", "_"))
	return directory != "" && strings.Contains(normalized, directory)
}

// ensureIDs prefers the module id key, synthesizes missing ids and rejects duplicates
func (c *Codec) ensureIDs(file string, doc *model.Document, module *model.Module) error {
	seen := make(map[string]int, len(doc.Flows))
	for i, flow := range doc.Flows {
		if module != nil {
			if err := flow.UseIDKey(module.IDKey); err != nil {
				return malformed(file, "flow #%d: %v", i+1, err)
			}
			if flow.ID == "" {
				flow.ID, flow.IDKey = module.SynthesizeID(i), module.IDKey
			}
		}
		if flow.ID == "" {
			return malformed(file, "flow #%d has no id", i+1)
		}
		if previous, ok := seen[flow.ID]; ok {
			return malformed(file, "duplicate flow id %q at #%d and #%d", flow.ID, previous+1, i+1)
		}
		seen[flow.ID] = i
	}
	return nil
}

func (c *Codec) checkRequired(file string, doc *model.Document) error {
	for _, flow := range doc.Flows {
		for _, key := range c.RequiredFields {
			raw, ok := flow.Fields().Raw(key)
			if !ok || string(bytes.TrimSpace(raw)) == "null" {
				return malformed(file, "flow %v is missing %q", flow.ID, key)
			}
		}
	}
	return nil
}

// NewCodec creates a codec with default indent and required fields
func NewCodec() *Codec {
	return &Codec{Indent: DefaultIndent, RequiredFields: DefaultRequiredFields}
}
