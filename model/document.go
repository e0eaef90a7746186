package model

// Document is a decoded module corpus file. Root and Wrapper keep the
// surrounding objects so that the document can be written back in its
// original shape.
type Document struct {
	URL     string
	Shape   Shape
	Root    *Fields
	Wrapper *Fields
	Flows   []*Flow
	// Indent is the output indent, empty uses the codec default
	Indent string
	// Source holds the bytes the document was decoded from
	Source []byte
}

// IDs returns flow ids in document order
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Flows))
	for _, flow := range d.Flows {
		ids = append(ids, flow.ID)
	}
	return ids
}

// Flow returns a flow by id
func (d *Document) Flow(id string) *Flow {
	for _, flow := range d.Flows {
		if flow.ID == id {
			return flow
		}
	}
	return nil
}
