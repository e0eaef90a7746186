package model

import "fmt"

// Container keys holding the flow sequence
const (
	KeyUserFlows = "user_flows"
	KeyFlows     = "flows"
)

// ShapeKind enumerates recognised corpus document layouts
type ShapeKind int

const (
	// ShapeUserFlows is {"user_flows": [...]}
	ShapeUserFlows ShapeKind = iota
	// ShapeFlows is {"flows": [...]}
	ShapeFlows
	// ShapeNested is {"<wrapper>": {"user_flows"|"flows": [...]}}
	ShapeNested
	// ShapeList is a bare top-level array
	ShapeList
)

// String returns the shape name
func (k ShapeKind) String() string {
	switch k {
	case ShapeUserFlows:
		return "user_flows"
	case ShapeFlows:
		return "flows"
	case ShapeNested:
		return "nested"
	case ShapeList:
		return "list"
	}
	return "unknown"
}

// Shape describes where the flow sequence lives in a corpus document
type Shape struct {
	Kind ShapeKind
	// Wrapper is the top-level key of a nested document
	Wrapper string
	// FlowsKey is the key holding the flow array, empty for ShapeList
	FlowsKey string
}

// String returns a compact shape description
func (s Shape) String() string {
	switch s.Kind {
	case ShapeNested:
		return fmt.Sprintf("%s(%s.%s)", s.Kind, s.Wrapper, s.FlowsKey)
	case ShapeList:
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.FlowsKey)
}
