package engine

import "fmt"

// State is a step of one execution.
type State int

const (
	StateIdle State = iota
	StateTranslating
	StateExecuting
	StateClassifyingShape
	StateMaterializing
	StatePostProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateTranslating:
		return "Translating"
	case StateExecuting:
		return "Executing"
	case StateClassifyingShape:
		return "ClassifyingShape"
	case StateMaterializing:
		return "Materializing"
	case StatePostProcessing:
		return "PostProcessing"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Shape is the form of an execution's result.
type Shape int

const (
	// ShapeSequence is a list of rows.
	ShapeSequence Shape = iota
	// ShapeElement is one row picked by an element operator.
	ShapeElement
	// ShapeScalar is a single aggregate value.
	ShapeScalar
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeElement:
		return "element"
	case ShapeScalar:
		return "scalar"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}
