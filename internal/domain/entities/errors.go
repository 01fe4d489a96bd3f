package entities

import (
	"errors"
	"fmt"
)

// LayoutErrorKind categorizes layout and document errors
type LayoutErrorKind string

const (
	ErrorKindOverflow     LayoutErrorKind = "overflow"
	ErrorKindState        LayoutErrorKind = "state"
	ErrorKindSpecMismatch LayoutErrorKind = "spec_mismatch"
	ErrorKindIndex        LayoutErrorKind = "index"
	ErrorKindLayout       LayoutErrorKind = "layout"
	ErrorKindPresentation LayoutErrorKind = "presentation"
)

// Sentinel errors usable with errors.Is
var (
	ErrOverflow     = errors.New("children sizes exceed available parent size")
	ErrLayoutState  = errors.New("layout state is not ready")
	ErrSpecMismatch = errors.New("length specs do not match layout items")
	ErrIndex        = errors.New("index out of range")
	ErrLayout       = errors.New("invalid layout")
	ErrPresentation = errors.New("invalid presentation")
)

var kindSentinels = map[LayoutErrorKind]error{
	ErrorKindOverflow:     ErrOverflow,
	ErrorKindState:        ErrLayoutState,
	ErrorKindSpecMismatch: ErrSpecMismatch,
	ErrorKindIndex:        ErrIndex,
	ErrorKindLayout:       ErrLayout,
	ErrorKindPresentation: ErrPresentation,
}

// LayoutError provides detailed error information with categorization
type LayoutError struct {
	Kind    LayoutErrorKind `json:"kind"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Cause   error           `json:"-"`
}

func (e *LayoutError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s error: %s - %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *LayoutError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error for the error kind
func (e *LayoutError) Is(target error) bool {
	if sentinel, ok := kindSentinels[e.Kind]; ok && sentinel == target {
		return true
	}
	var other *LayoutError
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.Message == e.Message
	}
	return false
}

func newLayoutError(kind LayoutErrorKind, message, details string) *LayoutError {
	return &LayoutError{Kind: kind, Message: message, Details: details}
}

// NewOverflowError reports specs that exceed the parent size
func NewOverflowError(details string) *LayoutError {
	return newLayoutError(ErrorKindOverflow, "specified lengths exceed parent size", details)
}

// NewStateError reports an operation attempted before the layout is ready
func NewStateError(message string) *LayoutError {
	return newLayoutError(ErrorKindState, message, "")
}

// NewSpecMismatchError reports a mismatch between specs and layout items
func NewSpecMismatchError(message string) *LayoutError {
	return newLayoutError(ErrorKindSpecMismatch, message, "")
}

// NewPresentationError reports an invalid presentation document
func NewPresentationError(message, details string) *LayoutError {
	return newLayoutError(ErrorKindPresentation, message, details)
}

// KindOf returns the kind of a layout error, or an empty kind
func KindOf(err error) LayoutErrorKind {
	var le *LayoutError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
