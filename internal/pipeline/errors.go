package pipeline

import (
	"errors"
	"fmt"
)

const (
	StageGenerate = "generate"
	StageFormat   = "format_seo"
	StageMonetize = "monetize"
	StageRender   = "render"
	StagePersist  = "persist"
	StagePublish  = "publish"
)

var (
	ErrGeneration  = errors.New("generation failure")
	ErrFormatting  = errors.New("formatting failure")
	ErrRender      = errors.New("render failure")
	ErrPersistence = errors.New("persistence failure")
	ErrPublish     = errors.New("publish failure")

	ErrInvalidRequest = errors.New("invalid pipeline request")
)

func kindOf(stage string) error {
	switch stage {
	case StageGenerate:
		return ErrGeneration
	case StageFormat:
		return ErrFormatting
	case StageRender:
		return ErrRender
	case StagePersist:
		return ErrPersistence
	case StagePublish:
		return ErrPublish
	}
	return nil
}

// StageError matches both its stage sentinel and the underlying cause with
// errors.Is.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() []error {
	if k := kindOf(e.Stage); k != nil {
		return []error{k, e.Err}
	}
	return []error{e.Err}
}
