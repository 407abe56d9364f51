package core

import (
	"errors"
	"fmt"
)

// ErrNoOrganization indicates the URL path has no owner/repo shape
var ErrNoOrganization = errors.New("cannot determine organization")

// ErrOutsideRoot indicates an organization folder would leave the destination root
var ErrOutsideRoot = errors.New("organization folder is outside the destination root")

// Stage identifies the step of a clone attempt that produced an outcome
type Stage int

const (
	StageResolve Stage = iota
	StageLayout
	StageClone
)

func (s Stage) String() string {
	switch s {
	case StageResolve:
		return "resolve"
	case StageLayout:
		return "layout"
	case StageClone:
		return "clone"
	}

	return ""
}

// OutcomeError wraps the error recorded for a single URL
type OutcomeError struct {
	URL   string
	Stage Stage
	Err   error
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *OutcomeError) Unwrap() error {
	return e.Err
}

// transportPanicError is returned when a transport panics instead of failing
type transportPanicError struct {
	value any
}

func (e *transportPanicError) Error() string {
	return fmt.Sprintf("transport panic: %v", e.value)
}
