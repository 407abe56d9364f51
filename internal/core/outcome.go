package core

import (
	"time"
)

// Status is the terminal classification of a clone attempt
type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// Tag returns the short label used in progress lines
func (s Status) Tag() string {
	switch s {
	case StatusSucceeded:
		return "OK"
	case StatusSkipped:
		return "SKIP"
	case StatusFailed:
		return "FAIL"
	}

	return "?"
}

// Reasons recorded on skipped and failed outcomes
const (
	ReasonNoOrganization = "cannot determine organization"
	ReasonDirectory      = "directory creation failed"
	ReasonTransport      = "clone transport error"
)

// Outcome is the result of processing one repository URL
type Outcome struct {
	URL          string
	Organization string
	Folder       string
	Status       Status
	Reason       string
	Err          error
	Duration     time.Duration
}

// Summary counts outcomes per status
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of outcomes counted
func (s Summary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// Summarize counts outcomes per status
func Summarize(outcomes []Outcome) Summary {
	var s Summary

	for _, o := range outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}

	return s
}

// Organizations returns the distinct organizations targeted by outcomes, in
// first-seen order.
func Organizations(outcomes []Outcome) []string {
	seen := make(map[string]struct{})

	var orgs []string

	for _, o := range outcomes {
		if o.Organization == "" {
			continue
		}

		if _, ok := seen[o.Organization]; ok {
			continue
		}

		seen[o.Organization] = struct{}{}
		orgs = append(orgs, o.Organization)
	}

	return orgs
}
