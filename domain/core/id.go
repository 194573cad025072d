package core

import (
	"fmt"
	"strings"
)

// Domain identifier types. These are opaque strings assigned by the upstream
// data pipeline, never generated locally.
type (
	StudyID  string
	SampleID string
	EntityID string
)

// String conversions for domain IDs
func (id StudyID) String() string  { return string(id) }
func (id SampleID) String() string { return string(id) }
func (id EntityID) String() string { return string(id) }

// IsEmpty checks if the ID is empty
func (id StudyID) IsEmpty() bool  { return id == "" }
func (id SampleID) IsEmpty() bool { return id == "" }
func (id EntityID) IsEmpty() bool { return id == "" }

// ParseStudyID parses a string into StudyID
func ParseStudyID(s string) (StudyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("study ID cannot be empty")
	}
	return StudyID(strings.TrimSpace(s)), nil
}

// ParseSampleID parses a string into SampleID
func ParseSampleID(s string) (SampleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("sample ID cannot be empty")
	}
	return SampleID(strings.TrimSpace(s)), nil
}
