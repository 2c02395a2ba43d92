package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique processing-run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewElementID generates a unique element ID with the "elem_" prefix
// Format: elem_<uuid>
func NewElementID() string {
	return "elem_" + uuid.New().String()
}
