package utils

import (
	"errors"
	"fmt"
	"strings"
)

var ErrorSessionNotFound = errors.New("session not found")
var ErrorSessionIncomplete = errors.New("session is missing one or more source files")

// SchemaError reports required columns that are absent from an input file.
// It is fatal to that file's load; row-level bad values never raise it.
type SchemaError struct {
	Kind           string
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in %s file: %s", e.Kind, strings.Join(e.MissingColumns, ", "))
}

func NewSchemaError(kind string, missing []string) *SchemaError {
	return &SchemaError{Kind: kind, MissingColumns: missing}
}
