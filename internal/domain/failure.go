package domain

import (
	"fmt"
	"net/http"
)

// FailureKind classifies a terminal pipeline failure.
type FailureKind string

const (
	FailureConfiguration FailureKind = "configuration"
	FailureNotFound      FailureKind = "not_found"
	FailureValidation    FailureKind = "validation"
	FailureInternal      FailureKind = "internal"
)

// Failure is a typed terminal outcome for a pipeline stage. Expected
// conditions (missing file, missing column) travel as failures rather than
// plain errors so the runner can short-circuit and map them to a response.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// HTTPStatus maps the failure kind onto the response contract: 404 for a
// missing input spreadsheet, 500 for everything else.
func (f *Failure) HTTPStatus() int {
	if f.Kind == FailureNotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ConfigurationFailure reports missing or unparseable configuration input.
func ConfigurationFailure(format string, args ...any) *Failure {
	return &Failure{Kind: FailureConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NotFoundFailure reports an absent input file.
func NotFoundFailure(message string) *Failure {
	return &Failure{Kind: FailureNotFound, Message: message}
}

// ValidationFailure reports invalid input data, such as a missing column.
func ValidationFailure(format string, args ...any) *Failure {
	return &Failure{Kind: FailureValidation, Message: fmt.Sprintf(format, args...)}
}

// InternalFailure wraps an unexpected error with a stage description.
func InternalFailure(err error, format string, args ...any) *Failure {
	return &Failure{Kind: FailureInternal, Message: fmt.Sprintf(format, args...), Err: err}
}
