package codemagic

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid process configuration,
// most commonly an absent API key. It is raised at first use, before any
// network traffic.
type ConfigurationError struct {
	Message string
	Err     error
}

func (err *ConfigurationError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("codemagic: configuration error: %s: %v", err.Message, err.Err)
	}
	return "codemagic: configuration error: " + err.Message
}

func (err *ConfigurationError) Unwrap() error { return err.Err }

// InvalidArgumentError reports a parameter rejected locally, before any
// request is issued.
type InvalidArgumentError struct {
	// Param is the offending parameter name as seen by the caller.
	Param  string
	Reason string
}

func (err *InvalidArgumentError) Error() string {
	if err.Param == "" {
		return "invalid argument: " + err.Reason
	}
	return fmt.Sprintf("invalid argument %q: %s", err.Param, err.Reason)
}

// UpstreamError represents a response from the Codemagic API with a status
// code of 400 or above.
type UpstreamError struct {
	StatusCode int
	Method     string
	Path       string

	// Body is the raw response body, kept verbatim for the caller.
	Body string
}

func (err *UpstreamError) Error() string {
	return fmt.Sprintf("codemagic api returned status %d: %s", err.StatusCode, strings.TrimSpace(err.Body))
}

// NotFoundError reports a lookup of something that was never registered,
// such as an unknown tool name.
type NotFoundError struct {
	Kind string
	Name string
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", err.Kind, err.Name)
}

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsInvalidArgument reports whether err is or wraps an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsUpstream reports whether err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var target *UpstreamError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

func missingArgument(name string) error {
	return &InvalidArgumentError{Param: name, Reason: "missing required argument"}
}

// requireArgs checks that every name/value pair has a non-blank value.
func requireArgs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return missingArgument(pairs[i])
		}
	}
	return nil
}
