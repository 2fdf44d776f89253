// Package errors provides the classified errors used across docmd.
//
// A ClassifiedError carries a category, which the CLI maps to an exit code,
// a severity, structured context for logs and an optional hint for the
// user. Errors are built with the fluent builder:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "failed to read markdown").
//		WithContext("path", path).
//		Build()
package errors
