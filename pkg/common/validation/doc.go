// Package validation provides common validation utilities shared by the
// taskmill packages. Validators return structured ValidationError values
// from pkg/common/errors so callers can inspect module, field and reason.
package validation
