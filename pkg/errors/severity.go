// Package errors provides severity-aware error types.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// SkuError is a structured error with context.
type SkuError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Source      string   `json:"source,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Err         error    `json:"-"`
}

func (e *SkuError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s (source: %s)", msg, e.Source)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SkuError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeMalformedRecord    = "MALFORMED_RECORD"
	ErrCodeEmptyCatalog       = "EMPTY_CATALOG"
	ErrCodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidRequirement = "INVALID_REQUIREMENT"
	ErrCodePriceNotFound      = "PRICE_NOT_FOUND"
)

// NewMalformedRecordError describes a catalog entry that could not be parsed.
func NewMalformedRecordError(source string, err error) *SkuError {
	return &SkuError{
		Code:        ErrCodeMalformedRecord,
		Message:     "catalog entry could not be parsed",
		Severity:    SeverityInfo,
		Source:      source,
		Recoverable: true,
		Err:         err,
	}
}

// NewEmptyCatalogError reports that no eligible records remained after filtering.
func NewEmptyCatalogError(source string) *SkuError {
	return &SkuError{
		Code:        ErrCodeEmptyCatalog,
		Message:     "no eligible SKU records",
		Severity:    SeverityWarning,
		Source:      source,
		Recoverable: true,
	}
}

// NewSourceUnavailableError wraps a failure of a catalog or price source.
func NewSourceUnavailableError(source string, err error) *SkuError {
	return &SkuError{
		Code:        ErrCodeSourceUnavailable,
		Message:     "catalog source unavailable",
		Severity:    SeverityError,
		Source:      source,
		Recoverable: false,
		Err:         err,
	}
}

// NewInvalidRequirementError rejects a vCPU/RAM requirement.
func NewInvalidRequirementError(reason string) *SkuError {
	return &SkuError{
		Code:     ErrCodeInvalidRequirement,
		Message:  reason,
		Severity: SeverityError,
	}
}

// NewPriceNotFoundError creates an error for unresolved pricing.
func NewPriceNotFoundError(sku, source string) *SkuError {
	return &SkuError{
		Code:        ErrCodePriceNotFound,
		Message:     fmt.Sprintf("price not found for SKU: %s", sku),
		Severity:    SeverityWarning,
		Source:      source,
		Recoverable: true,
	}
}

// HasCode reports whether err, or anything it wraps, is a SkuError with the given code.
func HasCode(err error, code string) bool {
	var skuErr *SkuError
	if stderrors.As(err, &skuErr) {
		return skuErr.Code == code
	}
	return false
}

func IsSourceUnavailable(err error) bool {
	return HasCode(err, ErrCodeSourceUnavailable)
}

func IsInvalidRequirement(err error) bool {
	return HasCode(err, ErrCodeInvalidRequirement)
}
