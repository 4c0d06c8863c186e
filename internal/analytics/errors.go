package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData means a source or the normalizer produced nothing usable.
	ErrNoData = errors.New("analytics: no data")

	// ErrInsufficientData means a series is below MinAnalysisPoints.
	ErrInsufficientData = errors.New("analytics: insufficient data")

	// ErrInvalidSeries means points violate ordering or value constraints.
	ErrInvalidSeries = errors.New("analytics: invalid series")
)

// ErrorKind classifies request-level analysis failures.
type ErrorKind string

const (
	KindInvalidAssetClass ErrorKind = "invalid_asset_class"
	KindInvalidIdentifier ErrorKind = "invalid_identifier"
	KindNoData            ErrorKind = "no_data"
	KindInsufficientData  ErrorKind = "insufficient_data"
	KindAdapterFault      ErrorKind = "adapter_fault"
)

// Error is the single failure type returned by Analyzer.Analyze.
type Error struct {
	Kind       ErrorKind
	Identifier string
	AssetClass string
	Points     int   // series length, for KindInsufficientData
	Cause      error // underlying fault, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidAssetClass:
		return fmt.Sprintf("Invalid investment_type '%s'. Use 'stock' or 'mutual_fund'.", e.AssetClass)
	case KindInvalidIdentifier:
		return fmt.Sprintf("Invalid identifier '%s' for %s: %v.", e.Identifier, e.AssetClass, e.Cause)
	case KindNoData:
		return fmt.Sprintf("No historical data found for '%s'. Verify the identifier and try again.", e.Identifier)
	case KindInsufficientData:
		return fmt.Sprintf("Insufficient historical data for '%s' (%d points, need at least %d). Verify the identifier and try again.",
			e.Identifier, e.Points, MinAnalysisPoints)
	default:
		return fmt.Sprintf("Analysis failed for '%s': %v", e.Identifier, e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Report converts the error into its wire form.
func (e *Error) Report() ErrorReport {
	return ErrorReport{Error: e.Error(), Kind: e.Kind, Identifier: e.Identifier}
}

// ErrorReport is the structured failure returned to callers in place of a report.
type ErrorReport struct {
	Error      string    `json:"error"`
	Kind       ErrorKind `json:"kind"`
	Identifier string    `json:"identifier,omitempty"`
}

// KindOf returns the ErrorKind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// AsErrorReport converts any error into an ErrorReport. Errors that are not
// *Error become adapter faults for identifier.
func AsErrorReport(err error, identifier string) ErrorReport {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Report()
	}
	return (&Error{Kind: KindAdapterFault, Identifier: identifier, Cause: err}).Report()
}

// notFound is implemented by source errors that mean the identifier is
// unknown upstream.
type notFound interface {
	NotFound() bool
}

func isNoData(err error) bool {
	if errors.Is(err, ErrNoData) {
		return true
	}
	var nf notFound
	return errors.As(err, &nf) && nf.NotFound()
}
