package provider

import (
	"errors"
	"fmt"

	"market-mood/internal/domain"
)

// ErrorKind distinguishes why a fetch failed.
type ErrorKind string

const (
	ErrKindNetwork ErrorKind = "network"
	ErrKindParse   ErrorKind = "parse"
)

// FetchError is returned by every provider on failure. Callers switch on
// Kind to decide how to react; the service layer substitutes demo data for
// either kind.
type FetchError struct {
	Source domain.Source
	Kind   ErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func networkError(source domain.Source, err error) *FetchError {
	return &FetchError{Source: source, Kind: ErrKindNetwork, Err: err}
}

func parseError(source domain.Source, err error) *FetchError {
	return &FetchError{Source: source, Kind: ErrKindParse, Err: err}
}

// AsFetchError unwraps err into a *FetchError if one is in the chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
