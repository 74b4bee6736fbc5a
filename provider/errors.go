package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chinmay1088/vaultkit/chains"
)

var (
	// ErrNoProvider is the terminal resolution failure: no registered provider, no prioritized
	// wallet and no detected wallet could serve the requested blockchain type.
	ErrNoProvider = errors.New("no provider available for this blockchain type")

	ErrNoGlobalContext      = errors.New("host has no global execution context")
	ErrWalletNotPresent     = errors.New("wallet is not present in the host")
	ErrUnknownWallet        = errors.New("unknown wallet id")
	ErrCapabilityMismatch   = errors.New("wallet does not support the requested blockchain")
	ErrInvalidProvider      = errors.New("provider does not satisfy the required capability")
	ErrDetectionUnsupported = errors.New("generic detection is not supported for this blockchain")
	ErrTypeMismatch         = errors.New("provider type does not match")
)

// CandidateError records why one resolution candidate was rejected.
type CandidateError struct {
	// Source names the candidate, e.g. "priority:metamask" or "generic:phantom".
	Source string
	Type   chains.BlockchainType
	Err    error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Source, e.Type, e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }

// absent reports whether the candidate was simply not there, as opposed to present but failing.
func (e *CandidateError) absent() bool {
	return errors.Is(e.Err, ErrWalletNotPresent) || errors.Is(e.Err, ErrNoGlobalContext)
}

func candidateErr(source string, t chains.BlockchainType, err error) *CandidateError {
	return &CandidateError{Source: source, Type: t, Err: err}
}

// NoProviderError is returned by GetOrDetectProvider when every candidate failed. It matches
// ErrNoProvider and, through Unwrap, each candidate's error.
type NoProviderError struct {
	Type     chains.BlockchainType
	Attempts []*CandidateError
}

func (e *NoProviderError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no provider available for %s", e.Type)
	}

	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, a.Error())
	}

	return fmt.Sprintf("no provider available for %s: %s", e.Type, strings.Join(reasons, "; "))
}

func (e *NoProviderError) Is(target error) bool { return target == ErrNoProvider }

func (e *NoProviderError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}

	return errs
}
