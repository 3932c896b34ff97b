package service

import "errors"

var (
	// ErrClaimNotFound is returned when a claim id does not exist
	ErrClaimNotFound = errors.New("claim not found")

	// ErrPolicyNotFound is returned when a policy number is unknown
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrInvalidClaim is returned when claim input fails validation
	ErrInvalidClaim = errors.New("invalid claim")

	// ErrInvalidPhoto is returned when an upload fails validation
	ErrInvalidPhoto = errors.New("invalid photo")

	// ErrClaimClosed is returned when a claim can no longer be adjudicated
	ErrClaimClosed = errors.New("claim already adjudicated")
)
