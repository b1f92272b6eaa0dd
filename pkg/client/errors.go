package client

import (
	"errors"
	"fmt"
)

// Validation errors reported before any network call is made.
var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrPropertyTypeRequired is returned by metrics methods when the
	// property_type filter is missing.
	ErrPropertyTypeRequired = errors.New("property_type parameter is required")

	// ErrTagRequired is returned by metrics methods when the tag filter is
	// missing.
	ErrTagRequired = errors.New("tag parameter is required")

	// ErrTooManyContractorIDs is returned when more than 50 contractor IDs
	// are requested at once.
	ErrTooManyContractorIDs = errors.New("at most 50 contractor ids per request")

	// ErrAddressLevel is returned by GetLocationDetails for the addresses
	// level; residents are served by GetResidents.
	ErrAddressLevel = errors.New("address-level details are served by GetResidents")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport-level errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents invalid JSON in a 200 response.
	ErrorClassDecode ErrorClass = "decode"
)

// classifyStatus categorizes a non-200 HTTP status for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// APIError represents a non-200 Shovels API response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
	Class      ErrorClass
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("shovels %s error (status %d) on %s: %s",
		e.Class, e.StatusCode, e.Endpoint, e.Body)
}
