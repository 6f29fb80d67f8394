package ratecompass

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("ratecompass: missing host or apikey")
	ErrTransport     = errors.New("ratecompass: transport error")
	ErrAPI           = errors.New("ratecompass: api error")
	ErrDecode        = errors.New("ratecompass: could not decode JSON response")
	ErrMissingField  = errors.New("ratecompass: field missing from response")
)

// ConfigurationError is returned by New when host or apikey is empty.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string { return "Missing host or apikey" }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// TransportError means no usable HTTP response was obtained.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ratecompass: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// APIError is a non-2xx response. Error returns the raw response body so
// callers can surface whatever diagnostic the service sent.
type APIError struct {
	Status  int
	Content string
}

func (e *APIError) Error() string { return e.Content }

func (e *APIError) Is(target error) bool { return target == ErrAPI }

func (e *APIError) HTTPStatus() int { return e.Status }

type DecodeError struct {
	Content string
	Err     error
}

func (e *DecodeError) Error() string { return "Could not decode JSON response" }

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// MissingFieldError is returned when a decoded body lacks a field the
// operation depends on (id, count).
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string { return e.Message }

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }
