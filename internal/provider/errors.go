package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"stockquotes/internal/httpx"
)

// Kind classifies a fetch failure so the HTTP boundary can pick a status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindTimeout
	KindNetwork
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindConfig:
		return "config"
	default:
		return "unexpected"
	}
}

// Error is a typed fetch failure.
type Error struct {
	Kind     Kind
	Provider string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, name, format string, args ...any) *Error {
	return &Error{Kind: kind, Provider: name, Msg: fmt.Sprintf(format, args...)}
}

// Validationf reports bad input, missing data or an upstream rate limit.
func Validationf(name, format string, args ...any) *Error {
	return newf(KindValidation, name, format, args...)
}

// NotFoundf reports that the upstream explicitly does not know the symbol.
func NotFoundf(name, format string, args ...any) *Error {
	return newf(KindNotFound, name, format, args...)
}

// Configf reports a missing or invalid provider setting such as an API key.
func Configf(name, format string, args ...any) *Error {
	return newf(KindConfig, name, format, args...)
}

// Unexpected wraps err as an uncategorized failure.
func Unexpected(name, msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Provider: name, Msg: msg, Err: err}
}

// FromTransport classifies an error returned while talking to the upstream.
// Deadline and net timeouts become KindTimeout, everything else KindNetwork.
// Errors that are already typed pass through unchanged.
func FromTransport(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Provider: name, Msg: "upstream request timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Provider: name, Msg: "network error", Err: err}
}

// FromHTTP classifies an error returned by httpx.Client.GetJSON. Non-2xx
// statuses are network failures, except 429 which is a rate limit and so a
// validation failure. Undecodable bodies are unexpected.
func FromHTTP(name string, err error) error {
	if err == nil {
		return nil
	}
	var se *httpx.StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests {
			return Validationf(name, "%s API rate limit reached. Please try again later.", name)
		}
		return &Error{Kind: KindNetwork, Provider: name, Msg: fmt.Sprintf("upstream HTTP error %d", se.Code), Err: err}
	}
	var de *httpx.DecodeError
	if errors.As(err, &de) && !isTimeout(err) {
		return Unexpected(name, "invalid upstream response", err)
	}
	return FromTransport(name, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// KindOf returns the kind of err, or KindUnexpected for untyped errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnexpected
}
