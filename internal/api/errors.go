// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed backend call. Every failure the client
// surfaces carries exactly one Kind so callers can show a specific
// message: a multi-minute bulk export must be distinguishable from a
// dead backend.
type Kind int

const (
	// KindNetwork is a transport failure: connection refused, DNS, reset.
	KindNetwork Kind = iota + 1

	// KindServer is an HTTP 5xx-class response.
	KindServer

	// KindClient is an HTTP 4xx-class response, e.g. a malformed filter.
	KindClient

	// KindTimeout is a request that exceeded its deadline.
	KindTimeout

	// KindNotFound is an unknown record or job identifier.
	KindNotFound

	// KindCancelled is a request aborted by the caller.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindClient:
		return "request"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not found"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is a classified backend call failure.
type Error struct {
	Kind Kind
	Op   string // endpoint operation, e.g. "search"
	Msg  string // server-provided detail, may be empty
	Err  error  // underlying transport error, may be nil
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or 0 when err is not a
// backend call failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsNotFound reports whether err is an unknown-identifier failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// transportError classifies an error returned by the HTTP client itself
// (no response was received).
func transportError(op string, err error) *Error {
	kind := KindNetwork
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	default:
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			kind = KindTimeout
		}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// statusError classifies a non-2xx HTTP response.
func statusError(op string, code int, msg string) *Error {
	kind := KindClient
	switch {
	case code == http.StatusNotFound:
		kind = KindNotFound
	case code >= 500:
		kind = KindServer
	case code == http.StatusRequestTimeout:
		kind = KindTimeout
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{Kind: kind, Op: op, Msg: msg}
}
