package feed

import "fmt"

// Kind tags the taxonomy of fetch failures from spec.md §4.A/§7 so
// failures can be classified without string matching.
type Kind string

const (
	KindInvalidURL     Kind = "invalid_url"
	KindTimeout        Kind = "timeout"
	KindDNSFailure     Kind = "dns_failure"
	KindConnRefused    Kind = "connection_refused"
	KindHTTPClientErr  Kind = "http_client_error"
	KindHTTPServerErr  Kind = "http_server_error"
	KindParseError     Kind = "parse_error"
)

// FetchError is the tagged result type Fetch returns in place of a
// thrown exception. Fetch uses Retriable to decide whether to try
// again; the scheduler counts every returned error against the
// source's breaker regardless of Kind.
type FetchError struct {
	Kind    Kind
	Source  string
	Wrapped error
}

func (e *FetchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Wrapped }

// Retriable reports whether the caller should attempt another try
// within the same fetch() invocation (spec.md §4.A retry policy).
func (e *FetchError) Retriable() bool {
	switch e.Kind {
	case KindTimeout, KindDNSFailure, KindConnRefused, KindHTTPServerErr:
		return true
	default:
		return false
	}
}
