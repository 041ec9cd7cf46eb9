package types

import "fmt"

// ErrorKind classifies why a poll or apply cycle did not complete normally.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTransport
	KindParse
	KindUpstream
	KindValidation
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindTransport:
		return "transport_error"
	case KindParse:
		return "parse_error"
	case KindUpstream:
		return "upstream_error"
	case KindValidation:
		return "validation_error"
	case KindStorage:
		return "storage_error"
	default:
		return fmt.Sprintf("kind_%d", int(k))
	}
}

// Upstream error codes reported by the bridge in its {error, message} body.
const (
	UpstreamStaleData = "stale_data"
	UpstreamNoData    = "no_data"
)

// PollStatus is the outcome of the most recent upstream poll.
type PollStatus struct {
	Reachable  bool
	UpstreamOK bool
	PolledTS   int64
	HTTPStatus int
	Kind       ErrorKind
	// Code is the wire error code: the bridge's own code for upstream errors,
	// otherwise the kind string.
	Code    string
	Message string
}

// Known reports whether an upstream error code is one the bridge documents.
func (p PollStatus) Known() bool {
	return p.Code == UpstreamStaleData || p.Code == UpstreamNoData
}

// Snapshot is a consistent copy of engine state and poll health.
type Snapshot struct {
	State EngineState
	Poll  PollStatus
}
