package fetcher

import "tweetscraper/pkg/workload"

// OutcomeKind classifies the result of one fetch
type OutcomeKind int

const (
	Success OutcomeKind = iota
	Redirected
	HTTPFailure
	TransportError
	Empty
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Redirected:
		return "redirected"
	case HTTPFailure:
		return "http_failure"
	case TransportError:
		return "transport_error"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Outcome is the result of fetching one work item
type Outcome struct {
	Kind        OutcomeKind
	Item        workload.WorkItem
	ResolvedURL string
	Status      int
	Body        []byte
	Err         error
}

// OK reports whether the outcome carries a usable page
func (o Outcome) OK() bool {
	return o.Kind == Success
}
