package covers

import (
	"github.com/mmcdole/shelf/internal/domain"
)

// OutcomeKind tags the result of one fetch attempt.
type OutcomeKind int

const (
	OutcomeFailed OutcomeKind = iota
	OutcomeFound
	OutcomeNotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// FetchOutcome is Found(path), NotFound or Failed(err).
type FetchOutcome struct {
	Kind OutcomeKind
	Path string // set when Kind == OutcomeFound
	Err  error  // set when Kind != OutcomeFound
}

func Found(path string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeFound, Path: path}
}

func NotFound() FetchOutcome {
	return FetchOutcome{Kind: OutcomeNotFound, Err: domain.ErrRemoteAbsent}
}

func Failed(err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeFailed, Err: err}
}

// FetchResult is the value carried back from a background fetch.
type FetchResult struct {
	Cover   domain.CoverID
	Variant domain.SizeVariant
	Outcome FetchOutcome
}
