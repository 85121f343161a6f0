// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"
)

// CommitTimestampLayout is the ISO-8601 layout GitHub uses for committedDate.
const CommitTimestampLayout = "2006-01-02T15:04:05Z"

// CommitRecord is a single commit as returned by the commit history endpoint.
type CommitRecord struct {
	Additions     int
	Deletions     int
	CommittedDate string
}

// TimestampError reports a commit timestamp that does not follow CommitTimestampLayout.
type TimestampError struct {
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("invalid commit timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

// ParseCommitTimestamp parses a UTC timestamp with a literal Z designator.
func ParseCommitTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(CommitTimestampLayout, value)
	if err != nil {
		return time.Time{}, &TimestampError{Value: value, Err: err}
	}
	return t, nil
}

// CommitAggregate holds summed commit activity and the observed date range.
// The zero value is the identity element for Merge.
type CommitAggregate struct {
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Commits   int        `json:"commits"`
	Earliest  *time.Time `json:"earliest,omitempty"`
	Latest    *time.Time `json:"latest,omitempty"`
}

// Aggregate converts a single commit into a one-commit aggregate.
func (c CommitRecord) Aggregate() (CommitAggregate, error) {
	at, err := ParseCommitTimestamp(c.CommittedDate)
	if err != nil {
		return CommitAggregate{}, err
	}
	return CommitAggregate{
		Additions: c.Additions,
		Deletions: c.Deletions,
		Commits:   1,
		Earliest:  &at,
		Latest:    &at,
	}, nil
}

// Merge combines two aggregates. It is associative and commutative; a nil
// bound on either side yields the other side's bound.
func (a CommitAggregate) Merge(b CommitAggregate) CommitAggregate {
	return CommitAggregate{
		Additions: a.Additions + b.Additions,
		Deletions: a.Deletions + b.Deletions,
		Commits:   a.Commits + b.Commits,
		Earliest:  pickTime(a.Earliest, b.Earliest, time.Time.Before),
		Latest:    pickTime(a.Latest, b.Latest, time.Time.After),
	}
}

// IsZero reports whether the aggregate is the identity element.
func (a CommitAggregate) IsZero() bool {
	return a.Additions == 0 && a.Deletions == 0 && a.Commits == 0 && a.Earliest == nil && a.Latest == nil
}

// Lifespan returns Latest - Earliest, or nil when either bound is absent.
func (a CommitAggregate) Lifespan() *time.Duration {
	if a.Earliest == nil || a.Latest == nil {
		return nil
	}
	d := a.Latest.Sub(*a.Earliest)
	return &d
}

// MergeAll folds aggregates into one, starting from the identity.
func MergeAll(aggregates ...CommitAggregate) CommitAggregate {
	var total CommitAggregate
	for _, a := range aggregates {
		total = total.Merge(a)
	}
	return total
}

func pickTime(a, b *time.Time, prefer func(time.Time, time.Time) bool) *time.Time {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		t := *b
		return &t
	case b == nil:
		t := *a
		return &t
	case prefer(*b, *a):
		t := *b
		return &t
	default:
		t := *a
		return &t
	}
}
