package seeder

import (
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

type Operation string

const (
	OperationRange      Operation = "range"
	OperationGeneration Operation = "generation"
	OperationUpdate     Operation = "update"
	OperationClear      Operation = "clear"
)

// Summary reports one seeding run. Attempted is always
// Succeeded + Failed + Skipped.
type Summary struct {
	RunID     ulid.ULID
	Operation Operation
	// Target is the requested range, generation or id.
	Target        string
	Attempted     int
	Succeeded     int
	Failed        int
	Skipped       int
	Deleted       int
	RecordsBefore int
	RecordsAfter  int
	Canceled      bool
	StartedAt     time.Time
	Duration      time.Duration
	// Failures holds the failure reason of every failed id.
	Failures map[int]string
}

func newSummary(op Operation, target string, now time.Time) *Summary {
	return &Summary{
		RunID:     ulid.Make(),
		Operation: op,
		Target:    target,
		StartedAt: now,
		Failures:  make(map[int]string),
	}
}

// NetChange is the number of records the run added.
func (s *Summary) NetChange() int {
	return s.RecordsAfter - s.RecordsBefore
}

// FailedIDs returns the failed ids in ascending order.
func (s *Summary) FailedIDs() []int {
	ids := make([]int, 0, len(s.Failures))
	for id := range s.Failures {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Summary) recordFailure(id int, err error) {
	s.Failed++
	s.Failures[id] = err.Error()
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s %s: attempted=%d succeeded=%d failed=%d skipped=%d duration=%s",
		s.Operation, s.Target, s.Attempted, s.Succeeded, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond))
}
