package validation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"gridsmith/internal/records"
)

func validSnapshot() records.Snapshot {
	return records.Snapshot{
		Clients: records.ClientTable(
			records.ClientRecord{ClientID: "C1", ClientName: "Acme", PriorityLevel: 3, RequestedTaskIDs: []string{"T1"}, GroupTag: "alpha"},
			records.ClientRecord{ClientID: "C2", ClientName: "Globex", PriorityLevel: 5, GroupTag: "beta"},
		),
		Workers: records.WorkerTable(
			records.WorkerRecord{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}, AvailableSlots: []int{1, 2, 3}, MaxLoadPerPhase: 2, WorkerGroup: "g1", QualificationLevel: "senior"},
		),
		Tasks: records.TaskTable(
			records.TaskRecord{TaskID: "T1", TaskName: "Assemble", Category: "build", Duration: 2, RequiredSkills: []string{"welding"}, PreferredPhases: []int{1, 2}, MaxConcurrent: 1},
		),
	}
}

func TestValidate_CleanSnapshotHasNoFindings(t *testing.T) {
	errs := NewEngine().Validate(validSnapshot())
	require.Empty(t, errs)
}

func TestValidate_EmptyCollectionsProduceZeroErrors(t *testing.T) {
	errs := NewEngine().Validate(records.Snapshot{})
	require.NotNil(t, errs)
	require.Empty(t, errs)
}

func TestValidate_DuplicateIDs(t *testing.T) {
	snap := validSnapshot()
	snap.Clients = records.ClientTable(
		records.ClientRecord{ClientID: "C1", ClientName: "Acme", PriorityLevel: 3, GroupTag: "a"},
		records.ClientRecord{ClientID: "C1", ClientName: "Acme again", PriorityLevel: 3, GroupTag: "a"},
		records.ClientRecord{ClientID: "C1", ClientName: "Acme thrice", PriorityLevel: 3, GroupTag: "a"},
	)

	errs := NewEngine().Validate(snap)

	var dupes []records.ValidationError
	for _, e := range errs {
		if e.Kind == records.KindDuplicateID {
			dupes = append(dupes, e)
		}
	}
	// One finding per occurrence beyond the first.
	require.Len(t, dupes, 2)
	require.Equal(t, 1, dupes[0].Row)
	require.Equal(t, 2, dupes[1].Row)
	for _, d := range dupes {
		require.Equal(t, records.SeverityError, d.Severity)
		require.Equal(t, "ClientID", d.Column)
	}
}

func TestValidate_UnknownReferenceColumnName(t *testing.T) {
	snap := validSnapshot()
	snap.Clients = records.ClientTable(
		records.ClientRecord{ClientID: "C1", ClientName: "Acme", PriorityLevel: 3, RequestedTaskIDs: []string{"T99"}, GroupTag: "a"},
	)

	errs := NewEngine().Validate(snap)

	found := false
	for _, e := range errs {
		if e.Kind == records.KindUnknownReference {
			found = true
			require.Equal(t, "RequestedTaskIDs", e.Column)
			require.Equal(t, records.EntityClient, e.Entity)
			require.Equal(t, 0, e.Row)
			require.Equal(t, records.SeverityError, e.Severity)
		}
	}
	require.True(t, found, "expected an UnknownReference finding for T99")
}

func TestValidate_OverloadedWorkerIsWarning(t *testing.T) {
	snap := validSnapshot()
	snap.Workers = records.WorkerTable(
		records.WorkerRecord{WorkerID: "W1", WorkerName: "Ada", Skills: []string{"welding"}, AvailableSlots: []int{1, 2}, MaxLoadPerPhase: 4, WorkerGroup: "g1", QualificationLevel: "senior"},
	)

	errs := NewEngine().Validate(snap)

	found := false
	for _, e := range errs {
		if e.Kind == records.KindOverloadedWorker {
			found = true
			require.Equal(t, records.SeverityWarning, e.Severity)
		}
	}
	require.True(t, found, "expected an OverloadedWorker warning")
}

func TestValidate_Idempotent(t *testing.T) {
	snap := validSnapshot()
	// Make the snapshot dirty so the lists are non-trivial.
	snap.Clients.Rows[0][records.ColPriorityLevel] = float64(9)
	snap.Clients.Rows[1][records.ColRequestedTaskIDs] = []any{"T404"}

	engine := NewEngine()
	first := engine.Validate(snap)
	second := engine.Validate(snap)

	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validation passes differ (-first +second):\n%s", diff)
	}

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.True(t, bytes.Equal(firstJSON, secondJSON), "passes over an unchanged snapshot must be byte-identical")
}

func TestValidate_RuleGroupOrdering(t *testing.T) {
	snap := validSnapshot()
	// Trigger a duplicate-ids finding (rule 2) and a numeric-bounds finding
	// (rule 4) and check catalog-declaration order in the output.
	snap.Tasks = records.TaskTable(
		records.TaskRecord{TaskID: "T1", TaskName: "A", Category: "c", Duration: 0, RequiredSkills: []string{"welding"}, MaxConcurrent: 1},
		records.TaskRecord{TaskID: "T1", TaskName: "B", Category: "c", Duration: 1, RequiredSkills: []string{"welding"}, MaxConcurrent: 1},
	)

	errs := NewEngine().Validate(snap)

	dupIdx, rangeIdx := -1, -1
	for i, e := range errs {
		switch e.Kind {
		case records.KindDuplicateID:
			dupIdx = i
		case records.KindBelowMinimum:
			rangeIdx = i
		}
	}
	require.GreaterOrEqual(t, dupIdx, 0)
	require.GreaterOrEqual(t, rangeIdx, 0)
	require.Less(t, dupIdx, rangeIdx, "duplicate-ids findings must precede numeric-bounds findings")
}

func TestValidate_PanickingRuleIsContained(t *testing.T) {
	engine := NewEngineWithRules([]Rule{
		{Name: "boom", Check: func(records.Snapshot) []records.ValidationError { panic("boom") }},
		{Name: "ok", Check: func(records.Snapshot) []records.ValidationError {
			return []records.ValidationError{records.NewValidationError(records.KindDuplicateID, records.SeverityError, records.EntityClient, 0, "ClientID", "dup")}
		}},
	})

	errs := engine.Validate(records.Snapshot{})
	require.Len(t, errs, 1)
}

func TestSummarize(t *testing.T) {
	errs := []records.ValidationError{
		{Severity: records.SeverityError},
		{Severity: records.SeverityError},
		{Severity: records.SeverityWarning},
	}
	s := Summarize(errs)
	require.Equal(t, Summary{Errors: 2, Warnings: 1}, s)
}
