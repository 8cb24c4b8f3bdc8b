package validation

import (
	"testing"

	"gridsmith/internal/records"
)

func kinds(errs []records.ValidationError) []records.ErrorKind {
	out := make([]records.ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func hasKind(errs []records.ValidationError, kind records.ErrorKind) bool {
	for _, e := range errs {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckRequiredColumns(t *testing.T) {
	tests := []struct {
		name      string
		table     records.Table
		wantCount int
	}{
		{
			name:      "empty table is not a finding",
			table:     records.Table{},
			wantCount: 0,
		},
		{
			name: "rows without declared columns aggregate to one finding",
			table: records.Table{
				Columns: []string{records.ColClientID},
				Rows:    []records.Row{{records.ColClientID: "C1"}},
			},
			wantCount: 1,
		},
		{
			name: "full column set passes",
			table: records.Table{
				Columns: records.RequiredColumns[records.EntityClient],
				Rows:    []records.Row{{records.ColClientID: "C1"}},
			},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := checkRequiredColumns(records.Snapshot{Clients: tt.table})
			if len(errs) != tt.wantCount {
				t.Fatalf("got %d findings %v, want %d", len(errs), kinds(errs), tt.wantCount)
			}
			if tt.wantCount > 0 {
				if errs[0].Row != -1 {
					t.Errorf("aggregate finding should carry row -1, got %d", errs[0].Row)
				}
				if errs[0].Kind != records.KindMissingColumns {
					t.Errorf("kind = %s, want MissingColumns", errs[0].Kind)
				}
			}
		})
	}
}

func TestCheckArrayFields(t *testing.T) {
	workers := records.Table{
		Columns: records.RequiredColumns[records.EntityWorker],
		Rows: []records.Row{
			{records.ColSkills: []any{"welding", "rigging"}, records.ColAvailableSlots: []any{float64(1), float64(2)}},
			{records.ColSkills: 42, records.ColAvailableSlots: []any{"three"}},
			{records.ColSkills: []any{""}, records.ColAvailableSlots: "1,2,3"},
			{records.ColSkills: nil, records.ColAvailableSlots: nil}, // absent cells are skipped
		},
	}

	errs := checkArrayFields(records.Snapshot{Workers: workers})

	if !hasKind(errs, records.KindMalformedArray) {
		t.Errorf("expected MalformedArray for non-sequence Skills, got %v", kinds(errs))
	}
	if !hasKind(errs, records.KindInvalidArrayElement) {
		t.Errorf("expected InvalidArrayElement findings, got %v", kinds(errs))
	}

	// Row 2: "" skill element is invalid, but "1,2,3" coerces to numbers.
	for _, e := range errs {
		if e.Row == 2 && e.Column == records.ColAvailableSlots {
			t.Errorf("comma-separated numeric cell should coerce cleanly: %s", e.Message)
		}
		if e.Row == 3 {
			t.Errorf("absent cells must be skipped, got finding %s", e.Message)
		}
	}
}

func TestCheckNumericBounds(t *testing.T) {
	tests := []struct {
		name     string
		priority any
		want     records.ErrorKind
	}{
		{"in range", float64(3), ""},
		{"string coercion in range", "2", ""},
		{"above max", float64(6), records.KindOutOfRange},
		{"below min", float64(0), records.KindOutOfRange},
		{"not numeric", "high", records.KindOutOfRange},
		{"absent is skipped", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := records.Snapshot{Clients: records.Table{
				Columns: records.RequiredColumns[records.EntityClient],
				Rows:    []records.Row{{records.ColPriorityLevel: tt.priority}},
			}}
			errs := checkNumericBounds(snap)
			if tt.want == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected findings: %v", kinds(errs))
				}
				return
			}
			if len(errs) != 1 || errs[0].Kind != tt.want {
				t.Fatalf("got %v, want one %s", kinds(errs), tt.want)
			}
		})
	}
}

func TestCheckNumericBounds_BelowMinimum(t *testing.T) {
	snap := records.Snapshot{Tasks: records.Table{
		Columns: records.RequiredColumns[records.EntityTask],
		Rows:    []records.Row{{records.ColDuration: float64(0), records.ColMaxConcurrent: float64(1)}},
	}}
	errs := checkNumericBounds(snap)
	if len(errs) != 1 || errs[0].Kind != records.KindBelowMinimum {
		t.Fatalf("got %v, want one BelowMinimum", kinds(errs))
	}
	if errs[0].Column != records.ColDuration {
		t.Errorf("column = %s, want Duration", errs[0].Column)
	}
}

func TestCheckAttributeJSON(t *testing.T) {
	cols := append(append([]string(nil), records.RequiredColumns[records.EntityClient]...), records.ColAttributesJSON)
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"valid object", `{"tier":"gold"}`, false},
		{"valid array", `[1,2]`, false},
		{"empty string skipped", "", false},
		{"garbage", `{tier: gold}`, true},
		{"already structured", map[string]any{"tier": "gold"}, false},
		{"unsupported type", 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := records.Snapshot{Clients: records.Table{
				Columns: cols,
				Rows:    []records.Row{{records.ColAttributesJSON: tt.value}},
			}}
			errs := checkAttributeJSON(snap)
			if tt.wantErr && (len(errs) != 1 || errs[0].Kind != records.KindInvalidJSON) {
				t.Fatalf("got %v, want one InvalidJSON", kinds(errs))
			}
			if !tt.wantErr && len(errs) != 0 {
				t.Fatalf("unexpected findings: %v", kinds(errs))
			}
		})
	}
}

func TestCheckTaskReferences_DegradedWithoutColumn(t *testing.T) {
	// No RequestedTaskIDs column declared: the rule stays silent instead of
	// crashing or guessing.
	snap := records.Snapshot{
		Clients: records.Table{
			Columns: []string{records.ColClientID},
			Rows:    []records.Row{{records.ColClientID: "C1"}},
		},
	}
	if errs := checkTaskReferences(snap); len(errs) != 0 {
		t.Fatalf("expected degraded silence, got %v", kinds(errs))
	}
}

func TestCheckSkillCoverage(t *testing.T) {
	snap := records.Snapshot{
		Workers: records.WorkerTable(
			records.WorkerRecord{WorkerID: "W1", Skills: []string{"welding"}, AvailableSlots: []int{1}, MaxLoadPerPhase: 1},
		),
		Tasks: records.TaskTable(
			records.TaskRecord{TaskID: "T1", Duration: 1, RequiredSkills: []string{"welding", "plumbing"}, MaxConcurrent: 1},
		),
	}

	errs := checkSkillCoverage(snap)
	if len(errs) != 1 {
		t.Fatalf("got %v, want exactly one UncoveredSkill", kinds(errs))
	}
	e := errs[0]
	if e.Kind != records.KindUncoveredSkill || e.Severity != records.SeverityWarning {
		t.Errorf("got kind=%s severity=%s, want warning UncoveredSkill", e.Kind, e.Severity)
	}
	if e.Entity != records.EntityTask || e.Column != records.ColRequiredSkills {
		t.Errorf("finding should point at the task's RequiredSkills, got %s.%s", e.Entity, e.Column)
	}
}

func TestCheckWorkerCapacity_ExactFitIsFine(t *testing.T) {
	snap := records.Snapshot{
		Workers: records.WorkerTable(
			records.WorkerRecord{WorkerID: "W1", Skills: []string{"x"}, AvailableSlots: []int{1, 2}, MaxLoadPerPhase: 2},
		),
	}
	if errs := checkWorkerCapacity(snap); len(errs) != 0 {
		t.Fatalf("exact slot fit should not warn, got %v", kinds(errs))
	}
}
