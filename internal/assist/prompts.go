package assist

import (
	"encoding/json"
	"fmt"
	"strings"

	"gridsmith/internal/records"
)

// domainPreamble anchors every prompt in the fixed domain schema so the
// model maps onto real columns instead of inventing its own.
const domainPreamble = `You work with three tabular datasets:
- clients: ClientID, ClientName, PriorityLevel (1-5), RequestedTaskIDs, GroupTag, AttributesJSON
- workers: WorkerID, WorkerName, Skills, AvailableSlots, MaxLoadPerPhase, WorkerGroup, QualificationLevel
- tasks: TaskID, TaskName, Category, Duration, RequiredSkills, PreferredPhases, MaxConcurrent`

func columnMappingPrompt(entity records.Entity, headers []string) string {
	return fmt.Sprintf(`%s

An uploaded %s sheet has these headers:
%s

Map each uploaded header to its canonical %s column name. Put headers that
match no canonical column into "unmapped".`,
		domainPreamble, entity, strings.Join(headers, ", "), entity)
}

func searchFilterPrompt(query string) string {
	return fmt.Sprintf(`%s

Translate this natural-language search into a single filter.
Valid operators: eq, neq, gt, gte, lt, lte, contains.

Search: %s`, domainPreamble, query)
}

func ruleSynthesisPrompt(text string) string {
	return fmt.Sprintf(`%s

Translate this natural-language business rule into a structured rule.
Valid rule types: coRun, loadLimit, phaseWindow, slotRestriction, patternMatch.

Rule: %s`, domainPreamble, text)
}

func ruleSuggestionsPrompt(snap records.Snapshot) string {
	return fmt.Sprintf(`%s

Given this data summary, suggest business rules worth adding.
Valid rule types: coRun, loadLimit, phaseWindow, slotRestriction, patternMatch.

Summary: %d clients, %d workers, %d tasks.
Sample client rows: %s
Sample task rows: %s`,
		domainPreamble,
		len(snap.Clients.Rows), len(snap.Workers.Rows), len(snap.Tasks.Rows),
		sampleRows(snap.Clients, 3), sampleRows(snap.Tasks, 3))
}

func correctionPrompt(verr records.ValidationError, row records.Row) string {
	rowJSON, _ := json.Marshal(row)
	return fmt.Sprintf(`%s

A validation pass found this problem in a %s row:
  kind: %s
  column: %s
  message: %s

The row:
%s

Propose a single field-level fix: which column to change, the corrected
value (as a string), a confidence in [0,1], and whether the fix is safe to
apply automatically without human review.`,
		domainPreamble, verr.Entity, verr.Kind, verr.Column, verr.Message, rowJSON)
}

func sampleRows(t records.Table, n int) string {
	if len(t.Rows) < n {
		n = len(t.Rows)
	}
	data, _ := json.Marshal(t.Rows[:n])
	return string(data)
}
