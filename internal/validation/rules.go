package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"gridsmith/internal/records"
)

// Rule is one independent validation check: a pure function of the snapshot.
// Rules never mutate the snapshot and never depend on each other; a rule that
// is missing its prerequisite columns degrades to silence for the affected
// table rather than failing the pass.
type Rule struct {
	Name  string
	Check func(records.Snapshot) []records.ValidationError
}

// Catalog returns the ordered rule list. Declaration order here is the only
// observable ordering guarantee between rule groups; each rule emits its
// findings in entity order, row-ascending.
func Catalog() []Rule {
	return []Rule{
		{Name: "required-columns", Check: checkRequiredColumns},
		{Name: "duplicate-ids", Check: checkDuplicateIDs},
		{Name: "array-fields", Check: checkArrayFields},
		{Name: "numeric-bounds", Check: checkNumericBounds},
		{Name: "attribute-json", Check: checkAttributeJSON},
		{Name: "task-references", Check: checkTaskReferences},
		{Name: "worker-capacity", Check: checkWorkerCapacity},
		{Name: "skill-coverage", Check: checkSkillCoverage},
	}
}

// checkRequiredColumns reports at most one aggregate finding per entity when
// any required column is absent. Empty tables are not findings: absence of
// data is not itself invalid.
func checkRequiredColumns(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	for _, et := range snap.Tables() {
		if len(et.Table.Rows) == 0 {
			continue
		}
		var missing []string
		for _, col := range records.RequiredColumns[et.Entity] {
			if !et.Table.HasColumn(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, records.NewValidationError(
				records.KindMissingColumns, records.SeverityError, et.Entity, -1, "",
				fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
			).WithSuggestions("Add the missing columns to the uploaded sheet or remap existing headers"))
		}
	}
	return errs
}

// checkDuplicateIDs reports one finding per duplicate occurrence beyond the
// first, per entity.
func checkDuplicateIDs(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	for _, et := range snap.Tables() {
		idCol := records.IDColumn[et.Entity]
		if !et.Table.HasColumn(idCol) {
			continue
		}
		seen := make(map[string]bool)
		for i, row := range et.Table.Rows {
			v, ok := provided(row, idCol)
			if !ok {
				continue
			}
			id, ok := asString(v)
			if !ok || strings.TrimSpace(id) == "" {
				continue
			}
			if seen[id] {
				errs = append(errs, records.NewValidationError(
					records.KindDuplicateID, records.SeverityError, et.Entity, i, idCol,
					fmt.Sprintf("duplicate %s %q", idCol, id),
				).WithSuggestions(fmt.Sprintf("Rename or remove the duplicate %s", idCol)))
				continue
			}
			seen[id] = true
		}
	}
	return errs
}

// checkArrayFields verifies that array-typed cells are well-formed sequences
// of the declared element type.
func checkArrayFields(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	for _, et := range snap.Tables() {
		for _, col := range sortedArrayColumns(et.Entity) {
			if !et.Table.HasColumn(col) {
				continue
			}
			elem := records.ArrayColumns[et.Entity][col]
			for i, row := range et.Table.Rows {
				v, ok := provided(row, col)
				if !ok {
					continue
				}
				items, ok := asArray(v)
				if !ok {
					errs = append(errs, records.NewValidationError(
						records.KindMalformedArray, records.SeverityError, et.Entity, i, col,
						fmt.Sprintf("%s is not a sequence", col),
					))
					continue
				}
				for j, item := range items {
					switch elem {
					case records.ElemNumber:
						if _, ok := asNumber(item); !ok {
							errs = append(errs, records.NewValidationError(
								records.KindInvalidArrayElement, records.SeverityError, et.Entity, i, col,
								fmt.Sprintf("%s[%d] is not a number: %v", col, j, item),
							))
						}
					case records.ElemString:
						s, ok := asString(item)
						if !ok || strings.TrimSpace(s) == "" {
							errs = append(errs, records.NewValidationError(
								records.KindInvalidArrayElement, records.SeverityError, et.Entity, i, col,
								fmt.Sprintf("%s[%d] is not a non-empty string: %v", col, j, item),
							))
						}
					}
				}
			}
		}
	}
	return errs
}

// checkNumericBounds enforces bounded ranges and minimum values on the
// declared numeric columns.
func checkNumericBounds(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	for _, et := range snap.Tables() {
		for _, col := range sortedNumericColumns(et.Entity) {
			if !et.Table.HasColumn(col) {
				continue
			}
			bound := records.NumericColumns[et.Entity][col]
			for i, row := range et.Table.Rows {
				v, ok := provided(row, col)
				if !ok {
					continue
				}
				n, ok := asNumber(v)
				if !ok {
					errs = append(errs, records.NewValidationError(
						records.KindOutOfRange, records.SeverityError, et.Entity, i, col,
						fmt.Sprintf("%s is not numeric: %v", col, v),
					))
					continue
				}
				switch {
				case bound.Max >= bound.Min && (n < bound.Min || n > bound.Max):
					errs = append(errs, records.NewValidationError(
						records.KindOutOfRange, records.SeverityError, et.Entity, i, col,
						fmt.Sprintf("%s %v outside [%v, %v]", col, n, bound.Min, bound.Max),
					).WithSuggestions(fmt.Sprintf("Set %s between %v and %v", col, bound.Min, bound.Max)))
				case bound.Max < bound.Min && n < bound.Min:
					errs = append(errs, records.NewValidationError(
						records.KindBelowMinimum, records.SeverityError, et.Entity, i, col,
						fmt.Sprintf("%s %v below minimum %v", col, n, bound.Min),
					).WithSuggestions(fmt.Sprintf("Set %s to at least %v", col, bound.Min)))
				}
			}
		}
	}
	return errs
}

// checkAttributeJSON requires the client attributes blob, when present and
// non-empty, to be parseable JSON.
func checkAttributeJSON(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	if !snap.Clients.HasColumn(records.ColAttributesJSON) {
		return nil
	}
	for i, row := range snap.Clients.Rows {
		v, ok := provided(row, records.ColAttributesJSON)
		if !ok {
			continue
		}
		switch blob := v.(type) {
		case string:
			if strings.TrimSpace(blob) == "" {
				continue
			}
			if !json.Valid([]byte(blob)) {
				errs = append(errs, records.NewValidationError(
					records.KindInvalidJSON, records.SeverityError, records.EntityClient, i, records.ColAttributesJSON,
					"AttributesJSON is not valid JSON",
				).WithSuggestions("Fix the JSON syntax or clear the cell"))
			}
		case map[string]any, []any:
			// Already structured: the upload collaborator decoded it.
		default:
			errs = append(errs, records.NewValidationError(
				records.KindInvalidJSON, records.SeverityError, records.EntityClient, i, records.ColAttributesJSON,
				fmt.Sprintf("AttributesJSON has unsupported type %T", v),
			))
		}
	}
	return errs
}

// checkTaskReferences verifies that every client-requested task ID resolves
// to an existing task.
func checkTaskReferences(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	if !snap.Clients.HasColumn(records.ColRequestedTaskIDs) {
		return nil
	}
	known := make(map[string]bool)
	if snap.Tasks.HasColumn(records.ColTaskID) {
		for _, row := range snap.Tasks.Rows {
			if v, ok := provided(row, records.ColTaskID); ok {
				if id, ok := asString(v); ok {
					known[id] = true
				}
			}
		}
	}
	for i, row := range snap.Clients.Rows {
		v, ok := provided(row, records.ColRequestedTaskIDs)
		if !ok {
			continue
		}
		items, ok := asArray(v)
		if !ok {
			continue // malformed arrays are the array rule's finding
		}
		for _, item := range items {
			id, ok := asString(item)
			if !ok || id == "" {
				continue
			}
			if !known[id] {
				errs = append(errs, records.NewValidationError(
					records.KindUnknownReference, records.SeverityError, records.EntityClient, i, records.ColRequestedTaskIDs,
					fmt.Sprintf("requested task %q does not exist", id),
				).WithSuggestions(fmt.Sprintf("Remove %q or add a task with that TaskID", id)))
			}
		}
	}
	return errs
}

// checkWorkerCapacity warns when a worker's per-phase load exceeds its slot
// count. Under-slotted workers are legitimate, so this never blocks.
func checkWorkerCapacity(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	if !snap.Workers.HasColumn(records.ColAvailableSlots) || !snap.Workers.HasColumn(records.ColMaxLoadPerPhase) {
		return nil
	}
	for i, row := range snap.Workers.Rows {
		slotsVal, ok := provided(row, records.ColAvailableSlots)
		if !ok {
			continue
		}
		loadVal, ok := provided(row, records.ColMaxLoadPerPhase)
		if !ok {
			continue
		}
		slots, ok := asArray(slotsVal)
		if !ok {
			continue
		}
		load, ok := asNumber(loadVal)
		if !ok {
			continue
		}
		if load > float64(len(slots)) {
			errs = append(errs, records.NewValidationError(
				records.KindOverloadedWorker, records.SeverityWarning, records.EntityWorker, i, records.ColMaxLoadPerPhase,
				fmt.Sprintf("MaxLoadPerPhase %v exceeds %d available slots", load, len(slots)),
			).WithSuggestions("Lower MaxLoadPerPhase or add AvailableSlots"))
		}
	}
	return errs
}

// checkSkillCoverage warns about task-required skills no worker offers.
// Coverage gaps are advisories: skills may be acquired later.
func checkSkillCoverage(snap records.Snapshot) []records.ValidationError {
	var errs []records.ValidationError
	if !snap.Tasks.HasColumn(records.ColRequiredSkills) {
		return nil
	}
	offered := make(map[string]bool)
	if snap.Workers.HasColumn(records.ColSkills) {
		for _, row := range snap.Workers.Rows {
			v, ok := provided(row, records.ColSkills)
			if !ok {
				continue
			}
			if skills, ok := asArray(v); ok {
				for _, s := range skills {
					if name, ok := asString(s); ok {
						offered[name] = true
					}
				}
			}
		}
	}
	for i, row := range snap.Tasks.Rows {
		v, ok := provided(row, records.ColRequiredSkills)
		if !ok {
			continue
		}
		skills, ok := asArray(v)
		if !ok {
			continue
		}
		for _, s := range skills {
			name, ok := asString(s)
			if !ok || name == "" {
				continue
			}
			if !offered[name] {
				errs = append(errs, records.NewValidationError(
					records.KindUncoveredSkill, records.SeverityWarning, records.EntityTask, i, records.ColRequiredSkills,
					fmt.Sprintf("no worker offers required skill %q", name),
				).WithSuggestions(fmt.Sprintf("Add %q to a worker's Skills or drop the requirement", name)))
			}
		}
	}
	return errs
}

// sortedArrayColumns returns the declared array columns of an entity in the
// entity's canonical column order, so findings are stable across passes.
func sortedArrayColumns(entity records.Entity) []string {
	var cols []string
	for _, col := range records.RequiredColumns[entity] {
		if _, ok := records.ArrayColumns[entity][col]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// sortedNumericColumns mirrors sortedArrayColumns for numeric columns.
func sortedNumericColumns(entity records.Entity) []string {
	var cols []string
	for _, col := range records.RequiredColumns[entity] {
		if _, ok := records.NumericColumns[entity][col]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}
