// Package records defines the tabular record model shared by the validation
// engine, the mediator-backed assist features, and the HTTP boundary.
// Uploaded data arrives untrusted: rows are loosely typed maps decoded from
// spreadsheets by an external collaborator, and the column set is declared by
// that collaborator rather than inferred from the rows.
package records

// Entity identifies one of the three record collections.
type Entity string

const (
	EntityClient Entity = "client"
	EntityWorker Entity = "worker"
	EntityTask   Entity = "task"
)

// Row is a single decoded spreadsheet row. Values are whatever the upload
// collaborator produced: strings, numbers, slices, or nil for absent cells.
type Row map[string]any

// Table holds one entity's rows plus the declared column set.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Snapshot is an immutable view of the three collections handed to the
// validation engine. The engine never mutates it and never retains it.
type Snapshot struct {
	Clients Table `json:"clients"`
	Workers Table `json:"workers"`
	Tasks   Table `json:"tasks"`
}

// Tables returns the three collections in entity order.
func (s Snapshot) Tables() []struct {
	Entity Entity
	Table  Table
} {
	return []struct {
		Entity Entity
		Table  Table
	}{
		{EntityClient, s.Clients},
		{EntityWorker, s.Workers},
		{EntityTask, s.Tasks},
	}
}

// Column names of the fixed domain schema.
const (
	ColClientID           = "ClientID"
	ColClientName         = "ClientName"
	ColPriorityLevel      = "PriorityLevel"
	ColRequestedTaskIDs   = "RequestedTaskIDs"
	ColGroupTag           = "GroupTag"
	ColAttributesJSON     = "AttributesJSON"
	ColWorkerID           = "WorkerID"
	ColWorkerName         = "WorkerName"
	ColSkills             = "Skills"
	ColAvailableSlots     = "AvailableSlots"
	ColMaxLoadPerPhase    = "MaxLoadPerPhase"
	ColWorkerGroup        = "WorkerGroup"
	ColQualificationLevel = "QualificationLevel"
	ColTaskID             = "TaskID"
	ColTaskName           = "TaskName"
	ColCategory           = "Category"
	ColDuration           = "Duration"
	ColRequiredSkills     = "RequiredSkills"
	ColPreferredPhases    = "PreferredPhases"
	ColMaxConcurrent      = "MaxConcurrent"
)

// RequiredColumns lists the columns each entity must declare.
var RequiredColumns = map[Entity][]string{
	EntityClient: {ColClientID, ColClientName, ColPriorityLevel, ColRequestedTaskIDs, ColGroupTag},
	EntityWorker: {ColWorkerID, ColWorkerName, ColSkills, ColAvailableSlots, ColMaxLoadPerPhase, ColWorkerGroup, ColQualificationLevel},
	EntityTask:   {ColTaskID, ColTaskName, ColCategory, ColDuration, ColRequiredSkills, ColPreferredPhases, ColMaxConcurrent},
}

// IDColumn maps each entity to its primary identifier column.
var IDColumn = map[Entity]string{
	EntityClient: ColClientID,
	EntityWorker: ColWorkerID,
	EntityTask:   ColTaskID,
}

// ArrayElem declares the element type of an array-valued column.
type ArrayElem int

const (
	ElemString ArrayElem = iota
	ElemNumber
)

// ArrayColumns declares the array-valued columns per entity.
var ArrayColumns = map[Entity]map[string]ArrayElem{
	EntityClient: {ColRequestedTaskIDs: ElemString},
	EntityWorker: {ColSkills: ElemString, ColAvailableSlots: ElemNumber},
	EntityTask:   {ColRequiredSkills: ElemString, ColPreferredPhases: ElemNumber},
}

// NumericBound declares the allowed domain of a numeric column. Max < Min
// means unbounded above.
type NumericBound struct {
	Min float64
	Max float64
}

// NumericColumns declares the bounded numeric columns per entity.
var NumericColumns = map[Entity]map[string]NumericBound{
	EntityClient: {ColPriorityLevel: {Min: 1, Max: 5}},
	EntityWorker: {ColMaxLoadPerPhase: {Min: 1, Max: -1}},
	EntityTask:   {ColDuration: {Min: 1, Max: -1}, ColMaxConcurrent: {Min: 1, Max: -1}},
}
