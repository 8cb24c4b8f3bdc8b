package records

// ClientRecord is the typed form of a client row.
type ClientRecord struct {
	ClientID         string   `json:"ClientID"`
	ClientName       string   `json:"ClientName"`
	PriorityLevel    int      `json:"PriorityLevel"`
	RequestedTaskIDs []string `json:"RequestedTaskIDs"`
	GroupTag         string   `json:"GroupTag"`
	AttributesJSON   string   `json:"AttributesJSON,omitempty"`
}

// Row converts the record back into its loose tabular form.
func (c ClientRecord) Row() Row {
	r := Row{
		ColClientID:         c.ClientID,
		ColClientName:       c.ClientName,
		ColPriorityLevel:    float64(c.PriorityLevel),
		ColRequestedTaskIDs: anySlice(c.RequestedTaskIDs),
		ColGroupTag:         c.GroupTag,
	}
	if c.AttributesJSON != "" {
		r[ColAttributesJSON] = c.AttributesJSON
	}
	return r
}

// WorkerRecord is the typed form of a worker row.
type WorkerRecord struct {
	WorkerID           string   `json:"WorkerID"`
	WorkerName         string   `json:"WorkerName"`
	Skills             []string `json:"Skills"`
	AvailableSlots     []int    `json:"AvailableSlots"`
	MaxLoadPerPhase    int      `json:"MaxLoadPerPhase"`
	WorkerGroup        string   `json:"WorkerGroup"`
	QualificationLevel string   `json:"QualificationLevel"`
}

// Row converts the record back into its loose tabular form.
func (w WorkerRecord) Row() Row {
	return Row{
		ColWorkerID:           w.WorkerID,
		ColWorkerName:         w.WorkerName,
		ColSkills:             anySlice(w.Skills),
		ColAvailableSlots:     anyInts(w.AvailableSlots),
		ColMaxLoadPerPhase:    float64(w.MaxLoadPerPhase),
		ColWorkerGroup:        w.WorkerGroup,
		ColQualificationLevel: w.QualificationLevel,
	}
}

// TaskRecord is the typed form of a task row.
type TaskRecord struct {
	TaskID          string   `json:"TaskID"`
	TaskName        string   `json:"TaskName"`
	Category        string   `json:"Category"`
	Duration        int      `json:"Duration"`
	RequiredSkills  []string `json:"RequiredSkills"`
	PreferredPhases []int    `json:"PreferredPhases"`
	MaxConcurrent   int      `json:"MaxConcurrent"`
}

// Row converts the record back into its loose tabular form.
func (t TaskRecord) Row() Row {
	return Row{
		ColTaskID:          t.TaskID,
		ColTaskName:        t.TaskName,
		ColCategory:        t.Category,
		ColDuration:        float64(t.Duration),
		ColRequiredSkills:  anySlice(t.RequiredSkills),
		ColPreferredPhases: anyInts(t.PreferredPhases),
		ColMaxConcurrent:   float64(t.MaxConcurrent),
	}
}

// ClientTable builds a full-schema table from typed client records.
func ClientTable(clients ...ClientRecord) Table {
	cols := append([]string(nil), RequiredColumns[EntityClient]...)
	cols = append(cols, ColAttributesJSON)
	t := Table{Columns: cols}
	for _, c := range clients {
		t.Rows = append(t.Rows, c.Row())
	}
	return t
}

// WorkerTable builds a full-schema table from typed worker records.
func WorkerTable(workers ...WorkerRecord) Table {
	t := Table{Columns: append([]string(nil), RequiredColumns[EntityWorker]...)}
	for _, w := range workers {
		t.Rows = append(t.Rows, w.Row())
	}
	return t
}

// TaskTable builds a full-schema table from typed task records.
func TaskTable(tasks ...TaskRecord) Table {
	t := Table{Columns: append([]string(nil), RequiredColumns[EntityTask]...)}
	for _, task := range tasks {
		t.Rows = append(t.Rows, task.Row())
	}
	return t
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func anyInts(ns []int) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = float64(n)
	}
	return out
}
