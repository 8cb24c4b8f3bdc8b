package records

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrorKind is the closed taxonomy of validation findings.
type ErrorKind string

const (
	KindMissingColumns      ErrorKind = "MissingColumns"
	KindDuplicateID         ErrorKind = "DuplicateId"
	KindMalformedArray      ErrorKind = "MalformedArray"
	KindInvalidArrayElement ErrorKind = "InvalidArrayElement"
	KindOutOfRange          ErrorKind = "OutOfRange"
	KindBelowMinimum        ErrorKind = "BelowMinimum"
	KindInvalidJSON         ErrorKind = "InvalidJSON"
	KindUnknownReference    ErrorKind = "UnknownReference"
	KindOverloadedWorker    ErrorKind = "OverloadedWorker"
	KindUncoveredSkill      ErrorKind = "UncoveredSkill"
)

// Severity distinguishes export-blocking findings from advisories. The
// engine only reports severity; gating is the caller's policy.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is one finding from a validation pass. Values are
// immutable: every pass produces a fresh list, nothing is patched in place.
type ValidationError struct {
	ID          string    `json:"id"`
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	Entity      Entity    `json:"entity"`
	Row         int       `json:"row"` // -1 for aggregate findings
	Column      string    `json:"column,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// validationNamespace seeds deterministic error IDs. Identical findings get
// identical IDs, so repeated passes over an unchanged snapshot are
// byte-identical.
var validationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gridsmith.validation"))

// NewValidationError builds a finding with a content-derived ID.
func NewValidationError(kind ErrorKind, sev Severity, entity Entity, row int, column, message string) ValidationError {
	seed := fmt.Sprintf("%s|%s|%s|%d|%s|%s", kind, sev, entity, row, column, message)
	return ValidationError{
		ID:       uuid.NewSHA1(validationNamespace, []byte(seed)).String(),
		Kind:     kind,
		Message:  message,
		Severity: sev,
		Entity:   entity,
		Row:      row,
		Column:   column,
	}
}

// WithSuggestions returns a copy carrying remediation hints.
func (e ValidationError) WithSuggestions(suggestions ...string) ValidationError {
	e.Suggestions = suggestions
	return e
}

// CorrectionSuggestion proposes a field-level repair for one finding.
type CorrectionSuggestion struct {
	ID         string  `json:"id"`
	ErrorID    string  `json:"error_id"`
	Entity     Entity  `json:"entity"`
	Row        int     `json:"row"`
	Column     string  `json:"column"`
	OldValue   string  `json:"old_value"`
	NewValue   string  `json:"new_value"`
	Confidence float64 `json:"confidence"`  // [0,1]
	AutoApply  bool    `json:"auto_apply"`  // safe to apply without review
}

// NewCorrectionSuggestion builds a suggestion with a random ID.
func NewCorrectionSuggestion(errorID string, entity Entity, row int, column string) CorrectionSuggestion {
	return CorrectionSuggestion{
		ID:      uuid.NewString(),
		ErrorID: errorID,
		Entity:  entity,
		Row:     row,
		Column:  column,
	}
}
