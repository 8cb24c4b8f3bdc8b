package assist

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gridsmith/internal/logging"
	"gridsmith/internal/provider"
	"gridsmith/internal/records"
	"gridsmith/internal/structured"
)

// ClientSource resolves a provider client. Resolution happens per call, so a
// config change or backend failure is isolated to the calls that observe it.
type ClientSource func() (provider.Client, error)

// correctionConcurrency bounds the correction sweep; each item is an
// independent mediator call and the backends throttle well before the CPU
// does.
const correctionConcurrency = 4

// Assistant exposes the five AI-assisted features over one mediator.
type Assistant struct {
	mediator *structured.Mediator
	clients  ClientSource
}

// NewAssistant builds an assistant.
func NewAssistant(mediator *structured.Mediator, clients ClientSource) *Assistant {
	return &Assistant{mediator: mediator, clients: clients}
}

// SearchFilter is one translated search predicate.
type SearchFilter struct {
	Entity   string `json:"entity"`
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// BusinessRule is a synthesized or suggested allocation rule.
type BusinessRule struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Tasks       []string       `json:"tasks,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Confidence  float64        `json:"confidence,omitempty"`
}

// MapColumns maps uploaded sheet headers onto canonical column names.
func (a *Assistant) MapColumns(ctx context.Context, entity records.Entity, headers []string) (map[string]string, error) {
	client, err := a.clients()
	if err != nil {
		return nil, err
	}
	value, err := a.mediator.Generate(ctx, client, columnMappingPrompt(entity, headers), columnMappingSchema)
	if err != nil {
		return nil, err
	}
	raw, _ := value["mapping"].(map[string]any)
	mapping := make(map[string]string, len(raw))
	for header, col := range raw {
		if name, ok := col.(string); ok {
			mapping[header] = name
		}
	}
	logging.Assist("column mapping: entity=%s mapped=%d/%d", entity, len(mapping), len(headers))
	return mapping, nil
}

// TranslateSearch turns a natural-language query into a filter.
func (a *Assistant) TranslateSearch(ctx context.Context, query string) (SearchFilter, error) {
	var filter SearchFilter
	client, err := a.clients()
	if err != nil {
		return filter, err
	}
	if err := a.mediator.GenerateAs(ctx, client, searchFilterPrompt(query), searchFilterSchema, &filter); err != nil {
		return filter, err
	}
	logging.Assist("search translation: %q -> %s.%s %s %q", query, filter.Entity, filter.Column, filter.Operator, filter.Value)
	return filter, nil
}

// SynthesizeRule turns a natural-language rule description into a rule.
func (a *Assistant) SynthesizeRule(ctx context.Context, text string) (BusinessRule, error) {
	var rule BusinessRule
	client, err := a.clients()
	if err != nil {
		return rule, err
	}
	if err := a.mediator.GenerateAs(ctx, client, ruleSynthesisPrompt(text), ruleSynthesisSchema, &rule); err != nil {
		return rule, err
	}
	return rule, nil
}

// SuggestRules proposes rules worth adding for the given snapshot.
func (a *Assistant) SuggestRules(ctx context.Context, snap records.Snapshot) ([]BusinessRule, error) {
	client, err := a.clients()
	if err != nil {
		return nil, err
	}
	var out struct {
		Rules []BusinessRule `json:"rules"`
	}
	if err := a.mediator.GenerateAs(ctx, client, ruleSuggestionsPrompt(snap), ruleSuggestionsSchema, &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

// SuggestCorrections sweeps error-severity findings and proposes field-level
// repairs. Items run concurrently; a failed item degrades to no suggestion
// for that finding rather than failing the sweep.
func (a *Assistant) SuggestCorrections(ctx context.Context, snap records.Snapshot, errs []records.ValidationError) ([]records.CorrectionSuggestion, error) {
	client, err := a.clients()
	if err != nil {
		return nil, err
	}

	results := make([]*records.CorrectionSuggestion, len(errs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(correctionConcurrency)

	for i, verr := range errs {
		if verr.Severity != records.SeverityError || verr.Row < 0 {
			continue // aggregate and warning findings have no row to repair
		}
		g.Go(func() error {
			suggestion, err := a.correctOne(gctx, client, snap, verr)
			if err != nil {
				logging.AssistDebug("correction skipped for %s: %v", verr.ID, err)
				return nil
			}
			results[i] = suggestion
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suggestions := make([]records.CorrectionSuggestion, 0, len(errs))
	for _, s := range results {
		if s != nil {
			suggestions = append(suggestions, *s)
		}
	}
	logging.Assist("correction sweep: %d findings, %d suggestions", len(errs), len(suggestions))
	return suggestions, nil
}

func (a *Assistant) correctOne(ctx context.Context, client provider.Client, snap records.Snapshot, verr records.ValidationError) (*records.CorrectionSuggestion, error) {
	row, err := rowFor(snap, verr)
	if err != nil {
		return nil, err
	}

	var proposed struct {
		Column     string  `json:"column"`
		OldValue   string  `json:"old_value"`
		NewValue   string  `json:"new_value"`
		Confidence float64 `json:"confidence"`
		AutoApply  bool    `json:"auto_apply"`
	}
	if err := a.mediator.GenerateAs(ctx, client, correctionPrompt(verr, row), correctionSchema, &proposed); err != nil {
		return nil, err
	}
	if proposed.Confidence < 0 || proposed.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]", proposed.Confidence)
	}

	suggestion := records.NewCorrectionSuggestion(verr.ID, verr.Entity, verr.Row, proposed.Column)
	suggestion.OldValue = proposed.OldValue
	suggestion.NewValue = proposed.NewValue
	suggestion.Confidence = proposed.Confidence
	suggestion.AutoApply = proposed.AutoApply
	return &suggestion, nil
}

func rowFor(snap records.Snapshot, verr records.ValidationError) (records.Row, error) {
	var table records.Table
	switch verr.Entity {
	case records.EntityClient:
		table = snap.Clients
	case records.EntityWorker:
		table = snap.Workers
	case records.EntityTask:
		table = snap.Tasks
	default:
		return nil, fmt.Errorf("unknown entity %q", verr.Entity)
	}
	if verr.Row < 0 || verr.Row >= len(table.Rows) {
		return nil, fmt.Errorf("row %d out of range for %s", verr.Row, verr.Entity)
	}
	return table.Rows[verr.Row], nil
}
