package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"
	"github.com/jacksonlee411/jobdesk/modules/association/domain/bindings"
	"github.com/jacksonlee411/jobdesk/modules/association/domain/ports"
	"github.com/jacksonlee411/jobdesk/modules/association/domain/types"
	"github.com/jacksonlee411/jobdesk/pkg/legacyenc"
	"github.com/jacksonlee411/jobdesk/pkg/selection"
	"go.uber.org/zap"
)

var ErrUnknownBinding = errors.New("association: unknown binding")

type Config struct {
	Binding bindings.Binding
	Options []types.Option
	// OnChange receives the members after every membership change.
	OnChange func(members []selection.ID)
	// OnPrimaryChange receives the primary whenever it changes; "" means
	// cleared.
	OnPrimaryChange func(primary selection.ID)
	Logger          *zap.Logger
}

// Editor keeps the selection of one association field in sync with user
// interaction and the host form. It is owned by a single form binding and is
// not safe for concurrent use.
type Editor struct {
	binding         bindings.Binding
	options         []types.Option
	optionIndex     map[selection.ID]int
	set             selection.Set
	report          legacyenc.Report
	rule            cel.Program
	onChange        func([]selection.ID)
	onPrimaryChange func(selection.ID)
	logger          *zap.Logger
}

func NewEditor(cfg Config) (*Editor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Editor{
		binding:         cfg.Binding,
		optionIndex:     make(map[selection.ID]int, len(cfg.Options)),
		set:             selection.New(cfg.Binding.TrackPrimary),
		onChange:        cfg.OnChange,
		onPrimaryChange: cfg.OnPrimaryChange,
		logger:          logger.With(zap.String("binding", cfg.Binding.Key)),
	}
	for _, opt := range cfg.Options {
		id := selection.Normalize(string(opt.ID))
		if id == "" {
			continue
		}
		if _, dup := e.optionIndex[id]; dup {
			continue
		}
		e.optionIndex[id] = len(e.options)
		e.options = append(e.options, types.Option{ID: id, Label: opt.Label})
	}
	if cfg.Binding.Rule != "" {
		program, err := loadOrCompileRule(cfg.Binding.Rule)
		if err != nil {
			return nil, fmt.Errorf("association: binding %s: rule: %w", cfg.Binding.Key, err)
		}
		e.rule = program
	}
	return e, nil
}

// NewEditorForBinding looks up a registered binding and loads its options from
// src. cfg.Binding and cfg.Options are overwritten.
func NewEditorForBinding(ctx context.Context, key string, src ports.OptionSource, cfg Config) (*Editor, error) {
	b, ok := bindings.LookupBinding(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBinding, key)
	}
	opts, err := src.ListOptions(ctx, b.DictCode)
	if err != nil {
		return nil, fmt.Errorf("association: binding %s: list options: %w", key, err)
	}
	cfg.Binding = b
	cfg.Options = opts
	return NewEditor(cfg)
}

func (e *Editor) Binding() bindings.Binding {
	return e.binding
}

func (e *Editor) Set() selection.Set {
	return e.set
}

func (e *Editor) LastReport() legacyenc.Report {
	return e.report
}

func (e *Editor) Options() []types.Option {
	return slices.Clone(e.options)
}

func (e *Editor) HasOption(id selection.ID) bool {
	_, ok := e.optionIndex[selection.Normalize(string(id))]
	return ok
}

// Toggle adds id when it is not selected and removes it otherwise. Adds of IDs
// outside a non-empty option list are ignored; removals always apply so stale
// legacy IDs can be cleared.
func (e *Editor) Toggle(id selection.ID) selection.Set {
	id = selection.Normalize(string(id))
	if id == "" {
		return e.set
	}
	if !e.set.Has(id) && len(e.options) > 0 && !e.HasOption(id) {
		e.logger.Debug("association toggle ignored unknown option", zap.String("id", string(id)))
		return e.set
	}
	e.apply(e.set.Toggle(id))
	return e.set
}

// SetPrimary designates a current member as primary. It fails with
// *selection.InvalidPrimaryCandidateError for non-members.
func (e *Editor) SetPrimary(id selection.ID) (selection.Set, error) {
	next, err := e.set.SetPrimary(id)
	if err != nil {
		return e.set, err
	}
	e.apply(next)
	return e.set, nil
}

// Reset clears the selection.
func (e *Editor) Reset() selection.Set {
	e.report = legacyenc.Report{}
	e.apply(selection.New(e.binding.TrackPrimary))
	return e.set
}

// Load replaces the selection with a persisted value. The primary field is
// reconciled into first position. Callbacks fire when the host's stored
// values need rewriting: the list was degraded, not canonical, or reordered,
// or the primary field differs from the reconciled primary.
func (e *Editor) Load(raw legacyenc.Encoding, primaryField string) selection.Set {
	ids, rep := legacyenc.Decode(raw)
	e.report = rep
	if rep.Degraded() {
		e.logger.Warn("association decode degraded",
			zap.String("declared", string(rep.Kind)),
			zap.String("decoded", string(rep.Decoded)),
			zap.Strings("reasons", rep.Reasons()),
			zap.String("detail", rep.String()),
		)
	}

	e.set = selection.Reconcile(ids, selection.ID(primaryField), e.binding.TrackPrimary)

	rewrite := rep.Degraded() || !slices.Equal(ids, e.set.Members())
	if !e.set.IsEmpty() && !rep.Canonical() {
		rewrite = true
	}
	if rewrite && e.onChange != nil {
		e.onChange(e.set.Members())
	}
	if e.binding.TrackPrimary && selection.Normalize(primaryField) != e.set.Primary() && e.onPrimaryChange != nil {
		e.onPrimaryChange(e.set.Primary())
	}
	return e.set
}

// LoadText classifies persisted column text and loads it.
func (e *Editor) LoadText(text string, primaryField string) selection.Set {
	return e.Load(legacyenc.Sniff(text), primaryField)
}

// Encode returns the canonical list column and the primary field to persist.
func (e *Editor) Encode() (list string, primary string) {
	return legacyenc.Encode(e.set).Raw, string(e.set.Primary())
}

func (e *Editor) State() types.State {
	list, _ := e.Encode()
	return types.State{
		Binding: e.binding.Key,
		Members: e.set.Members(),
		Primary: e.set.Primary(),
		List:    list,
	}
}

// Selected resolves the members to options in selection order. Members with no
// matching option keep their ID as label.
func (e *Editor) Selected() []types.Option {
	members := e.set.Members()
	out := make([]types.Option, 0, len(members))
	for _, id := range members {
		if i, ok := e.optionIndex[id]; ok {
			out = append(out, e.options[i])
			continue
		}
		out = append(out, types.Option{ID: id, Label: string(id)})
	}
	return out
}

func (e *Editor) apply(next selection.Set) {
	prev := e.set
	e.set = next
	if !slices.Equal(prev.Members(), next.Members()) && e.onChange != nil {
		e.onChange(next.Members())
	}
	if prev.Primary() != next.Primary() && e.onPrimaryChange != nil {
		e.onPrimaryChange(next.Primary())
	}
}
