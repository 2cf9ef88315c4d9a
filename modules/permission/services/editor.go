package services

import (
	"errors"
	"slices"

	"github.com/jacksonlee411/jobdesk/modules/permission/domain/catalog"
	"github.com/jacksonlee411/jobdesk/pkg/legacyenc"
	"github.com/jacksonlee411/jobdesk/pkg/permset"
	"go.uber.org/zap"
)

type Config struct {
	Catalog *catalog.Catalog
	// OnChange receives the granted permissions after every change.
	OnChange func(perms []string)
	Logger   *zap.Logger
}

// Editor edits the permission set of one role. Permissions outside the
// catalog can be loaded and revoked but not granted.
type Editor struct {
	catalog  *catalog.Catalog
	set      permset.Set
	report   legacyenc.Report
	dropped  []string
	onChange func([]string)
	logger   *zap.Logger
}

func NewEditor(cfg Config) (*Editor, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("permission: catalog is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		catalog:  cfg.Catalog,
		set:      cfg.Catalog.NewSet(),
		onChange: cfg.OnChange,
		logger:   logger,
	}, nil
}

func (e *Editor) Set() permset.Set             { return e.set }
func (e *Editor) List() []string               { return e.set.List() }
func (e *Editor) LastReport() legacyenc.Report { return e.report }

// Dropped lists the permissions removed by the last Load to satisfy the
// exclusive rows.
func (e *Editor) Dropped() []string { return slices.Clone(e.dropped) }

func (e *Editor) Toggle(permission string) permset.Set {
	if !e.set.Has(permission) && !e.catalog.Contains(permission) {
		e.logger.Debug("permission toggle ignored unknown permission", zap.String("permission", permission))
		return e.set
	}
	e.apply(e.set.Toggle(permission))
	return e.set
}

// Choose grants permission as the only granted member of its row; an empty
// permission clears the row containing peer.
func (e *Editor) Choose(peer string, permission string) permset.Set {
	for _, g := range e.catalog.Groups() {
		if g.Contains(peer) {
			if permission != "" && !g.Contains(permission) {
				return e.set
			}
			e.apply(e.set.Choose(g, permission))
			return e.set
		}
	}
	return e.set
}

// Load replaces the set with a persisted value, enforcing exclusive rows
// (first granted member wins). OnChange fires when the stored value needs
// rewriting.
func (e *Editor) Load(raw legacyenc.Encoding) permset.Set {
	sel, rep := legacyenc.DecodeSet(raw, "", false)
	e.report = rep
	e.set, e.dropped = permset.FromSelection(e.catalog.Groups(), sel).Normalize()
	if rep.Degraded() || len(e.dropped) > 0 {
		e.logger.Warn("permission decode degraded",
			zap.String("decoded", string(rep.Decoded)),
			zap.Strings("reasons", rep.Reasons()),
			zap.Strings("dropped", e.dropped),
		)
	}
	if unknown := e.catalog.Unknown(e.set); len(unknown) > 0 {
		e.logger.Info("permission set holds permissions outside the catalog", zap.Strings("permissions", unknown))
	}
	rewrite := rep.Degraded() || len(e.dropped) > 0
	if e.set.Len() > 0 && !rep.Canonical() {
		rewrite = true
	}
	if rewrite && e.onChange != nil {
		e.onChange(e.set.List())
	}
	return e.set
}

func (e *Editor) LoadText(text string) permset.Set {
	return e.Load(legacyenc.Sniff(text))
}

// Encode returns the canonical JSON array column value.
func (e *Editor) Encode() string {
	return legacyenc.Encode(e.set.Selection()).Raw
}

func (e *Editor) Tables() []catalog.Table {
	return e.catalog.Tables(e.set)
}

func (e *Editor) apply(next permset.Set) {
	prev := e.set
	e.set = next
	if !slices.Equal(prev.List(), next.List()) && e.onChange != nil {
		e.onChange(next.List())
	}
}
