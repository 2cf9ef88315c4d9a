package dictsource

import (
	"context"

	"github.com/jacksonlee411/jobdesk/modules/association/domain/ports"
	"github.com/jacksonlee411/jobdesk/modules/association/domain/types"
	"github.com/jacksonlee411/jobdesk/pkg/dict"
	"github.com/jacksonlee411/jobdesk/pkg/selection"
)

// Source serves editor options from the process-wide dict resolver.
type Source struct {
	// Limit caps the number of options per list; <= 0 means no cap.
	Limit int
}

func New(limit int) ports.OptionSource {
	return Source{Limit: limit}
}

func (s Source) ListOptions(ctx context.Context, dictCode string) ([]types.Option, error) {
	opts, err := dict.ListOptions(ctx, dictCode, "", s.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.Option, 0, len(opts))
	for _, opt := range opts {
		out = append(out, types.Option{ID: selection.Normalize(opt.Code), Label: opt.Label})
	}
	return out, nil
}
