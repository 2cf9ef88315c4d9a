package ports

import (
	"context"

	"github.com/jacksonlee411/jobdesk/modules/association/domain/types"
)

// OptionSource lists the candidate options of a reference list ("list all job
// types", "list all roles", ...).
type OptionSource interface {
	ListOptions(ctx context.Context, dictCode string) ([]types.Option, error)
}
