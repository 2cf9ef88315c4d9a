package types

import "github.com/jacksonlee411/jobdesk/pkg/selection"

type Option struct {
	ID    selection.ID `json:"id"`
	Label string       `json:"label"`
}

// State is the persisted view of an association: the canonical list column
// and the separately stored primary field.
type State struct {
	Binding string         `json:"binding"`
	Members []selection.ID `json:"members"`
	Primary selection.ID   `json:"primary,omitempty"`
	List    string         `json:"list"`
}
