package services

import (
	"fmt"

	"github.com/jacksonlee411/jobdesk/modules/association/domain/types"
)

const (
	CodeRequired   = "required"
	CodeRuleFailed = "rule_failed"
)

type ValidationError struct {
	Binding string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("association: %s: %s", e.Binding, e.Message)
}

// Validate checks the current selection against the binding's constraints.
// A failed constraint yields *ValidationError; a rule that cannot be
// evaluated yields a plain error.
func (e *Editor) Validate() error {
	if e.binding.Required && e.set.IsEmpty() {
		return &ValidationError{Binding: e.binding.Key, Code: CodeRequired, Message: "at least one value is required"}
	}
	if e.rule == nil {
		return nil
	}
	ok, err := evalRule(e.rule, e.set.Strings(), string(e.set.Primary()), optionIDs(e.options))
	if err != nil {
		return fmt.Errorf("association: binding %s: rule: %w", e.binding.Key, err)
	}
	if !ok {
		return &ValidationError{Binding: e.binding.Key, Code: CodeRuleFailed, Message: "selection violates " + e.binding.Rule}
	}
	return nil
}

func optionIDs(options []types.Option) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, string(opt.ID))
	}
	return out
}
