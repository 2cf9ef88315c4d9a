package bindings

import (
	"sort"
	"strings"
)

// Binding describes one multi-valued association edited on an admin screen
// and how it is persisted: a list column plus, for primary-tracking bindings,
// a separate primary column.
type Binding struct {
	Key          string
	Screen       string
	DictCode     string
	ListField    string
	PrimaryField string
	TrackPrimary bool
	Required     bool
	// Rule is an optional CEL expression over members, primary and options
	// that must evaluate to true for the form to be valid.
	Rule         string
	LabelI18nKey string
}

var bindingDefinitions = []Binding{
	{
		Key:          "company.job_types",
		Screen:       "company_profile",
		DictCode:     "job_types",
		ListField:    "job_types",
		PrimaryField: "main_job_type",
		TrackPrimary: true,
		LabelI18nKey: "company.fields.job_types",
	},
	{
		Key:          "job_type.activities",
		Screen:       "job_types",
		DictCode:     "activities",
		ListField:    "activity_ids",
		Rule:         `members.all(m, m in options)`,
		LabelI18nKey: "job_type.fields.activities",
	},
	{
		Key:          "collaborator.job_types",
		Screen:       "collaborators",
		DictCode:     "job_types",
		ListField:    "job_type_ids",
		PrimaryField: "job_type_id",
		TrackPrimary: true,
		Required:     true,
		LabelI18nKey: "collaborator.fields.job_types",
	},
	{
		Key:          "collaborator.roles",
		Screen:       "collaborators",
		DictCode:     "roles",
		ListField:    "roles",
		PrimaryField: "role_id",
		TrackPrimary: true,
		Required:     true,
		Rule:         `size(members) <= 5`,
		LabelI18nKey: "collaborator.fields.roles",
	},
	{
		Key:          "client.activities",
		Screen:       "clients",
		DictCode:     "activities",
		ListField:    "activities",
		LabelI18nKey: "client.fields.activities",
	},
}

var bindingByKey = func() map[string]Binding {
	out := make(map[string]Binding, len(bindingDefinitions))
	for _, b := range bindingDefinitions {
		out[b.Key] = b
	}
	return out
}()

func ListBindings() []Binding {
	out := append([]Binding(nil), bindingDefinitions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

func LookupBinding(key string) (Binding, bool) {
	b, ok := bindingByKey[strings.TrimSpace(key)]
	return b, ok
}

// ForScreen lists the bindings edited on screen, in declaration order.
func ForScreen(screen string) []Binding {
	var out []Binding
	for _, b := range bindingDefinitions {
		if b.Screen == screen {
			out = append(out, b)
		}
	}
	return out
}
