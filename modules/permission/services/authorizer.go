package services

import (
	"github.com/jacksonlee411/jobdesk/modules/permission/domain/catalog"
	"github.com/jacksonlee411/jobdesk/pkg/authz"
	"github.com/jacksonlee411/jobdesk/pkg/legacyenc"
	"github.com/jacksonlee411/jobdesk/pkg/permset"
)

// RolePermissions decodes the stored permission column of each role, keyed by
// role slug, and enforces the catalog's exclusive rows.
func RolePermissions(c *catalog.Catalog, stored map[string]string) map[string][]string {
	out := make(map[string][]string, len(stored))
	for role, text := range stored {
		sel, _ := legacyenc.DecodeSet(legacyenc.Sniff(text), "", false)
		set, _ := permset.FromSelection(c.Groups(), sel).Normalize()
		out[role] = set.List()
	}
	return out
}

// NewAuthorizer builds a casbin authorizer from stored role permission
// columns.
func NewAuthorizer(c *catalog.Catalog, stored map[string]string, mode authz.Mode) (*authz.Authorizer, error) {
	return authz.NewAuthorizer(RolePermissions(c, stored), mode)
}
