package authz

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

func ModeFromEnv() (Mode, error) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv("AUTHZ_MODE")))
	if raw == "" {
		return ModeEnforce, nil
	}
	switch Mode(raw) {
	case ModeEnforce, ModeShadow:
		return Mode(raw), nil
	case ModeDisabled:
		if os.Getenv("AUTHZ_UNSAFE_ALLOW_DISABLED") != "1" {
			return "", errors.New("authz: AUTHZ_MODE=disabled requires AUTHZ_UNSAFE_ALLOW_DISABLED=1")
		}
		return ModeDisabled, nil
	default:
		return "", errors.New("authz: invalid AUTHZ_MODE (expected enforce|shadow|disabled)")
	}
}

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

// NewAuthorizer builds an in-memory enforcer from role permission sets, keyed
// by role slug. Permissions have the form "<object>.<action>".
func NewAuthorizer(roles map[string][]string, mode Mode) (*Authorizer, error) {
	return newAuthorizerFromModel(rolePermissionModel, roles, mode)
}

func newAuthorizerFromModel(text string, roles map[string][]string, mode Mode) (*Authorizer, error) {
	m, err := model.NewModelFromString(text)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, rule := range Policies(roles) {
		if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return nil, err
		}
	}
	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

func SubjectFromRoleSlug(roleSlug string) string {
	roleSlug = strings.TrimSpace(strings.ToLower(roleSlug))
	if roleSlug == "" {
		roleSlug = RoleAnonymous
	}
	return "role:" + roleSlug
}

// SplitPermission splits "jobs.view_all" into object "jobs" and action
// "view_all". A permission without a dot grants ActionAccess on itself.
func SplitPermission(permission string) (object string, action string) {
	permission = strings.TrimSpace(permission)
	i := strings.LastIndex(permission, ".")
	if i <= 0 || i == len(permission)-1 {
		return permission, ActionAccess
	}
	return permission[:i], permission[i+1:]
}

// Policies renders role permission sets as sorted (subject, object, action)
// rules.
func Policies(roles map[string][]string) [][3]string {
	var out [][3]string
	for role, perms := range roles {
		sub := SubjectFromRoleSlug(role)
		for _, p := range perms {
			if strings.TrimSpace(p) == "" {
				continue
			}
			obj, act := SplitPermission(p)
			out = append(out, [3]string{sub, obj, act})
		}
	}
	slices.SortFunc(out, func(a, b [3]string) int {
		for i := range a {
			if c := strings.Compare(a[i], b[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return slices.Compact(out)
}

// PolicyLines renders Policies in casbin CSV policy form.
func PolicyLines(roles map[string][]string) []string {
	rules := Policies(roles)
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, fmt.Sprintf("p, %s, %s, %s", r[0], r[1], r[2]))
	}
	return out
}

func (a *Authorizer) Authorize(subject string, object string, action string) (allowed bool, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(subject, object, action)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(subject, object, action)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}

// Can reports whether roleSlug holds permission, applying the authorizer's
// mode.
func (a *Authorizer) Can(roleSlug string, permission string) (bool, error) {
	obj, act := SplitPermission(permission)
	allowed, _, err := a.Authorize(SubjectFromRoleSlug(roleSlug), obj, act)
	return allowed, err
}
