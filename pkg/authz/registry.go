package authz

const (
	RoleAdmin     = "admin"
	RoleAnonymous = "anonymous"
)

const ActionAccess = "access"

const rolePermissionModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`
