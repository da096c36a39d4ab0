package security

import (
	"newsroom_api/pkg/apperr"
)

// Role 角色定义
type Role string

const (
	RoleReader         Role = "reader"
	RoleRegisteredUser Role = "registered_user"
	RoleJournalist     Role = "journalist"
	RoleModerator      Role = "moderator"
	RoleAdmin          Role = "admin"
)

// AllRoles 全部角色，按权限从低到高
var AllRoles = []Role{RoleReader, RoleRegisteredUser, RoleJournalist, RoleModerator, RoleAdmin}

// IsValidRole 检查角色是否合法
func IsValidRole(r Role) bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// Operation 受保护的操作
type Operation string

const (
	OpNewsCreate        Operation = "news:create"
	OpNewsEdit          Operation = "news:edit"
	OpNewsReview        Operation = "news:review"
	OpNewsDelete        Operation = "news:delete"
	OpNewsQueue         Operation = "news:queue"
	OpCommentCreate     Operation = "comment:create"
	OpCommentEdit       Operation = "comment:edit"
	OpCommentHardDelete Operation = "comment:delete"
	OpCommentSoftDelete Operation = "comment:reject"
	OpCommentModerate   Operation = "comment:moderate"
	OpCommentReact      Operation = "comment:react"
	OpCommentQueue      Operation = "comment:queue"
	OpRoleAssign        Operation = "user:role"
	OpUserActivate      Operation = "user:activate"
	OpUserList          Operation = "user:list"
	OpUpload            Operation = "media:upload"
	OpAuditRead         Operation = "audit:read"
)

// ownerRule 描述资源所有者对某个操作的影响
type ownerRule int

const (
	// ownerIgnored: ownership plays no part in the decision.
	ownerIgnored ownerRule = iota
	// ownerGrants: the owner may perform the operation regardless of role.
	ownerGrants
	// ownerForbids: the operation is only legal on someone else's resource.
	ownerForbids
)

type policy struct {
	roles []Role
	owner ownerRule
}

var (
	anyRole     = AllRoles
	contributor = []Role{RoleRegisteredUser, RoleJournalist, RoleModerator, RoleAdmin}
	staff       = []Role{RoleModerator, RoleAdmin}
	adminOnly   = []Role{RoleAdmin}
)

// policies 权限表，所有写操作在修改实体之前都必须查询此表
var policies = map[Operation]policy{
	OpNewsCreate:        {roles: anyRole, owner: ownerIgnored},
	OpNewsEdit:          {roles: staff, owner: ownerGrants},
	OpNewsReview:        {roles: staff, owner: ownerIgnored},
	OpNewsDelete:        {roles: staff, owner: ownerGrants},
	OpNewsQueue:         {roles: staff, owner: ownerIgnored},
	OpCommentCreate:     {roles: contributor, owner: ownerIgnored},
	OpCommentEdit:       {roles: nil, owner: ownerGrants},
	OpCommentHardDelete: {roles: nil, owner: ownerGrants},
	OpCommentSoftDelete: {roles: staff, owner: ownerForbids},
	OpCommentModerate:   {roles: staff, owner: ownerIgnored},
	OpCommentReact:      {roles: contributor, owner: ownerIgnored},
	OpCommentQueue:      {roles: staff, owner: ownerIgnored},
	OpRoleAssign:        {roles: adminOnly, owner: ownerIgnored},
	OpUserActivate:      {roles: adminOnly, owner: ownerIgnored},
	OpUserList:          {roles: adminOnly, owner: ownerIgnored},
	OpUpload:            {roles: []Role{RoleJournalist, RoleModerator, RoleAdmin}, owner: ownerIgnored},
	OpAuditRead:         {roles: adminOnly, owner: ownerIgnored},
}

// CanPerform 判断角色能否执行操作。owner 表示操作者是否为目标资源的作者。
func CanPerform(role Role, op Operation, owner bool) bool {
	if !IsValidRole(role) {
		return false
	}
	p, ok := policies[op]
	if !ok {
		return false
	}

	switch p.owner {
	case ownerGrants:
		if owner {
			return true
		}
	case ownerForbids:
		if owner {
			return false
		}
	}

	for _, r := range p.roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize 与 CanPerform 相同，但返回 PermissionDenied 错误
func Authorize(id Identity, op Operation, owner bool) error {
	if !id.IsActive {
		return apperr.PermissionDenied("account is inactive")
	}
	if !CanPerform(id.Role, op, owner) {
		return apperr.PermissionDenied("insufficient permissions for " + string(op))
	}
	return nil
}
