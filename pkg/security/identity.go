package security

import "context"

// Identity 已认证的调用者
type Identity struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}

// IsStaff reports whether the identity may act as a moderator.
func (i Identity) IsStaff() bool {
	return i.Role == RoleModerator || i.Role == RoleAdmin
}

// Owns reports whether the identity is the given author.
func (i Identity) Owns(authorID string) bool {
	return i.ID != "" && i.ID == authorID
}

// IdentityResolver 根据用户 ID 解析身份，用户不存在或查询失败时返回错误
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}
