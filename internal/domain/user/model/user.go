package model

import (
	baseModel "newsroom_api/pkg/model"
	"newsroom_api/pkg/security"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Name           string        `gorm:"size:100;not null" json:"name"`
	Email          string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password       string        `gorm:"not null" json:"-"` // 密码不返回给前端
	Role           security.Role `gorm:"size:32;not null;default:reader" json:"role"`
	IsActive       bool          `gorm:"not null;default:true" json:"isActive"`
	Bio            string        `gorm:"size:500" json:"bio"`
	Avatar         string        `json:"avatar"`
	Specialization string        `gorm:"size:100" json:"specialization"`
}

// Identity 转换为鉴权使用的身份
func (u *User) Identity() security.Identity {
	return security.Identity{ID: u.ID, Role: u.Role, IsActive: u.IsActive}
}

// Summary 作者/审核人摘要，供新闻和评论的读取视图预加载
type Summary struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  security.Role `json:"role"`
}

func (Summary) TableName() string {
	return "users"
}
