package model

import "time"

// ReactionKind 反应类型
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) IsValid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction 每个 (评论, 用户) 最多一行，likes 与 dislikes 因此天然互斥
type Reaction struct {
	CommentID string       `gorm:"primaryKey;type:uuid" json:"commentId"`
	UserID    string       `gorm:"primaryKey;type:uuid" json:"userId"`
	Kind      ReactionKind `gorm:"size:16;not null" json:"kind"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (Reaction) TableName() string {
	return "comment_reactions"
}

// ToggleReaction 计算新的反应状态。current 为空表示尚未反应，返回空表示取消反应。
// 同一类型再次提交即取消；提交另一类型则替换原有反应。
func ToggleReaction(current, requested ReactionKind) ReactionKind {
	if current == requested {
		return ""
	}
	return requested
}

// ReactionChange 描述一次切换的结果，用于统计
func ReactionChange(current, next ReactionKind) string {
	switch {
	case next == "":
		return "removed"
	case current == "":
		return "added"
	default:
		return "switched"
	}
}

// ReactionResult 反应后的计数
type ReactionResult struct {
	Likes        int64         `json:"likes"`
	Dislikes     int64         `json:"dislikes"`
	UserReaction *ReactionKind `json:"userReaction"`
}
