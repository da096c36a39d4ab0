package model

import (
	"time"

	userModel "newsroom_api/internal/domain/user/model"
	"newsroom_api/pkg/apperr"
	baseModel "newsroom_api/pkg/model"
	"newsroom_api/pkg/security"
)

// MaxContentLength 评论最大长度（字符）
const MaxContentLength = 1000

// MaxRepliesPerComment 列表中每条顶级评论附带的回复数上限
const MaxRepliesPerComment = 10

// Status 评论状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFlagged  Status = "flagged"
)

// IsValid 是否为已知状态
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged:
		return true
	}
	return false
}

// IsModerationDecision 审核只能设置为 approved / rejected / flagged
func (s Status) IsModerationDecision() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusFlagged
}

// Reason 审核原因
type Reason string

const (
	ReasonSpam          Reason = "spam"
	ReasonInappropriate Reason = "inappropriate"
	ReasonOffTopic      Reason = "off_topic"
	ReasonHarassment    Reason = "harassment"
	ReasonFalseInfo     Reason = "false_info"
	ReasonOther         Reason = "other"
)

// IsValid 空值表示未填写，也视为合法
func (r Reason) IsValid() bool {
	switch r {
	case "", ReasonSpam, ReasonInappropriate, ReasonOffTopic, ReasonHarassment, ReasonFalseInfo, ReasonOther:
		return true
	}
	return false
}

// Comment 评论模型。回复只有一层：ParentCommentID 非空的评论不能再被回复。
type Comment struct {
	baseModel.BaseModel
	Content          string  `gorm:"type:text;not null" json:"content"`
	AuthorID         string  `gorm:"type:uuid;not null;index" json:"authorId"`
	NewsID           string  `gorm:"type:uuid;not null;index" json:"newsId"`
	ParentCommentID  *string `gorm:"type:uuid;index" json:"parentCommentId"`
	Status           Status  `gorm:"size:32;not null;index" json:"status"`
	ModeratedBy      *string `gorm:"type:uuid" json:"moderatedBy"`
	ModerationReason Reason  `gorm:"size:32" json:"moderationReason,omitempty"`
	ModerationNotes  string  `gorm:"type:text" json:"moderationNotes,omitempty"`
	IsEdited         bool    `gorm:"not null;default:false" json:"isEdited"`
	EditHistory      []Edit  `gorm:"foreignKey:CommentID" json:"editHistory,omitempty"`

	// 只读统计，由查询计算
	LikesCount    int64 `gorm:"->;-:migration" json:"likes"`
	DislikesCount int64 `gorm:"->;-:migration" json:"dislikes"`

	// 读取视图
	Author     *userModel.Summary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Moderator  *userModel.Summary `gorm:"foreignKey:ModeratedBy" json:"moderator,omitempty"`
	News       *NewsRef           `gorm:"foreignKey:NewsID" json:"news,omitempty"`
	Replies    []Comment          `gorm:"-" json:"replies,omitempty"`
	ReplyCount int64              `gorm:"-" json:"replyCount"`
}

// Edit 编辑历史，只追加
type Edit struct {
	baseModel.BaseModel
	CommentID string    `gorm:"type:uuid;not null;index" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	EditedAt  time.Time `gorm:"not null" json:"editedAt"`
}

func (Edit) TableName() string {
	return "comment_edits"
}

// NewsRef 评论所属新闻的摘要
type NewsRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (NewsRef) TableName() string {
	return "news"
}

// InitialStatus 记者、审核员和管理员的评论直接通过，其余进入待审核
func InitialStatus(role security.Role) Status {
	switch role {
	case security.RoleJournalist, security.RoleModerator, security.RoleAdmin:
		return StatusApproved
	}
	return StatusPending
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// ThreadRoot 回复挂载的顶级评论 ID：顶级评论返回自身，回复返回其父评论
func (c *Comment) ThreadRoot() string {
	if c.ParentCommentID != nil {
		return *c.ParentCommentID
	}
	return c.ID
}

// ApplyEdit 修改内容。rejected 状态不能编辑；内容变化时追加历史；
// approved 的评论重新进入待审核。返回编辑前状态和需要写入的历史记录（内容未变时为 nil）。
func (c *Comment) ApplyEdit(content string, now time.Time) (Status, *Edit, error) {
	previous := c.Status
	if c.Status == StatusRejected {
		return previous, nil, apperr.InvalidState("rejected comments cannot be edited")
	}

	var edit *Edit
	if content != c.Content {
		edit = &Edit{CommentID: c.ID, Content: c.Content, EditedAt: now}
		c.EditHistory = append(c.EditHistory, *edit)
		c.Content = content
		c.IsEdited = true
	}

	if c.Status == StatusApproved {
		c.Status = StatusPending
	}
	return previous, edit, nil
}

// ApplyModeration 无条件覆盖状态和审核信息，返回之前的状态
func (c *Comment) ApplyModeration(status Status, moderatorID string, reason Reason, notes string) Status {
	previous := c.Status
	c.Status = status
	c.ModeratedBy = &moderatorID
	c.ModerationReason = reason
	c.ModerationNotes = notes
	return previous
}
