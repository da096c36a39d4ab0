package model

import (
	"encoding/json"
	"time"

	userModel "newsroom_api/internal/domain/user/model"
	baseModel "newsroom_api/pkg/model"
	"newsroom_api/pkg/security"
)

// Status 新闻状态
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	// StatusPublished 保留状态，没有任何操作会流转到这里
	StatusPublished Status = "published"
)

// IsValid 是否为已知状态
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusPublished:
		return true
	}
	return false
}

// IsReviewDecision 审核只能给出 approved 或 rejected
func (s Status) IsReviewDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// News 新闻模型
type News struct {
	baseModel.BaseModel
	Title          string          `gorm:"size:200;not null" json:"title"`
	Summary        string          `gorm:"size:500" json:"summary"`
	Content        string          `gorm:"type:text;not null" json:"content"`
	Category       string          `gorm:"size:50;index" json:"category"`
	Tags           json.RawMessage `gorm:"type:jsonb" json:"tags"`
	Sources        json.RawMessage `gorm:"type:jsonb" json:"sources"`
	Images         json.RawMessage `gorm:"type:jsonb" json:"images"`
	IsBreakingNews bool            `gorm:"not null;default:false" json:"isBreakingNews"`
	Status         Status          `gorm:"size:32;not null;index" json:"status"`
	AuthorID       string          `gorm:"type:uuid;not null;index" json:"authorId"`
	ReviewedBy     *string         `gorm:"type:uuid" json:"reviewedBy"`
	ReviewComments string          `gorm:"type:text" json:"reviewComments"`
	PublishedAt    *time.Time      `json:"publishedAt"`
	ViewCount      int64           `gorm:"not null;default:0" json:"viewCount"`

	// 读取视图预加载
	Author   *userModel.Summary `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Reviewer *userModel.Summary `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

func (News) TableName() string {
	return "news"
}

// Source 新闻来源
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Image 新闻配图
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
}

// Fields 可编辑字段，nil 表示不修改
type Fields struct {
	Title          *string
	Summary        *string
	Content        *string
	Category       *string
	Tags           *[]string
	Sources        *[]Source
	Images         *[]Image
	IsBreakingNews *bool
}

// InitialStatus 新建时的状态：记者直接提交审核，其他角色只能保存草稿
func InitialStatus(role security.Role) Status {
	if role == security.RoleJournalist {
		return StatusPendingReview
	}
	return StatusDraft
}

// ApplyEdit 写入字段并返回编辑前的状态。
// 作者提交标题或正文时（即使值未变）无论原状态如何都回到 pending_review；审核人员编辑不改变状态。
func (n *News) ApplyEdit(f Fields, byAuthor bool) (Status, error) {
	previous := n.Status
	contentChanged := false

	if f.Title != nil {
		n.Title = *f.Title
		contentChanged = true
	}
	if f.Content != nil {
		n.Content = *f.Content
		contentChanged = true
	}
	if f.Summary != nil {
		n.Summary = *f.Summary
	}
	if f.Category != nil {
		n.Category = *f.Category
	}
	if f.IsBreakingNews != nil {
		n.IsBreakingNews = *f.IsBreakingNews
	}
	if f.Tags != nil {
		raw, err := MarshalList(*f.Tags)
		if err != nil {
			return previous, err
		}
		n.Tags = raw
	}
	if f.Sources != nil {
		raw, err := MarshalList(*f.Sources)
		if err != nil {
			return previous, err
		}
		n.Sources = raw
	}
	if f.Images != nil {
		raw, err := MarshalList(*f.Images)
		if err != nil {
			return previous, err
		}
		n.Images = raw
	}

	if byAuthor && contentChanged {
		n.Status = StatusPendingReview
	}
	return previous, nil
}

// ApplyReview 写入审核结果。任何状态都可以审核；
// 通过时仅在 PublishedAt 为空时设置，重复通过不会覆盖。
func (n *News) ApplyReview(decision Status, reviewerID, comments string, now time.Time) Status {
	previous := n.Status
	n.Status = decision
	n.ReviewedBy = &reviewerID
	n.ReviewComments = comments
	if decision == StatusApproved && n.PublishedAt == nil {
		t := now
		n.PublishedAt = &t
	}
	return previous
}

// MarshalList 序列化为 JSON 数组，nil 写为 []
func MarshalList[T any](list []T) (json.RawMessage, error) {
	if list == nil {
		list = []T{}
	}
	return json.Marshal(list)
}
