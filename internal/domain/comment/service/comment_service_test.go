package service

import (
	"context"
	"testing"
	"time"

	"newsroom_api/internal/domain/comment/model"
	"newsroom_api/internal/domain/comment/repository"
	newsModel "newsroom_api/internal/domain/news/model"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/apperr"
	baseModel "newsroom_api/pkg/model"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommentRepository is a mock of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	if comment.ID == "" {
		comment.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) UpdateWithEdit(ctx context.Context, comment *model.Comment, edit *model.Edit) error {
	args := m.Called(ctx, comment, edit)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) List(ctx context.Context, filter repository.CommentFilter, offset, limit int) ([]model.Comment, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListApprovedReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error) {
	args := m.Called(ctx, parentIDs)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetReaction(ctx context.Context, commentID, userID string) (model.ReactionKind, error) {
	args := m.Called(ctx, commentID, userID)
	return args.Get(0).(model.ReactionKind), args.Error(1)
}

func (m *MockCommentRepository) SetReaction(ctx context.Context, commentID, userID string, kind model.ReactionKind) error {
	args := m.Called(ctx, commentID, userID, kind)
	return args.Error(0)
}

func (m *MockCommentRepository) CountReactions(ctx context.Context, commentID string) (int64, int64, error) {
	args := m.Called(ctx, commentID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// stubNews 内存中的新闻
type stubNews map[string]*newsModel.News

func (s stubNews) GetByID(ctx context.Context, id string) (*newsModel.News, error) {
	n, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("news not found")
	}
	return n, nil
}

type recorder struct {
	events []worker.Event
}

func (r *recorder) Submit(e worker.Event) {
	r.events = append(r.events, e)
}

var (
	user      = security.Identity{ID: "user-1", Role: security.RoleRegisteredUser, IsActive: true}
	stranger  = security.Identity{ID: "user-2", Role: security.RoleRegisteredUser, IsActive: true}
	reader    = security.Identity{ID: "reader-1", Role: security.RoleReader, IsActive: true}
	reporter  = security.Identity{ID: "journalist-1", Role: security.RoleJournalist, IsActive: true}
	moderator = security.Identity{ID: "moderator-1", Role: security.RoleModerator, IsActive: true}

	testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newsFixture() stubNews {
	return stubNews{
		"published": {BaseModel: baseModel.BaseModel{ID: "published"}, Status: newsModel.StatusApproved},
		"draft":     {BaseModel: baseModel.BaseModel{ID: "draft"}, Status: newsModel.StatusDraft},
	}
}

func createTestComment(id, authorID string, status model.Status) *model.Comment {
	return &model.Comment{
		BaseModel: baseModel.BaseModel{ID: id},
		Content:   "hi",
		AuthorID:  authorID,
		NewsID:    "published",
		Status:    status,
	}
}

func newTestService(repo *MockCommentRepository, rec *recorder) *commentService {
	var audit worker.Recorder
	if rec != nil {
		audit = rec
	}
	s := NewCommentService(repo, newsFixture(), audit, nil).(*commentService)
	s.now = func() time.Time { return testNow }
	return s
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("registered user comment is pending", func(t *testing.T) {
		repo := new(MockCommentRepository)
		rec := &recorder{}
		svc := newTestService(repo, rec)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Comment")).Return(nil)

		comment, err := svc.Create(ctx, user, CreateInput{Content: "  hi  ", NewsID: "published"})

		require.NoError(t, err)
		assert.Equal(t, "hi", comment.Content)
		assert.Equal(t, model.StatusPending, comment.Status)
		assert.Nil(t, comment.ParentCommentID)
		require.Len(t, rec.events, 1)
		assert.Equal(t, "create", rec.events[0].Action)
		assert.Equal(t, "pending", rec.events[0].To)
	})

	t.Run("journalist comment is approved", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Comment")).Return(nil)

		comment, err := svc.Create(ctx, reporter, CreateInput{Content: "hi", NewsID: "published"})
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, comment.Status)
	})

	t.Run("reader cannot comment", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Create(ctx, reader, CreateInput{Content: "hi", NewsID: "published"})
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("content validation", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Create(ctx, user, CreateInput{Content: "   ", NewsID: "published"})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		long := make([]rune, model.MaxContentLength+1)
		for i := range long {
			long[i] = '字'
		}
		_, err = svc.Create(ctx, user, CreateInput{Content: string(long), NewsID: "published"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unpublished or missing news", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Create(ctx, user, CreateInput{Content: "hi", NewsID: "draft"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.Create(ctx, user, CreateInput{Content: "hi", NewsID: "missing"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("reply to a reply attaches to the top level comment", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		root := "c1"
		reply := createTestComment("c2", stranger.ID, model.StatusApproved)
		reply.ParentCommentID = &root
		repo.On("GetByID", ctx, "c2").Return(reply, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Comment")).Return(nil)

		comment, err := svc.Create(ctx, user, CreateInput{Content: "re", NewsID: "published", ParentCommentID: "c2"})

		require.NoError(t, err)
		require.NotNil(t, comment.ParentCommentID)
		assert.Equal(t, "c1", *comment.ParentCommentID)
	})

	t.Run("parent must be approved and on the same news", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		pending := createTestComment("p1", stranger.ID, model.StatusPending)
		elsewhere := createTestComment("p2", stranger.ID, model.StatusApproved)
		elsewhere.NewsID = "other-news"
		repo.On("GetByID", ctx, "p1").Return(pending, nil)
		repo.On("GetByID", ctx, "p2").Return(elsewhere, nil)

		_, err := svc.Create(ctx, user, CreateInput{Content: "re", NewsID: "published", ParentCommentID: "p1"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = svc.Create(ctx, user, CreateInput{Content: "re", NewsID: "published", ParentCommentID: "p2"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// 用户评论 -> 审核通过 -> 作者编辑后重新待审核，历史增加一条
func TestCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCommentRepository)
	rec := &recorder{}
	svc := newTestService(repo, rec)

	repo.On("Create", ctx, mock.AnythingOfType("*model.Comment")).Return(nil)
	comment, err := svc.Create(ctx, user, CreateInput{Content: "hi", NewsID: "published"})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, comment.Status)

	repo.On("GetByID", ctx, comment.ID).Return(comment, nil)
	repo.On("Update", ctx, comment).Return(nil)
	moderated, err := svc.Moderate(ctx, moderator, comment.ID, model.StatusApproved, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, moderated.Status)
	require.NotNil(t, moderated.ModeratedBy)
	assert.Equal(t, moderator.ID, *moderated.ModeratedBy)

	repo.On("UpdateWithEdit", ctx, comment, mock.AnythingOfType("*model.Edit")).Return(nil)
	edited, err := svc.Edit(ctx, user, comment.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, edited.Status)
	assert.True(t, edited.IsEdited)
	assert.Equal(t, "hello", edited.Content)
	require.Len(t, edited.EditHistory, 1)
	assert.Equal(t, "hi", edited.EditHistory[0].Content)
	assert.Equal(t, testNow, edited.EditHistory[0].EditedAt)

	actions := make([]string, 0, len(rec.events))
	for _, e := range rec.events {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"create", "moderate", "edit"}, actions)
}

func TestEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("only the author may edit", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "c1").Return(createTestComment("c1", user.ID, model.StatusPending), nil)

		for _, actor := range []security.Identity{stranger, moderator} {
			_, err := svc.Edit(ctx, actor, "c1", "changed")
			assert.ErrorIs(t, err, apperr.ErrPermissionDenied, actor.ID)
		}
		repo.AssertNotCalled(t, "UpdateWithEdit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected comment is immutable", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "c1").Return(createTestComment("c1", user.ID, model.StatusRejected), nil)

		_, err := svc.Edit(ctx, user, "c1", "changed")
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	})

	t.Run("unchanged content adds no history", func(t *testing.T) {
		repo := new(MockCommentRepository)
		rec := &recorder{}
		svc := newTestService(repo, rec)
		comment := createTestComment("c1", user.ID, model.StatusPending)
		repo.On("GetByID", ctx, "c1").Return(comment, nil)
		repo.On("UpdateWithEdit", ctx, comment, (*model.Edit)(nil)).Return(nil)

		edited, err := svc.Edit(ctx, user, "c1", "hi")
		require.NoError(t, err)
		assert.Empty(t, edited.EditHistory)
		assert.False(t, edited.IsEdited)
		assert.Empty(t, rec.events)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("author hard deletes", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "c1").Return(createTestComment("c1", user.ID, model.StatusApproved), nil)
		repo.On("Delete", ctx, "c1").Return(nil)

		soft, err := svc.Delete(ctx, user, "c1", "", "")
		require.NoError(t, err)
		assert.False(t, soft)
		repo.AssertCalled(t, "Delete", ctx, "c1")
	})

	t.Run("moderator soft deletes with default reason", func(t *testing.T) {
		repo := new(MockCommentRepository)
		rec := &recorder{}
		svc := newTestService(repo, rec)
		comment := createTestComment("c1", user.ID, model.StatusApproved)
		repo.On("GetByID", ctx, "c1").Return(comment, nil)
		repo.On("Update", ctx, comment).Return(nil)

		soft, err := svc.Delete(ctx, moderator, "c1", "", " noisy ")
		require.NoError(t, err)
		assert.True(t, soft)
		assert.Equal(t, model.StatusRejected, comment.Status)
		assert.Equal(t, model.ReasonOther, comment.ModerationReason)
		assert.Equal(t, "noisy", comment.ModerationNotes)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		require.Len(t, rec.events, 1)
		assert.Equal(t, "soft_delete", rec.events[0].Action)
	})

	t.Run("stranger denied without change", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		comment := createTestComment("c1", user.ID, model.StatusApproved)
		repo.On("GetByID", ctx, "c1").Return(comment, nil)

		_, err := svc.Delete(ctx, stranger, "c1", model.ReasonSpam, "")
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
		assert.Equal(t, model.StatusApproved, comment.Status)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("invalid reason", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Delete(ctx, moderator, "c1", model.Reason("boring"), "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing comment", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "ghost").Return(nil, apperr.NotFound("comment not found"))

		_, err := svc.Delete(ctx, moderator, "ghost", "", "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestModerate(t *testing.T) {
	ctx := context.Background()

	t.Run("non staff denied", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Moderate(ctx, reporter, "c1", model.StatusApproved, "", "")
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.Moderate(ctx, moderator, "c1", model.StatusPending, "", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("flag an approved comment", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		comment := createTestComment("c1", user.ID, model.StatusApproved)
		repo.On("GetByID", ctx, "c1").Return(comment, nil)
		repo.On("Update", ctx, comment).Return(nil)

		moderated, err := svc.Moderate(ctx, moderator, "c1", model.StatusFlagged, model.ReasonHarassment, "check")
		require.NoError(t, err)
		assert.Equal(t, model.StatusFlagged, moderated.Status)
		assert.Equal(t, model.ReasonHarassment, moderated.ModerationReason)
	})

	t.Run("missing reason defaults to other", func(t *testing.T) {
		repo := new(MockCommentRepository)
		rec := &recorder{}
		svc := newTestService(repo, rec)
		comment := createTestComment("c1", user.ID, model.StatusApproved)
		repo.On("GetByID", ctx, "c1").Return(comment, nil)
		repo.On("Update", ctx, comment).Return(nil)

		moderated, err := svc.Moderate(ctx, moderator, "c1", model.StatusFlagged, "", "")
		require.NoError(t, err)
		assert.Equal(t, model.ReasonOther, moderated.ModerationReason)
		require.Len(t, rec.events, 1)
		assert.Equal(t, "other", rec.events[0].Note)
	})
}

func TestReact(t *testing.T) {
	ctx := context.Background()

	t.Run("like then like again removes it", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "c1").Return(createTestComment("c1", stranger.ID, model.StatusApproved), nil)

		repo.On("GetReaction", ctx, "c1", user.ID).Return(model.ReactionKind(""), nil).Once()
		repo.On("SetReaction", ctx, "c1", user.ID, model.ReactionLike).Return(nil).Once()
		repo.On("CountReactions", ctx, "c1").Return(int64(1), int64(0), nil).Once()

		result, err := svc.React(ctx, user, "c1", model.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Likes)
		require.NotNil(t, result.UserReaction)
		assert.Equal(t, model.ReactionLike, *result.UserReaction)

		repo.On("GetReaction", ctx, "c1", user.ID).Return(model.ReactionLike, nil).Once()
		repo.On("SetReaction", ctx, "c1", user.ID, model.ReactionKind("")).Return(nil).Once()
		repo.On("CountReactions", ctx, "c1").Return(int64(0), int64(0), nil).Once()

		result, err = svc.React(ctx, user, "c1", model.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Likes)
		assert.Nil(t, result.UserReaction)
		repo.AssertExpectations(t)
	})

	t.Run("dislike replaces like", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		repo.On("GetByID", ctx, "c1").Return(createTestComment("c1", stranger.ID, model.StatusApproved), nil)
		repo.On("GetReaction", ctx, "c1", user.ID).Return(model.ReactionLike, nil)
		repo.On("SetReaction", ctx, "c1", user.ID, model.ReactionDislike).Return(nil)
		repo.On("CountReactions", ctx, "c1").Return(int64(0), int64(1), nil)

		result, err := svc.React(ctx, user, "c1", model.ReactionDislike)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Dislikes)
		assert.Equal(t, model.ReactionDislike, *result.UserReaction)
	})

	t.Run("invalid kind", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.React(ctx, user, "c1", model.ReactionKind("love"))
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("reader cannot react", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, err := svc.React(ctx, reader, "c1", model.ReactionLike)
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})
}

func TestListApprovedForNews(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches replies", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		top := []model.Comment{*createTestComment("c1", user.ID, model.StatusApproved), *createTestComment("c2", user.ID, model.StatusApproved)}
		filter := repository.CommentFilter{NewsID: "published", Status: model.StatusApproved, TopLevelOnly: true, SortBy: "likes", SortOrder: "desc"}
		repo.On("List", ctx, filter, 0, 20).Return(top, int64(2), nil)

		parent := "c1"
		replies := make([]model.Comment, 0, 12)
		for i := 0; i < 12; i++ {
			r := createTestComment("r", stranger.ID, model.StatusApproved)
			r.ParentCommentID = &parent
			replies = append(replies, *r)
		}
		repo.On("ListApprovedReplies", ctx, []string{"c1", "c2"}).Return(replies, nil)

		list, total, err := svc.ListApprovedForNews(ctx, "published", utils.Pagination{}, "likes", "desc")

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list[0].Replies, model.MaxRepliesPerComment)
		assert.Equal(t, int64(12), list[0].ReplyCount)
		assert.Empty(t, list[1].Replies)
		assert.Equal(t, int64(0), list[1].ReplyCount)
	})

	t.Run("unknown news", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, _, err := svc.ListApprovedForNews(ctx, "missing", utils.Pagination{}, "", "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to pending oldest first", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)
		filter := repository.CommentFilter{Status: model.StatusPending, SortBy: "createdAt", SortOrder: "asc"}
		repo.On("List", ctx, filter, 0, 20).Return([]model.Comment{}, int64(0), nil)

		_, _, err := svc.Queue(ctx, moderator, "", utils.Pagination{})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("non staff denied", func(t *testing.T) {
		repo := new(MockCommentRepository)
		svc := newTestService(repo, nil)

		_, _, err := svc.Queue(ctx, user, "", utils.Pagination{})
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})
}

func TestMyComments(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCommentRepository)
	svc := newTestService(repo, nil)
	filter := repository.CommentFilter{AuthorID: user.ID, Status: model.StatusRejected}
	repo.On("List", ctx, filter, 10, 10).Return([]model.Comment{}, int64(11), nil)

	_, total, err := svc.MyComments(ctx, user, model.StatusRejected, utils.Pagination{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)

	_, _, err = svc.MyComments(ctx, user, model.Status("archived"), utils.Pagination{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
