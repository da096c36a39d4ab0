package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"newsroom_api/internal/domain/user/model"
	"newsroom_api/internal/domain/user/repository"
	"newsroom_api/pkg/apperr"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     security.Role
}

// ProfileInput 资料更新参数，nil 表示不修改
type ProfileInput struct {
	Name           *string
	Bio            *string
	Avatar         *string
	Specialization *string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetProfile(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*model.User, error)
	GetUsers(ctx context.Context, filter repository.UserFilter, p utils.Pagination) ([]model.User, int64, error)
	AssignRole(ctx context.Context, actor security.Identity, userID string, role security.Role) (*model.User, error)
	SetActive(ctx context.Context, actor security.Identity, userID string, active bool) (*model.User, error)
}

// 自助注册只能选择的角色
var selfServiceRoles = map[security.Role]bool{
	security.RoleReader:         true,
	security.RoleRegisteredUser: true,
}

// userService 实现
type userService struct {
	repo       repository.UserRepository
	tokens     *utils.TokenIssuer
	identities *IdentityResolver
	log        *zap.Logger
}

// NewUserService 创建用户服务，identities 可为 nil
func NewUserService(repo repository.UserRepository, tokens *utils.TokenIssuer, identities *IdentityResolver, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{repo: repo, tokens: tokens, identities: identities, log: log}
}

// Register 注册
func (s *userService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" || email == "" {
		return nil, apperr.Validation("name and email are required")
	}
	if len(input.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	role := input.Role
	if role == "" {
		role = security.RoleReader
	}
	if !selfServiceRoles[role] {
		return nil, apperr.Validation("role must be reader or registered_user")
	}

	// 1. 检查邮箱是否已注册
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	// 2. 加密密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Login 登录
func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}

	if !user.IsActive {
		return nil, apperr.Unauthenticated("account is deactivated")
	}

	token, expireAt, err := s.tokens.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}

	return &LoginResult{Token: token, ExpiresAt: *expireAt, User: user}, nil
}

// GetProfile 获取个人资料
func (s *userService) GetProfile(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile 更新个人资料
func (s *userService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		user.Name = name
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Specialization != nil {
		user.Specialization = *input.Specialization
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsers 获取用户列表（分页）
func (s *userService) GetUsers(ctx context.Context, filter repository.UserFilter, p utils.Pagination) ([]model.User, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.GetList(ctx, filter, offset, limit)
}

// AssignRole 管理员修改用户角色
func (s *userService) AssignRole(ctx context.Context, actor security.Identity, userID string, role security.Role) (*model.User, error) {
	if err := security.Authorize(actor, security.OpRoleAssign, false); err != nil {
		return nil, err
	}
	if !security.IsValidRole(role) {
		return nil, apperr.Validation("invalid role")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := user.Role
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	s.log.Info("user role changed",
		zap.String("user_id", userID),
		zap.String("actor_id", actor.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(role)),
	)
	return user, nil
}

// SetActive 管理员启用/停用账号
func (s *userService) SetActive(ctx context.Context, actor security.Identity, userID string, active bool) (*model.User, error) {
	if err := security.Authorize(actor, security.OpUserActivate, false); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	s.log.Info("user activation changed",
		zap.String("user_id", userID),
		zap.String("actor_id", actor.ID),
		zap.Bool("active", active),
	)
	return user, nil
}

func (s *userService) invalidate(ctx context.Context, userID string) {
	if s.identities == nil {
		return
	}
	if err := s.identities.Invalidate(ctx, userID); err != nil {
		s.log.Warn("failed to invalidate identity cache", zap.String("user_id", userID), zap.Error(err))
	}
}
