package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
	pkgerrors "scout-assist/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound   = errors.New("ユーザーが見つかりません")
	ErrUsernameExists = errors.New("このユーザー名は既に使用されています")
	ErrSelfDelete     = errors.New("自分自身のアカウントは削除できません")
	ErrSelfDemote     = errors.New("自分自身の権限やステータスは変更できません")
)

// UserService 用户业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest, pr authz.Principal) ([]dto.UserResponse, int64, error)
	GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateUserRequest, pr authz.Principal) (*dto.UserResponse, error)
	Delete(ctx context.Context, id uint, pr authz.Principal) error
}

type userService struct {
	repo   *repository.Repository
	policy *authz.Policy
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, policy *authz.Policy, logger *zap.Logger) UserService {
	return &userService{repo: repo, policy: policy, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest, pr authz.Principal) ([]dto.UserResponse, int64, error) {
	scope, err := resolveScope(ctx, s.repo, s.policy, pr)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, 0, err
	}

	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Keyword: req.Keyword,
		Role:    req.Role,
		Status:  req.Status,
		Scope:   scope,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id uint, pr authz.Principal) (*dto.UserResponse, error) {
	scope, err := resolveScope(ctx, s.repo, s.policy, pr)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, err
	}
	if !scope.Contains(id) {
		return nil, ErrUserNotFound
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查用户名失败", zap.Error(err))
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已创建", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id uint, req *dto.UpdateUserRequest, pr authz.Principal) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	// 不允许修改自身角色或停用自身
	if id == pr.UserID {
		if req.Role != nil && *req.Role != user.Role {
			return nil, ErrSelfDemote
		}
		if req.Status != nil && *req.Status != user.Status {
			return nil, ErrSelfDemote
		}
	}

	if req.Username != nil && *req.Username != user.Username {
		if _, err := s.repo.User.GetByUsername(ctx, *req.Username); err == nil {
			return nil, ErrUsernameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("检查用户名失败", zap.Error(err))
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrUsernameExists
		}
		s.logger.Error("更新用户失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id uint, pr authz.Principal) error {
	if id == pr.UserID {
		return ErrSelfDelete
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("用户已删除", zap.Uint("user_id", id), zap.Uint("operator", pr.UserID))
	return nil
}
