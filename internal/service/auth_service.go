package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/model"
	"scout-assist/internal/repository"
	"scout-assist/pkg/jwt"
	pkgerrors "scout-assist/pkg/errors"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials      = errors.New("ユーザー名またはパスワードが正しくありません")
	ErrUnauthenticated         = errors.New("認証が必要です")
	ErrTokenRevoked            = errors.New("トークンは無効化されています")
	ErrCurrentPasswordRequired = errors.New("パスワードを変更するには現在のパスワードが必要です")
	ErrWrongPassword           = errors.New("現在のパスワードが正しくありません")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, meta dto.LoginMeta) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	// Authenticate 校验 token 并按数据库当前状态解析主体
	Authenticate(ctx context.Context, token string) (authz.Principal, *jwt.Claims, error)
	Me(ctx context.Context, pr authz.Principal) (*dto.MeResponse, error)
	UpdateMe(ctx context.Context, pr authz.Principal, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	policy    *authz.Policy
	audit     AuditService
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	policy *authz.Policy,
	audit AuditService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		policy:    policy,
		audit:     audit,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, meta dto.LoginMeta) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 停用账号与密码错误返回相同信息
	if !user.IsActive() {
		return nil, ErrInvalidCredentials
	}

	// 4. 签发 Token
	token, _, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	// 5. 只记录成功登录
	s.audit.RecordLogin(ctx, user, meta)

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		// Redis 不可用时降级：token 在自然过期前仍然有效
		s.logger.Warn("写入 token 黑名单失败", zap.String("jti", claims.ID), zap.Error(err))
	}
	return nil
}

// ────────────────────── Authenticate ──────────────────────

func (s *authService) Authenticate(ctx context.Context, token string) (authz.Principal, *jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return authz.Principal{}, nil, err
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 token 黑名单失败，降级放行", zap.Error(err))
		} else if revoked {
			return authz.Principal{}, nil, ErrTokenRevoked
		}
	}

	// 角色以数据库为准，降级或停用在下一次请求即生效
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Principal{}, nil, ErrUnauthenticated
		}
		s.logger.Error("解析请求主体失败", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return authz.Principal{}, nil, err
	}
	if !user.IsActive() {
		return authz.Principal{}, nil, ErrUnauthenticated
	}

	return authz.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}, claims, nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, pr authz.Principal) (*dto.MeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, pr.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询当前用户失败", zap.Error(err))
		return nil, err
	}

	joined, err := s.repo.Team.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("查询所属团队失败", zap.Error(err))
		return nil, err
	}
	teams := make([]dto.IDName, 0, len(joined))
	for _, t := range joined {
		teams = append(teams, dto.IDName{ID: t.ID, Name: t.Name})
	}

	return &dto.MeResponse{
		UserResponse: toUserResponse(user),
		Capabilities: s.policy.Capabilities(user.Role),
		Teams:        teams,
	}, nil
}

// ────────────────────── UpdateMe ──────────────────────

func (s *authService) UpdateMe(ctx context.Context, pr authz.Principal, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, pr.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询当前用户失败", zap.Error(err))
		return nil, err
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

	if req.NewPassword != nil {
		if req.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hash, err := hashPassword(*req.NewPassword)
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
		s.logger.Error("更新当前用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ── 内部辅助 ──

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
