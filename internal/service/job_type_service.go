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

// ── 职种模块业务错误 ──

var (
	ErrJobTypeNotFound   = errors.New("職種が見つかりません")
	ErrJobTypeNameExists = errors.New("この職種名は既に登録されています")
	ErrJobTypeInUse      = errors.New("この職種はテンプレートで使用中のため削除できません")
)

// JobTypeService 职种定义业务接口
type JobTypeService interface {
	List(ctx context.Context) ([]dto.JobTypeResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.JobTypeResponse, error)
	Create(ctx context.Context, req *dto.JobTypeRequest, pr authz.Principal) (*dto.JobTypeResponse, error)
	Update(ctx context.Context, id uint, req *dto.JobTypeRequest, pr authz.Principal) (*dto.JobTypeResponse, error)
	Delete(ctx context.Context, id uint) error
}

type jobTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewJobTypeService 创建 JobTypeService 实例
func NewJobTypeService(repo *repository.Repository, logger *zap.Logger) JobTypeService {
	return &jobTypeService{repo: repo, logger: logger}
}

func (s *jobTypeService) List(ctx context.Context) ([]dto.JobTypeResponse, error) {
	list, err := s.repo.JobType.List(ctx)
	if err != nil {
		s.logger.Error("查询职种列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.JobTypeResponse, 0, len(list))
	for i := range list {
		result = append(result, toJobTypeResponse(&list[i]))
	}
	return result, nil
}

func (s *jobTypeService) GetByID(ctx context.Context, id uint) (*dto.JobTypeResponse, error) {
	jt, err := s.repo.JobType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobTypeNotFound
		}
		s.logger.Error("查询职种失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	resp := toJobTypeResponse(jt)
	return &resp, nil
}

func (s *jobTypeService) Create(ctx context.Context, req *dto.JobTypeRequest, pr authz.Principal) (*dto.JobTypeResponse, error) {
	if _, err := s.repo.JobType.GetByName(ctx, req.Name); err == nil {
		return nil, ErrJobTypeNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查职种名失败", zap.Error(err))
		return nil, err
	}

	jt := &model.JobType{Name: req.Name, Definition: req.Definition}
	jt.Touch(pr.UserID)

	if err := s.repo.JobType.Create(ctx, jt); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrJobTypeNameExists
		}
		s.logger.Error("创建职种失败", zap.Error(err))
		return nil, err
	}

	resp := toJobTypeResponse(jt)
	return &resp, nil
}

func (s *jobTypeService) Update(ctx context.Context, id uint, req *dto.JobTypeRequest, pr authz.Principal) (*dto.JobTypeResponse, error) {
	jt, err := s.repo.JobType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobTypeNotFound
		}
		s.logger.Error("查询职种失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != jt.Name {
		if _, err := s.repo.JobType.GetByName(ctx, req.Name); err == nil {
			return nil, ErrJobTypeNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("检查职种名失败", zap.Error(err))
			return nil, err
		}
	}

	jt.Name = req.Name
	jt.Definition = req.Definition
	jt.Touch(pr.UserID)

	if err := s.repo.JobType.Update(ctx, jt); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrJobTypeNameExists
		}
		s.logger.Error("更新职种失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	resp := toJobTypeResponse(jt)
	return &resp, nil
}

func (s *jobTypeService) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.JobType.CountTemplates(ctx, id)
	if err != nil {
		s.logger.Error("统计职种引用失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if n > 0 {
		return ErrJobTypeInUse
	}

	if err := s.repo.JobType.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobTypeNotFound
		}
		s.logger.Error("删除职种失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toJobTypeResponse(jt *model.JobType) dto.JobTypeResponse {
	return dto.JobTypeResponse{
		ID:         jt.ID,
		Name:       jt.Name,
		Definition: jt.Definition,
		CreatedAt:  jt.CreatedAt,
		UpdatedAt:  jt.UpdatedAt,
	}
}
