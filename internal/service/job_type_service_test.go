package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/model"
)

func TestJobTypeService_CRUD(t *testing.T) {
	repos := newMockRepos()
	svc := NewJobTypeService(repos.repository, zap.NewNop())
	ctx := context.Background()
	mgr := principalOf(repos.users.add("manager", model.RoleManager))

	first, err := svc.Create(ctx, &dto.JobTypeRequest{Name: "営業", Definition: "a"}, mgr)
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if _, err := svc.Create(ctx, &dto.JobTypeRequest{Name: "営業", Definition: "b"}, mgr); !errors.Is(err, ErrJobTypeNameExists) {
		t.Errorf("期望 ErrJobTypeNameExists，实际: %v", err)
	}
	_, _ = svc.Create(ctx, &dto.JobTypeRequest{Name: "企画", Definition: "c"}, mgr)

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 2 || list[0].Name != "営業" {
		t.Errorf("应按创建顺序返回，实际=%+v", list)
	}

	_ = repos.templates.Create(ctx, &model.Template{Name: "tpl", JobTypeID: first.ID}, nil)
	if err := svc.Delete(ctx, first.ID); !errors.Is(err, ErrJobTypeInUse) {
		t.Errorf("被模板引用时期望 ErrJobTypeInUse，实际: %v", err)
	}
	if err := svc.Delete(ctx, 999); !errors.Is(err, ErrJobTypeNotFound) {
		t.Errorf("期望 ErrJobTypeNotFound，实际: %v", err)
	}
}
