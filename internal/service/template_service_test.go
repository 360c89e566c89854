package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/model"
)

func setupTestTemplateService() (*templateService, *mockRepos) {
	repos := newMockRepos()
	svc := NewTemplateService(repos.repository, testPolicy(), zap.NewNop()).(*templateService)
	svc.now = func() time.Time { return time.Date(2024, 7, 15, 10, 30, 45, 0, time.UTC) }
	return svc, repos
}

func seedTemplate(t *testing.T, repos *mockRepos, name string, assign ...uint) *model.Template {
	t.Helper()
	jt := repos.jobTypes.add("営業"+name, "顧客と関係を築く")
	rule := repos.rules.add("丁寧"+name, "敬語で書く")
	tpl := &model.Template{
		Name:               name,
		JobTypeID:          jt.ID,
		Industry:           "IT",
		CompanyRequirement: "主体性",
		OfferTemplate:      "【】さんへ",
		OutputRuleID:       &rule.ID,
	}
	if err := repos.templates.Create(context.Background(), tpl, assign); err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	return tpl
}

// ── Create 测试 ──

func TestTemplateService_Create_NonAdminAutoAssigned(t *testing.T) {
	svc, repos := setupTestTemplateService()
	u := repos.users.add("tanaka", model.RoleUser)
	jt := repos.jobTypes.add("営業", "定義")

	resp, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Name: "新テンプレ", JobTypeID: jt.ID, Industry: "IT", CompanyRequirement: "x", OfferTemplate: "y",
	}, principalOf(u))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if !repos.templates.assignments[resp.ID][u.ID] {
		t.Error("非管理员创建的模板应自动分配给创建者")
	}
}

func TestTemplateService_Create_UnknownReferences(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	jt := repos.jobTypes.add("営業", "定義")
	missing := uint(99)

	_, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Name: "x", JobTypeID: 42, Industry: "IT", CompanyRequirement: "x", OfferTemplate: "y",
	}, principalOf(admin))
	if !errors.Is(err, ErrJobTypeNotFound) {
		t.Errorf("期望 ErrJobTypeNotFound，实际: %v", err)
	}

	_, err = svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Name: "x", JobTypeID: jt.ID, Industry: "IT", CompanyRequirement: "x", OfferTemplate: "y", OutputRuleID: &missing,
	}, principalOf(admin))
	if !errors.Is(err, ErrOutputRuleNotFound) {
		t.Errorf("期望 ErrOutputRuleNotFound，实际: %v", err)
	}
}

func TestTemplateService_Create_DuplicateName(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	tpl := seedTemplate(t, repos, "Acme_Sales")

	_, err := svc.Create(context.Background(), &dto.CreateTemplateRequest{
		Name: "Acme_Sales", JobTypeID: tpl.JobTypeID, Industry: "IT", CompanyRequirement: "x", OfferTemplate: "y",
	}, principalOf(admin))
	if !errors.Is(err, ErrTemplateNameExists) {
		t.Errorf("期望 ErrTemplateNameExists，实际: %v", err)
	}
}

// ── 可见性与编辑权限测试 ──

func TestTemplateService_Visibility(t *testing.T) {
	svc, repos := setupTestTemplateService()
	ctx := context.Background()
	owner := repos.users.add("owner", model.RoleUser)
	teammate := repos.users.add("teammate", model.RoleUser)
	stranger := repos.users.add("stranger", model.RoleUser)
	tpl := seedTemplate(t, repos, "Acme_Sales", owner.ID)

	team := &model.Team{Name: "営業"}
	_ = repos.teams.Create(ctx, team)
	_ = repos.teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: teammate.ID})
	_ = repos.teams.ReplaceTemplates(ctx, team.ID, []uint{tpl.ID})

	if _, err := svc.GetByID(ctx, tpl.ID, principalOf(teammate)); err != nil {
		t.Errorf("团队分配的模板应可见，实际: %v", err)
	}
	if _, err := svc.GetByID(ctx, tpl.ID, principalOf(stranger)); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("未分配的模板期望 ErrTemplateNotFound，实际: %v", err)
	}

	list, err := svc.List(ctx, principalOf(stranger))
	if err != nil || len(list) != 0 {
		t.Errorf("stranger 期望空列表，实际 len=%d err=%v", len(list), err)
	}

	name := "renamed"
	if _, err := svc.Update(ctx, tpl.ID, &dto.UpdateTemplateRequest{Name: &name}, principalOf(teammate)); !errors.Is(err, ErrTemplateForbidden) {
		t.Errorf("仅经团队可见的用户编辑期望 ErrTemplateForbidden，实际: %v", err)
	}
	if _, err := svc.Update(ctx, tpl.ID, &dto.UpdateTemplateRequest{Name: &name}, principalOf(owner)); err != nil {
		t.Errorf("直接分配的用户应可编辑，实际: %v", err)
	}
	if err := svc.Delete(ctx, tpl.ID, principalOf(stranger)); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("不可见模板删除期望 ErrTemplateNotFound，实际: %v", err)
	}
}

func TestTemplateService_Update_ClearOutputRule(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	tpl := seedTemplate(t, repos, "Acme_Sales")

	resp, err := svc.Update(context.Background(), tpl.ID, &dto.UpdateTemplateRequest{ClearOutputRule: true}, principalOf(admin))
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if resp.OutputRuleID != nil {
		t.Errorf("期望 output_rule_id 被清空，实际=%v", *resp.OutputRuleID)
	}
}

// ── Duplicate 测试 ──

func TestTemplateService_Duplicate_AdminCopiesAssignments(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	a := repos.users.add("a", model.RoleUser)
	b := repos.users.add("b", model.RoleUser)
	src := seedTemplate(t, repos, "Acme_Sales", a.ID, b.ID)

	resp, err := svc.Duplicate(context.Background(), src.ID, &dto.DuplicateTemplateRequest{}, principalOf(admin))
	if err != nil {
		t.Fatalf("复制失败: %v", err)
	}
	if resp.Name != "Acme_Sales_20240715103045" {
		t.Errorf("期望名称 Acme_Sales_20240715103045，实际=%s", resp.Name)
	}
	if resp.ID == src.ID {
		t.Error("复制结果应为新行")
	}
	if resp.Industry != src.Industry || resp.OfferTemplate != src.OfferTemplate || resp.JobTypeID != src.JobTypeID {
		t.Error("复制结果内容字段应与源模板一致")
	}
	if !reflect.DeepEqual(repos.templates.assignedIDs(resp.ID), []uint{a.ID, b.ID}) {
		t.Errorf("管理员复制应继承分配，实际=%v", repos.templates.assignedIDs(resp.ID))
	}
}

func TestTemplateService_Duplicate_UserAssignsSelfOnly(t *testing.T) {
	svc, repos := setupTestTemplateService()
	u := repos.users.add("tanaka", model.RoleUser)
	other := repos.users.add("other", model.RoleUser)
	src := seedTemplate(t, repos, "Acme_Sales", u.ID, other.ID)

	resp, err := svc.Duplicate(context.Background(), src.ID, &dto.DuplicateTemplateRequest{Name: "Mine"}, principalOf(u))
	if err != nil {
		t.Fatalf("复制失败: %v", err)
	}
	if resp.Name != "Mine" {
		t.Errorf("指定名称应被采用，实际=%s", resp.Name)
	}
	if !reflect.DeepEqual(repos.templates.assignedIDs(resp.ID), []uint{u.ID}) {
		t.Errorf("普通用户复制应仅分配给自己，实际=%v", repos.templates.assignedIDs(resp.ID))
	}
}

func TestTemplateService_Duplicate_FailureLeavesNoRow(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	src := seedTemplate(t, repos, "Acme_Sales")
	repos.templates.dupErr = errors.New("simulated failure")

	if _, err := svc.Duplicate(context.Background(), src.ID, &dto.DuplicateTemplateRequest{}, principalOf(admin)); err == nil {
		t.Fatal("期望复制失败")
	}
	if len(repos.templates.items) != 1 {
		t.Errorf("复制失败后不应存在新模板，实际模板数=%d", len(repos.templates.items))
	}
}

func TestTemplateService_Duplicate_NameTaken(t *testing.T) {
	svc, repos := setupTestTemplateService()
	admin := repos.users.add("admin", model.RoleAdmin)
	src := seedTemplate(t, repos, "Acme_Sales")
	seedTemplate(t, repos, "Taken")

	_, err := svc.Duplicate(context.Background(), src.ID, &dto.DuplicateTemplateRequest{Name: "Taken"}, principalOf(admin))
	if !errors.Is(err, ErrTemplateNameExists) {
		t.Errorf("期望 ErrTemplateNameExists，实际: %v", err)
	}
}

// ── AssignUsers 测试 ──

func TestTemplateService_AssignUsers_Replaces(t *testing.T) {
	svc, repos := setupTestTemplateService()
	a := repos.users.add("a", model.RoleUser)
	b := repos.users.add("b", model.RoleUser)
	src := seedTemplate(t, repos, "Acme_Sales", a.ID)

	users, err := svc.AssignUsers(context.Background(), src.ID, &dto.AssignUsersRequest{UserIDs: []uint{b.ID, b.ID}})
	if err != nil {
		t.Fatalf("分配失败: %v", err)
	}
	if len(users) != 1 || users[0].ID != b.ID {
		t.Errorf("期望分配集合被替换为 [b]，实际=%+v", users)
	}

	if _, err := svc.AssignUsers(context.Background(), src.ID, &dto.AssignUsersRequest{UserIDs: []uint{999}}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("不存在的用户期望 ErrUserNotFound，实际: %v", err)
	}
}
