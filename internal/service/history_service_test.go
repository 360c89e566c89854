package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"scout-assist/internal/dto"
	"scout-assist/internal/model"
)

func TestHistoryService_List_Scoped(t *testing.T) {
	repos := newMockRepos()
	svc := NewHistoryService(repos.repository, testPolicy(), zap.NewNop())
	ctx := context.Background()

	admin := repos.users.add("admin", model.RoleAdmin)
	mgr := repos.users.add("manager", model.RoleManager)
	member := repos.users.add("member", model.RoleUser)
	outsider := repos.users.add("outsider", model.RoleUser)

	team := &model.Team{Name: "営業"}
	_ = repos.teams.Create(ctx, team)
	_ = repos.teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: mgr.ID, IsManager: true})
	_ = repos.teams.AddMember(ctx, &model.TeamMember{TeamID: team.ID, UserID: member.ID})

	for _, u := range []*model.User{mgr, member, outsider} {
		_ = repos.history.Create(ctx, &model.GenerationHistory{UserID: u.ID, Username: u.Username})
	}

	tests := []struct {
		name string
		pr   *model.User
		want int64
	}{
		{"admin 全部可见", admin, 3},
		{"manager 仅团队", mgr, 2},
		{"非管理者仅自身", outsider, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := svc.List(ctx, &dto.HistoryListRequest{}, principalOf(tt.pr))
			if err != nil {
				t.Fatalf("查询失败: %v", err)
			}
			if total != tt.want {
				t.Errorf("期望 %d 条，实际=%d", tt.want, total)
			}
		})
	}
}
