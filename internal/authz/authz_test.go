package authz

import (
	"testing"

	"scout-assist/config"
)

func newPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(config.DefaultRoles())
	if err != nil {
		t.Fatalf("NewPolicy 失败: %v", err)
	}
	return p
}

func TestDefaultPolicy_RoleHierarchy(t *testing.T) {
	p := newPolicy(t)

	cases := []struct {
		role string
		cap  Capability
		want bool
	}{
		{"user", CapGenerate, true},
		{"user", CapOwnHistory, true},
		{"user", CapManageTemplates, false},
		{"user", CapViewLogs, false},
		{"manager", CapManageTemplates, true},
		{"manager", CapViewHistory, true},
		{"manager", CapManageUsers, false},
		{"manager", CapGlobalScope, false},
		{"admin", CapManageUsers, true},
		{"admin", CapViewUsage, true},
		{"admin", CapGenerate, true},
		{"admin", CapGlobalScope, true},
		{"unknown", CapGenerate, false},
	}
	for _, tc := range cases {
		if got := p.Can(tc.role, tc.cap); got != tc.want {
			t.Errorf("Can(%s, %s) 期望 %v，实际=%v", tc.role, tc.cap, tc.want, got)
		}
	}
}

func TestPredicates(t *testing.T) {
	p := newPolicy(t)
	mgr := Principal{UserID: 2, Role: "manager"}
	admin := Principal{UserID: 1, Role: "admin"}

	if !p.Allows(mgr, AnyOf(Has(CapManageUsers), Has(CapViewUsers))) {
		t.Error("manager 应满足 AnyOf(users.manage, users.view)")
	}
	if p.Allows(mgr, AllOf(Has(CapViewHistory), Has(CapExportHistory))) {
		t.Error("manager 不应满足 AllOf(history.view, history.export)")
	}
	if !p.Allows(admin, AllOf(Has(CapViewHistory), Has(CapExportHistory))) {
		t.Error("admin 应满足 AllOf(history.view, history.export)")
	}
	if !p.Allows(mgr, nil) {
		t.Error("nil 谓词应放行")
	}
	if p.IsGlobal(mgr) || !p.IsGlobal(admin) {
		t.Error("仅 admin 拥有全局范围")
	}
}

func TestNewPolicy_UnknownCapability(t *testing.T) {
	_, err := NewPolicy(map[string][]string{"user": {"generate", "fly"}})
	if err == nil {
		t.Fatal("未知能力应返回错误")
	}
}

func TestPolicy_CustomRoleTable(t *testing.T) {
	p, err := NewPolicy(map[string][]string{
		"user":    {"generate"},
		"manager": {"generate", "logs.view"},
		"admin":   {"generate", "logs.view", "scope.global"},
	})
	if err != nil {
		t.Fatalf("NewPolicy 失败: %v", err)
	}
	if p.Can("manager", CapManageTemplates) {
		t.Error("自定义策略中 manager 不应拥有 templates.manage")
	}
	if got := p.Capabilities("manager"); len(got) != 2 || got[0] != "generate" || got[1] != "logs.view" {
		t.Errorf("Capabilities 排序结果不符: %v", got)
	}
}
