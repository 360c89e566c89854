// Package authz 基于能力的角色权限模型
// 角色 → 能力集合由配置决定，路由以能力谓词组合声明访问要求
package authz

import (
	"fmt"
	"sort"
)

// Capability 能力标识
type Capability string

const (
	CapGenerate          Capability = "generate"
	CapOwnHistory        Capability = "history.own"
	CapManageJobTypes    Capability = "job_types.manage"
	CapManageOutputRules Capability = "output_rules.manage"
	CapManageTemplates   Capability = "templates.manage"
	CapViewUsers         Capability = "users.view"
	CapViewLogs          Capability = "logs.view"
	CapViewHistory       Capability = "history.view"
	CapManageUsers       Capability = "users.manage"
	CapManageTeams       Capability = "teams.manage"
	CapViewUsage         Capability = "usage.view"
	CapExportHistory     Capability = "history.export"
	CapGlobalScope       Capability = "scope.global"
)

var knownCapabilities = map[Capability]bool{
	CapGenerate: true, CapOwnHistory: true, CapManageJobTypes: true,
	CapManageOutputRules: true, CapManageTemplates: true, CapViewUsers: true,
	CapViewLogs: true, CapViewHistory: true, CapManageUsers: true,
	CapManageTeams: true, CapViewUsage: true, CapExportHistory: true,
	CapGlobalScope: true,
}

// Principal 当前请求的已认证主体
type Principal struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Policy 角色能力表（只读，可并发使用）
type Policy struct {
	roles map[string]map[Capability]bool
}

// NewPolicy 由 roles 配置构建策略，未知能力视为配置错误
func NewPolicy(roles map[string][]string) (*Policy, error) {
	p := &Policy{roles: make(map[string]map[Capability]bool, len(roles))}
	for role, caps := range roles {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			capability := Capability(c)
			if !knownCapabilities[capability] {
				return nil, fmt.Errorf("角色 %s 配置了未知能力 %q", role, c)
			}
			set[capability] = true
		}
		p.roles[role] = set
	}
	return p, nil
}

// Can 判断角色是否拥有能力
func (p *Policy) Can(role string, c Capability) bool {
	return p.roles[role][c]
}

// IsGlobal 主体是否可见全部用户的数据
func (p *Policy) IsGlobal(pr Principal) bool {
	return p.Can(pr.Role, CapGlobalScope)
}

// Allows 以谓词评估主体
func (p *Policy) Allows(pr Principal, pred Predicate) bool {
	if pred == nil {
		return true
	}
	return pred(p, pr)
}

// KnownRole 角色是否已在策略中定义
func (p *Policy) KnownRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}

// Capabilities 返回角色的能力列表（排序）
func (p *Policy) Capabilities(role string) []string {
	out := make([]string, 0, len(p.roles[role]))
	for c := range p.roles[role] {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// ── 谓词 ──

// Predicate 路由访问谓词
type Predicate func(p *Policy, pr Principal) bool

// Has 要求拥有指定能力
func Has(c Capability) Predicate {
	return func(p *Policy, pr Principal) bool { return p.Can(pr.Role, c) }
}

// AllOf 全部满足
func AllOf(preds ...Predicate) Predicate {
	return func(p *Policy, pr Principal) bool {
		for _, pred := range preds {
			if !pred(p, pr) {
				return false
			}
		}
		return true
	}
}

// AnyOf 任一满足
func AnyOf(preds ...Predicate) Predicate {
	return func(p *Policy, pr Principal) bool {
		for _, pred := range preds {
			if pred(p, pr) {
				return true
			}
		}
		return false
	}
}
