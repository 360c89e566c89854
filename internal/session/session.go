// Package session 客户端空闲会话状态
// 计算全部基于注入的时钟，存储副作用隔离在 Storage 接口之后
package session

import (
	"time"

	"scout-assist/config"
)

// Policy 会话时限
type Policy struct {
	IdleTimeout     time.Duration // 无操作多久后失效
	WarningBefore   time.Duration // 失效前多久开始提示
	AbsoluteTimeout time.Duration // 自登录起的绝对时长上限，与操作无关
}

// PolicyFromConfig 由配置构建会话时限
func PolicyFromConfig(cfg *config.SessionConfig) Policy {
	return Policy{
		IdleTimeout:     cfg.IdleTimeout,
		WarningBefore:   cfg.WarningBefore,
		AbsoluteTimeout: cfg.AbsoluteTimeout,
	}
}

// State 已登录会话
type State struct {
	Token        string    `json:"token"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Status 会话评估结果
type Status int

const (
	StatusActive Status = iota
	StatusWarning
	StatusIdleExpired
	StatusAbsoluteExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusWarning:
		return "warning"
	case StatusIdleExpired:
		return "idle_expired"
	case StatusAbsoluteExpired:
		return "absolute_expired"
	default:
		return "unknown"
	}
}

// Expired 是否已失效
func (s Status) Expired() bool {
	return s == StatusIdleExpired || s == StatusAbsoluteExpired
}

// Evaluation 某一时刻的会话状况
type Evaluation struct {
	Status    Status
	Remaining time.Duration // 距失效的剩余时间（取空闲与绝对时限中较早者）
}

// WarningMinutes 提示用的剩余分钟数（向上取整）
func (e Evaluation) WarningMinutes() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int((e.Remaining + time.Minute - 1) / time.Minute)
}

// TimeRemaining 剩余有效时间，已失效时为 0
func (p Policy) TimeRemaining(s State, now time.Time) time.Duration {
	idle := s.LastActivity.Add(p.IdleTimeout).Sub(now)
	remaining := idle
	if p.AbsoluteTimeout > 0 {
		if abs := s.StartedAt.Add(p.AbsoluteTimeout).Sub(now); abs < remaining {
			remaining = abs
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Evaluate 判定会话状态：绝对时限优先于空闲时限
func (p Policy) Evaluate(s State, now time.Time) Evaluation {
	if p.AbsoluteTimeout > 0 && now.Sub(s.StartedAt) >= p.AbsoluteTimeout {
		return Evaluation{Status: StatusAbsoluteExpired}
	}

	idleLeft := p.IdleTimeout - now.Sub(s.LastActivity)
	if idleLeft <= 0 {
		return Evaluation{Status: StatusIdleExpired}
	}

	ev := Evaluation{Status: StatusActive, Remaining: p.TimeRemaining(s, now)}
	if idleLeft <= p.WarningBefore {
		ev.Status = StatusWarning
	}
	return ev
}

// Extend 记录一次操作，返回新的会话状态
// 不改变登录时间，绝对时限不会因此延长
func Extend(s State, now time.Time) State {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
	return s
}

// Begin 以登录时刻创建会话
func Begin(token, username, role string, now time.Time) State {
	return State{
		Token:        token,
		Username:     username,
		Role:         role,
		StartedAt:    now,
		LastActivity: now,
	}
}
