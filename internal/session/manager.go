package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrExpired 会话已失效（存储已清除）
var ErrExpired = errors.New("session expired")

// Manager 组合时限、时钟与存储
type Manager struct {
	policy  Policy
	clock   Clock
	storage Storage
	logger  *zap.Logger
}

// NewManager 创建会话管理器
func NewManager(policy Policy, clock Clock, storage Storage, logger *zap.Logger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{policy: policy, clock: clock, storage: storage, logger: logger}
}

// Begin 登录成功后保存新会话
func (m *Manager) Begin(token, username, role string) (State, error) {
	s := Begin(token, username, role, m.clock.Now())
	if err := m.storage.Save(s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Check 评估当前会话，已失效时清除存储并返回 ErrExpired
func (m *Manager) Check() (State, Evaluation, error) {
	s, err := m.storage.Load()
	if err != nil {
		return State{}, Evaluation{}, err
	}

	ev := m.policy.Evaluate(s, m.clock.Now())
	if ev.Status.Expired() {
		if err := m.Expire(); err != nil {
			return State{}, ev, err
		}
		m.logger.Info("会话已失效", zap.String("username", s.Username), zap.Stringer("status", ev.Status))
		return State{}, ev, ErrExpired
	}
	return s, ev, nil
}

// Touch 校验会话有效后记录一次操作
func (m *Manager) Touch() (State, error) {
	s, _, err := m.Check()
	if err != nil {
		return State{}, err
	}
	s = Extend(s, m.clock.Now())
	if err := m.storage.Save(s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Expire 清除会话
func (m *Manager) Expire() error {
	return m.storage.Clear()
}

// Watch 按固定间隔轮询会话，进入提示区间时调用 onWarning，失效时调用 onExpire 后返回
// ctx 取消或会话不存在时返回
func (m *Manager) Watch(ctx context.Context, interval time.Duration, onWarning func(Evaluation), onExpire func(Evaluation)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, ev, err := m.Check()
			switch {
			case errors.Is(err, ErrExpired):
				if onExpire != nil {
					onExpire(ev)
				}
				return nil
			case err != nil:
				return err
			case ev.Status == StatusWarning && onWarning != nil:
				onWarning(ev)
			}
		}
	}
}
