package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSession 未登录或会话已清除
var ErrNoSession = errors.New("no active session")

// Clock 时间来源
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Storage 会话持久化
type Storage interface {
	Load() (State, error) // 无会话时返回 ErrNoSession
	Save(State) error
	Clear() error
}

// FileStorage 以 JSON 文件保存会话（权限 0600）
type FileStorage struct {
	path string
}

// NewFileStorage 创建文件存储
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultPath 用户配置目录下的默认会话文件
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scoutctl", "session.json"), nil
}

func (f *FileStorage) Load() (State, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, ErrNoSession
	}
	if err != nil {
		return State{}, fmt.Errorf("读取会话文件失败: %w", err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("解析会话文件失败: %w", err)
	}
	if s.Token == "" {
		return State{}, ErrNoSession
	}
	return s, nil
}

func (f *FileStorage) Save(s State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("写入会话文件失败: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStorage) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除会话文件失败: %w", err)
	}
	return nil
}
