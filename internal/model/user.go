package model

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// 角色标识（能力集合由 authz.Policy 按配置解析）
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User 用户表，对应 users
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"        json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                   json:"-"`
	Status       string `gorm:"type:varchar(20);not null;default:'active'"   json:"user_status"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'"     json:"user_role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsActive 账号是否可用
func (u *User) IsActive() bool { return u.Status == UserStatusActive }
