package repository

import "gorm.io/gorm"

// UserScope 用户可见范围
// Global 为 true 时不做过滤；否则仅限 UserIDs 中的用户，UserIDs 为空时结果为空
type UserScope struct {
	Global  bool
	UserIDs []uint
}

// GlobalScope 全局可见
func GlobalScope() UserScope { return UserScope{Global: true} }

// ScopeOf 限定为指定用户集合
func ScopeOf(ids ...uint) UserScope { return UserScope{UserIDs: ids} }

// Contains 判断用户是否在范围内
func (s UserScope) Contains(userID uint) bool {
	if s.Global {
		return true
	}
	for _, id := range s.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// applyScope 将范围转换为查询条件
func applyScope(db *gorm.DB, column string, scope UserScope) *gorm.DB {
	if scope.Global {
		return db
	}
	if len(scope.UserIDs) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(column+" IN ?", scope.UserIDs)
}

// normalizePage 分页参数兜底
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	return offset, limit
}
