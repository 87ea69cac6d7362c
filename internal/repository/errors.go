package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyError 判断错误是否为唯一约束冲突
// 不同驱动返回的错误类型不一致，这里统一处理
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	// sqlite: UNIQUE constraint failed
	if strings.Contains(msg, "unique constraint") {
		return true
	}
	// mysql: Error 1062: Duplicate entry
	if strings.Contains(msg, "duplicate entry") {
		return true
	}
	// postgres: duplicate key value violates unique constraint
	if strings.Contains(msg, "duplicate key value") {
		return true
	}
	return false
}
