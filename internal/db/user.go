package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RoleReader = "reader"
	RoleWriter = "writer"
	RoleAdmin  = "admin"
)

// User 定义了用户模型
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null" json:"-"`
	FullName string
	Roles    []UserRole
}

// UserRole 记录用户拥有的角色，(user_id, role) 唯一。
type UserRole struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_user_role;not null"`
	Role      string `gorm:"size:20;uniqueIndex:idx_user_role;not null"`
	CreatedAt time.Time
}

// IsValidRole 判断角色名称是否受支持。
func IsValidRole(role string) bool {
	switch role {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// EnsureUser 存在性检查：若用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户，
// 并确保其拥有给定的角色。
func EnsureUser(gdb *gorm.DB, username, password string, roles ...string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		existing = User{Username: trimmedUser, Password: string(hashed)}
		if err := gdb.Create(&existing).Error; err != nil {
			return err
		}
	}

	for _, role := range append([]string{RoleReader}, roles...) {
		if !IsValidRole(role) {
			continue
		}
		if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&UserRole{UserID: existing.ID, Role: role}).Error; err != nil {
			return err
		}
	}

	return nil
}
