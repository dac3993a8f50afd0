package domain

import (
	"context"
	"errors"
	"time"
)

// User 领域实体；PasswordHash 只在存储层流转，永不对外输出
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch 部分更新；nil 表示不修改。PasswordHash 必须已是哈希值
type UserPatch struct {
	Email        *string
	Name         *string
	PasswordHash *string
}

// Empty reports whether the patch carries no field changes.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.PasswordHash == nil
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists")
	ErrPersistence  = errors.New("persistence failure")
)

// UserRepository 由存储层实现；唯一约束由存储保证，冲突返回 ErrEmailTaken
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, p UserPatch) (*User, error)
	Delete(ctx context.Context, id string) error
}
