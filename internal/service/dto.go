package service

import (
	"time"

	"go-gin-user-service/internal/domain"
)

// CreateUserInput POST /users 的请求体（已校验）
type CreateUserInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateUserInput PATCH /users/:id 的请求体；nil 字段不修改
type UpdateUserInput struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserSummary create / list / get 的对外形状
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdatedUser update 的对外形状（带 updatedAt，不带 createdAt）
type UpdatedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toSummary(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func toUpdated(u *domain.User) UpdatedUser {
	return UpdatedUser{ID: u.ID, Email: u.Email, Name: u.Name, UpdatedAt: u.UpdatedAt}
}
