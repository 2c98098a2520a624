package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayName возвращает имя пользователя для уведомлений
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// Actor - аутентифицированный пользователь, от имени которого выполняется операция
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Registration - данные для регистрации
type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// AuthResult - выданный токен и пользователь
type AuthResult struct {
	Token string
	User  *User
}
