package domain

import "time"

// User — аккаунт пользователя. Email уникален и используется как логин.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Username     string    `json:"username" gorm:"not null"`
	FirstName    string    `json:"first_name" gorm:"not null"`
	LastName     string    `json:"last_name" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Subscription — направленная связь "пользователь подписан на автора".
// Пара (user_id, author_id) уникальна; подписка на самого себя
// отсекается на уровне сервиса.
type Subscription struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_author"`
	AuthorID  int64     `json:"author_id" gorm:"not null;index;uniqueIndex:idx_user_author"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Virtual fields для preload
	User   *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
