package model

import "time"

// User зарегистрированный пользователь. Password хранит bcrypt-хеш.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Session серверная сессия, на которую ссылается cookie session_token.
type Session struct {
	ID     string `gorm:"primaryKey;size:36"`
	UserID int64  `gorm:"not null;index"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:200"`

	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
