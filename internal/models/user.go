package models

import "time"

// DefaultStatus is the status text every new account starts with.
const DefaultStatus = "I am new!"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	UpdatedAt    time.Time `json:"updated_at"` // время последнего обновления
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // уникальный email (lower case)
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля, никогда не сериализуется
	Name         string    `json:"name"`       // отображаемое имя
	Status       string    `json:"status"`     // статус пользователя
	Posts        []string  `json:"posts"`      // ID постов пользователя в порядке создания
}

// OwnsPost reports whether postID is listed among the user's posts.
func (u *User) OwnsPost(postID string) bool {
	for _, id := range u.Posts {
		if id == postID {
			return true
		}
	}
	return false
}
