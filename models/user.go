package models

import "golang.org/x/crypto/bcrypt"

// User represents an operator or administrator account. Authentication and
// session handling live in front of this service; only the credential model
// is kept here so a default admin can be seeded.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `json:"email"`
	PasswordHash string `gorm:"not null" json:"-"` // "-" means don't include in JSON responses
	Role         string `gorm:"not null;default:'user'" json:"role"`
	Status       string `gorm:"not null;default:'active'" json:"status"`
	LastLogin    *int64 `json:"last_login,omitempty"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"`
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
