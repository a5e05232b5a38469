package models

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// User is an account that can log in and own photos.
type User struct {
	ID           int    `json:"id" bson:"id" gorm:"primaryKey;autoIncrement:false"`
	Username     string `json:"username" bson:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"password_hash,omitempty" bson:"password_hash,omitempty"`
	// Password is the plaintext field found in older seed files. It is only read,
	// SetPassword clears it.
	Password string `json:"password,omitempty" bson:"password,omitempty"`
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
	u.Password = ""
	return nil
}

// CheckPassword verifies if the given password matches the user's stored credential.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
	}
	if u.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
}

// HasLegacyPassword reports whether the user still relies on a plaintext password.
func (u *User) HasLegacyPassword() bool {
	return u.PasswordHash == "" && u.Password != ""
}
