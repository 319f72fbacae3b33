package models

import (
	"fmt"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	FullName string `json:"name"`
	Password string `json:"password,omitempty" gorm:"not null"`
}

// Subject is the opaque identifier reports are scoped by.
func (u *User) Subject() string {
	return fmt.Sprintf("user_%d", u.ID)
}
