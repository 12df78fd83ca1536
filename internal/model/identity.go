package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity represents a registered user account.
type Identity struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:255;not null"`
	LastName     string    `json:"last_name" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName pins the table name used by migrations and raw queries.
func (Identity) TableName() string {
	return "identities"
}

// BeforeCreate sets a time-ordered UUID before creating the identity.
func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		i.ID = id
	}
	return nil
}

// Public returns a copy without the password hash.
func (i Identity) Public() Identity {
	i.PasswordHash = ""
	return i
}
