package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is a contact/conversation note owned by exactly one identity.
type Record struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:char(36);not null;index:idx_records_owner_created,priority:1"`
	FirstName string    `json:"first_name" gorm:"size:255;not null"`
	LastName  string    `json:"last_name" gorm:"size:255;not null"`
	Email     *string   `json:"email,omitempty" gorm:"size:255"`
	Notes     string    `json:"notes" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_records_owner_created,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner *Identity `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name used by migrations and raw queries.
func (Record) TableName() string {
	return "records"
}

// BeforeCreate sets a time-ordered UUID before creating the record.
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		r.ID = id
	}
	return nil
}
