package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names carried in tokens and checked by the route guards.
const (
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

// Role represents a user role
type Role struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"size:50;not null;unique;index;column:name" json:"name"`
	Description string    `gorm:"type:text;column:description" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// SeedRoles inserts the doctor and patient roles.
func SeedRoles(db *gorm.DB) error {
	initialRoles := []Role{
		{Name: RoleDoctor, Description: "Manages own calendar, appointments, reports and diet plans"},
		{Name: RolePatient, Description: "Books appointments and reads own records"},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, role := range initialRoles {
			if err := tx.FirstOrCreate(&role, Role{Name: role.Name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// User is the login record. Its ID is shared with the matching Doctor or
// Patient profile.
type User struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Email     string    `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Password  string    `gorm:"size:255;not null;column:password" json:"-"`
	RoleID    int64     `gorm:"index;not null;column:role_id" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Is reports whether the caller holds the given role.
func (i Identity) Is(role string) bool {
	return i.Role == role
}
