package models

import (
	"time"

	"gorm.io/datatypes"
)

// Doctor profile
type Doctor struct {
	ID               string         `gorm:"primaryKey;column:id" json:"id"`
	FirstName        string         `gorm:"column:first_name;not null" json:"firstName"`
	LastName         string         `gorm:"column:last_name;index" json:"lastName"`
	Email            string         `gorm:"column:email;not null;unique" json:"email"`
	Phone            string         `gorm:"column:phone" json:"phone"`
	Gender           string         `gorm:"column:gender;check:gender IN ('male', 'female')" json:"gender"`
	Specialization   string         `gorm:"column:specialization;not null;index" json:"specialization"`
	Experience       int            `gorm:"column:experience" json:"experience"`
	DateOfBirth      string         `gorm:"column:date_of_birth" json:"dob"`
	Address          string         `gorm:"column:address" json:"address"`
	Age              int            `gorm:"column:age" json:"age"`
	ProfilePicture   string         `gorm:"column:profile_picture" json:"profilePicture"`
	ProfileCompleted bool           `gorm:"column:profile_completed;not null;default:false" json:"profileCompleted"`
	Availability     datatypes.JSON `gorm:"column:availability" json:"availability,omitempty"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Doctor) TableName() string {
	return "doctor"
}

// FullName joins first and last name.
func (d Doctor) FullName() string {
	return joinName(d.FirstName, d.LastName)
}

// Patient profile
type Patient struct {
	ID               string         `gorm:"primaryKey;column:id" json:"id"`
	FirstName        string         `gorm:"column:first_name;not null" json:"firstName"`
	LastName         string         `gorm:"column:last_name;index" json:"lastName"`
	Email            string         `gorm:"column:email;not null;unique" json:"email"`
	Phone            string         `gorm:"column:phone" json:"phone"`
	Gender           string         `gorm:"column:gender;check:gender IN ('male', 'female')" json:"gender"`
	DateOfBirth      string         `gorm:"column:date_of_birth" json:"dob"`
	Address          string         `gorm:"column:address" json:"address"`
	Age              int            `gorm:"column:age" json:"age"`
	ProfilePicture   string         `gorm:"column:profile_picture" json:"profilePicture"`
	HealthRecords    datatypes.JSON `gorm:"column:health_records" json:"healthRecords,omitempty"`
	ProfileCompleted bool           `gorm:"column:profile_completed;not null;default:false" json:"profileCompleted"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Patient) TableName() string {
	return "patient"
}

// FullName joins first and last name.
func (p Patient) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
