package models

import (
	"time"

	"gorm.io/datatypes"
)

// DietPlan is a doctor's weekly diet table for a patient. Only one plan per
// patient and week is active.
type DietPlan struct {
	ID            string         `gorm:"primaryKey;column:id" json:"dietId"`
	DoctorID      string         `gorm:"column:doctor_id;not null;index" json:"doctorId"`
	DoctorName    string         `gorm:"column:doctor_name" json:"doctorName"`
	PatientID     string         `gorm:"column:patient_id;not null;index:idx_patient_week,priority:1" json:"patientId"`
	PatientName   string         `gorm:"column:patient_name" json:"patientName"`
	WeekStartDate string         `gorm:"column:week_start_date;size:10;not null;index:idx_patient_week,priority:2" json:"weekStartDate"`
	Diet          datatypes.JSON `gorm:"column:diet;not null" json:"diet"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true;index" json:"isActive"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (DietPlan) TableName() string {
	return "diet_plan"
}

// Report is a doctor's clinical visit report. The sections are stored as
// JSON documents.
type Report struct {
	ID             string         `gorm:"primaryKey;column:id" json:"reportId"`
	PatientID      string         `gorm:"column:patient_id;not null;index" json:"patientId"`
	DoctorID       string         `gorm:"column:doctor_id;not null;index" json:"doctorId"`
	BasicInfo      datatypes.JSON `gorm:"column:basic_info;not null" json:"basicInfo"`
	DietaryHistory datatypes.JSON `gorm:"column:dietary_history" json:"dietaryHistory"`
	Measurements   datatypes.JSON `gorm:"column:measurements" json:"measurements"`
	BloodReports   datatypes.JSON `gorm:"column:blood_reports" json:"bloodReports"`
	Notes          string         `gorm:"column:notes;type:text" json:"notes"`
	VisitNumber    int            `gorm:"column:visit_number;not null" json:"visitNumber"`
	CreatedBy      string         `gorm:"column:created_by;size:10;not null" json:"createdBy"`
	IsArchived     bool           `gorm:"column:is_archived;not null;default:false" json:"isArchived"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Report) TableName() string {
	return "report"
}
