package models

import (
	"time"
)

// Appointment statuses.
const (
	StatusRequested   = "requested"
	StatusApproved    = "approved"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusBlocked     = "blocked"
)

// Recurrence types.
const (
	RecurrenceNone   = "none"
	RecurrenceWeekly = "weekly"
)

// Who created an appointment row.
const (
	CreatedByPatient = "patient"
	CreatedByDoctor  = "doctor"
)

// DefaultBlockReason is stored on calendar blocks created without a reason.
const DefaultBlockReason = "Doctor unavailable"

var (
	// ReservingStatuses hold a doctor's time and take part in overlap checks.
	ReservingStatuses = []string{StatusRequested, StatusApproved, StatusBlocked}
	// HistoryStatuses are the closed outcomes shown in a patient's history.
	HistoryStatuses = []string{StatusCompleted, StatusCancelled}
	// UpcomingStatuses are the open bookings shown as upcoming.
	UpcomingStatuses = []string{StatusRequested, StatusApproved}
)

// Appointment model. Dates are YYYY-MM-DD and times HH:MM; both compare
// correctly as strings.
type Appointment struct {
	ID                  string    `gorm:"primaryKey;column:id" json:"id"`
	PatientID           *string   `gorm:"column:patient_id;index" json:"patientId"`
	DoctorID            string    `gorm:"column:doctor_id;not null;index:idx_doctor_day,priority:1" json:"doctorId"`
	AppointmentDate     string    `gorm:"column:appointment_date;size:10;not null;index:idx_doctor_day,priority:2" json:"date"`
	StartTime           string    `gorm:"column:start_time;size:5;not null" json:"startTime"`
	EndTime             string    `gorm:"column:end_time;size:5;not null" json:"endTime"`
	Status              string    `gorm:"column:status;size:20;not null;index;check:status IN ('requested', 'approved', 'completed', 'cancelled', 'rescheduled', 'blocked')" json:"status"`
	Reason              string    `gorm:"column:reason" json:"reason"`
	Report              string    `gorm:"column:report;type:text" json:"report"`
	IsRecurring         bool      `gorm:"column:is_recurring;not null;default:false" json:"isRecurring"`
	RecurrenceType      string    `gorm:"column:recurrence_type;size:10;not null;default:'none'" json:"recurrenceType"`
	ParentAppointmentID *string   `gorm:"column:parent_appointment_id;index" json:"parentAppointmentId"`
	RescheduledTo       *string   `gorm:"column:rescheduled_to" json:"rescheduledTo"`
	RescheduledFrom     *string   `gorm:"column:rescheduled_from" json:"rescheduledFrom"`
	CreatedBy           string    `gorm:"column:created_by;size:10;not null" json:"createdBy"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Appointment) TableName() string {
	return "appointment"
}

// Reserves reports whether the row holds its slot.
func (a Appointment) Reserves() bool {
	for _, s := range ReservingStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// IsWeekly reports whether the row can spawn a weekly recurrence.
func (a Appointment) IsWeekly() bool {
	return a.IsRecurring && a.RecurrenceType == RecurrenceWeekly
}

// BelongsToPatient reports whether the row was booked by the given patient.
func (a Appointment) BelongsToPatient(patientID string) bool {
	return a.PatientID != nil && *a.PatientID == patientID
}

// Derive copies the booking fields of a into a fresh row that keeps the
// patient, doctor, reason and recurrence metadata but drops identity,
// schedule, status, report and lineage.
func (a Appointment) Derive() Appointment {
	return Appointment{
		PatientID:      a.PatientID,
		DoctorID:       a.DoctorID,
		Reason:         a.Reason,
		IsRecurring:    a.IsRecurring,
		RecurrenceType: a.RecurrenceType,
		CreatedBy:      a.CreatedBy,
	}
}
