package services

import (
	"Samagra/models"
	"Samagra/repositories"
	"Samagra/utils"
	"context"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DoctorLookup resolves doctor profiles.
type DoctorLookup interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
}

// Notifier delivers a best-effort message. Callers never fail on its errors.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// OperationRecorder observes the outcome of every scheduling operation.
type OperationRecorder interface {
	RecordOperation(operation string, err error)
}

type AppointmentOptions struct {
	// RecurrenceChecksAvailability rejects a weekly recurrence whose slot
	// is already taken. When false the occurrence is always inserted.
	RecurrenceChecksAvailability bool
	NotifyTimeout                time.Duration
}

type CreateAppointmentRequest struct {
	DoctorID       string `json:"doctorId"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Reason         string `json:"reason"`
	IsRecurring    bool   `json:"isRecurring"`
	RecurrenceType string `json:"recurrenceType"`
}

type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type BlockRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

// RescheduleResult pairs an original appointment with its successor.
type RescheduleResult struct {
	Original    *models.Appointment `json:"originalAppointment"`
	Rescheduled *models.Appointment `json:"rescheduledAppointment"`
}

// DashboardStats summarises a doctor's calendar.
type DashboardStats struct {
	Today     int64 `json:"today"`
	Upcoming  int64 `json:"upcoming"`
	Completed int64 `json:"completed"`
}

// Patient appointment list filters.
const (
	FilterAll         = "all"
	FilterUpcoming    = "upcoming"
	FilterHistory     = "history"
	FilterRescheduled = "rescheduled"
)

type AppointmentService struct {
	store    repositories.AppointmentStore
	doctors  DoctorLookup
	notifier Notifier
	recorder OperationRecorder
	logger   *zap.Logger
	opts     AppointmentOptions
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewAppointmentService(store repositories.AppointmentStore, doctors DoctorLookup, notifier Notifier, recorder OperationRecorder, logger *zap.Logger, opts AppointmentOptions) *AppointmentService {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &AppointmentService{
		store:    store,
		doctors:  doctors,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Create books a slot for the calling patient.
func (s *AppointmentService) Create(ctx context.Context, caller models.Identity, req CreateAppointmentRequest) (appt *models.Appointment, err error) {
	defer s.record("create", &err)

	if !caller.Is(models.RolePatient) {
		return nil, utils.Forbiddenf("only patients can book appointments")
	}
	if req.RecurrenceType == "" {
		req.RecurrenceType = models.RecurrenceNone
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, utils.NotFoundf("doctor not found")
	}

	patientID := caller.UserID
	appt = &models.Appointment{
		ID:              uuid.New().String(),
		PatientID:       &patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          models.StatusRequested,
		Reason:          strings.TrimSpace(req.Reason),
		IsRecurring:     req.IsRecurring,
		RecurrenceType:  req.RecurrenceType,
		CreatedBy:       models.CreatedByPatient,
	}

	err = s.store.WithSlotLock(ctx, appt.DoctorID, appt.AppointmentDate, func(tx repositories.AppointmentStore) error {
		if err := ensureFree(ctx, tx, appt.DoctorID, appt.AppointmentDate, appt.StartTime, appt.EndTime); err != nil {
			return err
		}
		return tx.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment requested",
		zap.String("appointment_id", appt.ID),
		zap.String("doctor_id", appt.DoctorID),
		zap.String("date", appt.AppointmentDate),
		zap.String("start", appt.StartTime),
	)
	s.notifyDoctor(doctor, *appt)
	return appt, nil
}

func validateCreate(req CreateAppointmentRequest) error {
	err := validation.Errors{
		"doctorId":       validation.Validate(req.DoctorID, validation.Required),
		"recurrenceType": validation.Validate(req.RecurrenceType, validation.In(models.RecurrenceNone, models.RecurrenceWeekly)),
		"reason":         validation.Validate(req.Reason, validation.Length(0, 500)),
	}.Filter()
	if err != nil {
		return utils.AsValidation(err)
	}
	return utils.ValidateRange(req.Date, req.StartTime, req.EndTime)
}

// UpdateStatus moves an appointment to approved, completed or cancelled.
func (s *AppointmentService) UpdateStatus(ctx context.Context, caller models.Identity, id, status string) (appt *models.Appointment, err error) {
	defer s.record("update_status", &err)

	appt, err = s.ownedByDoctor(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	action, ok := models.ActionForStatus(status)
	if !ok {
		return nil, utils.Validationf("status must be one of approved, completed, cancelled")
	}
	if err := s.apply(ctx, s.store, appt, action); err != nil {
		return nil, err
	}
	return appt, nil
}

// AttachReport stores the visit report and completes the appointment.
func (s *AppointmentService) AttachReport(ctx context.Context, caller models.Identity, id, report string) (appt *models.Appointment, err error) {
	defer s.record("attach_report", &err)

	appt, err = s.ownedByDoctor(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	report = strings.TrimSpace(report)
	if report == "" {
		return nil, utils.Validationf("report is required")
	}

	previous := appt.Report
	appt.Report = report
	if err := s.apply(ctx, s.store, appt, models.ActionAttachReport, "report"); err != nil {
		appt.Report = previous
		return nil, err
	}
	return appt, nil
}

// Reschedule moves a booking by creating its successor in the new slot and
// retiring the original, both in one transaction.
func (s *AppointmentService) Reschedule(ctx context.Context, caller models.Identity, id string, req RescheduleRequest) (result *RescheduleResult, err error) {
	defer s.record("reschedule", &err)

	if err := utils.ValidateRange(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	original, err := s.ownedByDoctor(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if _, err := models.Transition(original.Status, models.ActionReschedule); err != nil {
		return nil, transitionConflict(err)
	}

	successor := original.Derive()
	successor.ID = uuid.New().String()
	successor.AppointmentDate = req.Date
	successor.StartTime = req.StartTime
	successor.EndTime = req.EndTime
	successor.Status = models.StatusRequested
	successor.ParentAppointmentID = &original.ID
	successor.RescheduledFrom = &original.ID

	err = s.store.WithSlotLock(ctx, original.DoctorID, req.Date, func(tx repositories.AppointmentStore) error {
		// The original stops holding its slot in this same transaction, so
		// it must not block its own replacement.
		if err := ensureFree(ctx, tx, original.DoctorID, req.Date, req.StartTime, req.EndTime, original.ID); err != nil {
			return err
		}
		// Successor first: without the transaction a crash here still
		// leaves the original bookable rather than orphaned.
		if err := tx.Create(ctx, &successor); err != nil {
			return err
		}
		original.RescheduledTo = &successor.ID
		return s.apply(ctx, tx, original, models.ActionReschedule, "rescheduled_to")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", original.ID),
		zap.String("successor_id", successor.ID),
		zap.String("date", successor.AppointmentDate),
	)
	return &RescheduleResult{Original: original, Rescheduled: &successor}, nil
}

// GenerateRecurrence creates next week's occurrence of a weekly appointment.
func (s *AppointmentService) GenerateRecurrence(ctx context.Context, caller models.Identity, id string) (next *models.Appointment, err error) {
	defer s.record("recurrence", &err)

	source, err := s.ownedByDoctor(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !source.IsWeekly() {
		return nil, utils.Validationf("appointment is not a weekly recurring appointment")
	}
	nextDate, err := utils.AddDays(source.AppointmentDate, 7)
	if err != nil {
		return nil, err
	}

	occurrence := source.Derive()
	occurrence.ID = uuid.New().String()
	occurrence.AppointmentDate = nextDate
	occurrence.StartTime = source.StartTime
	occurrence.EndTime = source.EndTime
	occurrence.Status = models.StatusRequested
	occurrence.ParentAppointmentID = &source.ID

	err = s.store.WithSlotLock(ctx, occurrence.DoctorID, nextDate, func(tx repositories.AppointmentStore) error {
		if s.opts.RecurrenceChecksAvailability {
			if err := ensureFree(ctx, tx, occurrence.DoctorID, nextDate, occurrence.StartTime, occurrence.EndTime); err != nil {
				return err
			}
		}
		return tx.Create(ctx, &occurrence)
	})
	if err != nil {
		return nil, err
	}
	return &occurrence, nil
}

// BlockCalendar reserves doctor time that no patient can book.
func (s *AppointmentService) BlockCalendar(ctx context.Context, caller models.Identity, req BlockRequest) (block *models.Appointment, err error) {
	defer s.record("block", &err)

	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can block their calendar")
	}
	if err := utils.ValidateRange(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = models.DefaultBlockReason
	}

	block = &models.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        caller.UserID,
		AppointmentDate: req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          models.StatusBlocked,
		Reason:          reason,
		RecurrenceType:  models.RecurrenceNone,
		CreatedBy:       models.CreatedByDoctor,
	}
	// Blocking never fails on overlap, but it still serialises with
	// bookings of the same day.
	err = s.store.WithSlotLock(ctx, block.DoctorID, block.AppointmentDate, func(tx repositories.AppointmentStore) error {
		return tx.Create(ctx, block)
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// DoctorDay lists the caller's appointments on date by start time.
func (s *AppointmentService) DoctorDay(ctx context.Context, caller models.Identity, date string) ([]models.Appointment, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can view their calendar")
	}
	if err := utils.ValidateDate(date); err != nil {
		return nil, err
	}
	return s.store.ListByDoctorDate(ctx, caller.UserID, date)
}

// PatientAppointments lists the caller's appointments, newest date first.
func (s *AppointmentService) PatientAppointments(ctx context.Context, caller models.Identity, filter string) ([]models.Appointment, error) {
	if !caller.Is(models.RolePatient) {
		return nil, utils.Forbiddenf("only patients can view their appointments")
	}
	var statuses []string
	switch filter {
	case "", FilterAll:
	case FilterUpcoming:
		statuses = models.UpcomingStatuses
	case FilterHistory:
		statuses = models.HistoryStatuses
	case FilterRescheduled:
		statuses = []string{models.StatusRescheduled}
	default:
		return nil, utils.Validationf("type must be one of all, upcoming, history, rescheduled")
	}
	return s.store.ListByPatient(ctx, caller.UserID, statuses...)
}

// PatientHistory lists completed and cancelled appointments.
func (s *AppointmentService) PatientHistory(ctx context.Context, caller models.Identity) ([]models.Appointment, error) {
	return s.PatientAppointments(ctx, caller, FilterHistory)
}

// PatientUpcoming lists requested and approved appointments.
func (s *AppointmentService) PatientUpcoming(ctx context.Context, caller models.Identity) ([]models.Appointment, error) {
	return s.PatientAppointments(ctx, caller, FilterUpcoming)
}

// RescheduleDetails returns an appointment and, when it was rescheduled,
// its successor. Only the patient or doctor of the appointment may read it.
func (s *AppointmentService) RescheduleDetails(ctx context.Context, caller models.Identity, id string) (*RescheduleResult, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != caller.UserID && !appt.BelongsToPatient(caller.UserID) {
		return nil, utils.Forbiddenf("not allowed to view this appointment")
	}

	result := &RescheduleResult{Original: appt}
	if appt.RescheduledTo != nil {
		next, err := s.store.GetByID(ctx, *appt.RescheduledTo)
		if err != nil {
			return nil, err
		}
		result.Rescheduled = next
	}
	return result, nil
}

// Dashboard counts the caller's appointments for today, still open, and
// completed.
func (s *AppointmentService) Dashboard(ctx context.Context, caller models.Identity) (*DashboardStats, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors have a dashboard")
	}
	var stats DashboardStats
	var err error
	if stats.Today, err = s.store.Count(ctx, repositories.AppointmentFilter{DoctorID: caller.UserID, Date: utils.Today(s.now())}); err != nil {
		return nil, err
	}
	if stats.Upcoming, err = s.store.Count(ctx, repositories.AppointmentFilter{DoctorID: caller.UserID, Statuses: models.UpcomingStatuses}); err != nil {
		return nil, err
	}
	if stats.Completed, err = s.store.Count(ctx, repositories.AppointmentFilter{DoctorID: caller.UserID, Statuses: []string{models.StatusCompleted}}); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Wait blocks until in-flight notifications have finished.
func (s *AppointmentService) Wait() {
	s.wg.Wait()
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	if id == "" {
		return nil, utils.Validationf("appointment id is required")
	}
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, utils.NotFoundf("appointment not found")
	}
	return appt, nil
}

// ownedByDoctor loads an appointment the calling doctor is allowed to act on.
func (s *AppointmentService) ownedByDoctor(ctx context.Context, caller models.Identity, id string) (*models.Appointment, error) {
	if !caller.Is(models.RoleDoctor) {
		return nil, utils.Forbiddenf("only doctors can manage appointments")
	}
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != caller.UserID {
		return nil, utils.Forbiddenf("not allowed to modify this appointment")
	}
	return appt, nil
}

// apply runs action on appt and persists status plus any extra columns,
// guarded by the status the row was read in.
func (s *AppointmentService) apply(ctx context.Context, store repositories.AppointmentStore, appt *models.Appointment, action models.Action, columns ...string) error {
	from := appt.Status
	to, err := models.Transition(from, action)
	if err != nil {
		return transitionConflict(err)
	}

	appt.Status = to
	if err := store.Update(ctx, appt, from, append([]string{"status"}, columns...)...); err != nil {
		appt.Status = from
		if errors.Is(err, repositories.ErrStaleAppointment) {
			return utils.Conflictf("appointment changed while updating, please retry")
		}
		return err
	}
	s.logger.Debug("appointment transition",
		zap.String("appointment_id", appt.ID),
		zap.String("action", string(action)),
		zap.String("from", from),
		zap.String("to", to),
	)
	return nil
}

func transitionConflict(err error) error {
	var te *models.TransitionError
	if errors.As(err, &te) {
		return utils.Conflictf("%s", te.Error())
	}
	return err
}

func (s *AppointmentService) notifyDoctor(doctor *models.Doctor, appt models.Appointment) {
	if s.notifier == nil || doctor.Email == "" {
		return
	}

	recipient := doctor.Email
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("notification panicked", zap.Any("panic", r), zap.String("appointment_id", appt.ID))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.NotifyTimeout)
		defer cancel()

		const subject = "New Appointment Request"
		body, err := utils.RenderEmail(subject, "A patient has requested an appointment with you.",
			utils.EmailDetail{Label: "Date", Value: appt.AppointmentDate},
			utils.EmailDetail{Label: "Time", Value: appt.StartTime + " - " + appt.EndTime},
			utils.EmailDetail{Label: "Reason", Value: appt.Reason},
		)
		if err == nil {
			err = s.notifier.Notify(ctx, recipient, subject, body)
		}
		if err != nil {
			s.logger.Warn("failed to notify doctor",
				zap.String("appointment_id", appt.ID),
				zap.String("doctor_id", appt.DoctorID),
				zap.Error(err),
			)
		}
	}()
}

func (s *AppointmentService) record(operation string, err *error) {
	if s.recorder != nil {
		s.recorder.RecordOperation(operation, *err)
	}
}
