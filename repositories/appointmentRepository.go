package repositories

import (
	"Samagra/models"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AppointmentCacheExpiry = 10 * time.Minute
)

// ErrStaleAppointment is returned by Update when the row left the expected
// status before the write landed.
var ErrStaleAppointment = errors.New("appointment was modified concurrently")

// AppointmentFilter narrows Count. Empty fields are ignored.
type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	Date      string
	Statuses  []string
}

// AppointmentStore is the persistence contract of the scheduling core.
type AppointmentStore interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	// GetByID returns nil, nil when the appointment does not exist.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// Update writes the named columns of appointment, provided the stored
	// row is still in fromStatus.
	Update(ctx context.Context, appointment *models.Appointment, fromStatus string, columns ...string) error
	// Reserved lists the rows of one doctor-day that hold their slot.
	Reserved(ctx context.Context, doctorID, date string) ([]models.Appointment, error)
	ListByDoctorDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string, statuses ...string) ([]models.Appointment, error)
	Count(ctx context.Context, filter AppointmentFilter) (int64, error)
	// WithSlotLock runs fn in one transaction that holds an exclusive lock
	// on the doctor-day, so reads and writes inside fn cannot interleave
	// with another writer of the same slot set.
	WithSlotLock(ctx context.Context, doctorID, date string, fn func(tx AppointmentStore) error) error
}

// DayCache is the part of the Redis cache the doctor-day listing uses.
type DayCache interface {
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type AppointmentRepository struct {
	db     *gorm.DB
	cache  DayCache
	logger *zap.Logger
	// pending collects the doctor-day version keys to bump once the
	// enclosing slot transaction commits. Nil outside a transaction.
	pending map[string]struct{}
}

func NewAppointmentRepository(db *gorm.DB, cache DayCache, logger *zap.Logger) *AppointmentRepository {
	return &AppointmentRepository{db: db, cache: cache, logger: logger}
}

func (r *AppointmentRepository) WithSlotLock(ctx context.Context, doctorID, date string, fn func(tx AppointmentStore) error) error {
	if r.pending != nil {
		// Already inside a transaction: take the extra slot lock on it.
		if err := lockSlot(r.db.WithContext(ctx), doctorID, date); err != nil {
			return err
		}
		return fn(r)
	}

	txRepo := &AppointmentRepository{cache: r.cache, logger: r.logger, pending: map[string]struct{}{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSlot(tx, doctorID, date); err != nil {
			return err
		}
		txRepo.db = tx
		return fn(txRepo)
	})
	if err != nil {
		return err
	}

	for key := range txRepo.pending {
		r.bumpVersion(ctx, key)
	}
	return nil
}

// lockSlot takes a transaction-scoped advisory lock on the doctor-day.
func lockSlot(tx *gorm.DB, doctorID, date string) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", slotKey(doctorID, date)).Error; err != nil {
		return errors.Wrap(err, "failed to lock slot")
	}
	return nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return errors.Wrap(err, "failed to create appointment")
	}
	r.invalidate(ctx, appointment.DoctorID, appointment.AppointmentDate)
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get appointment")
	}
	return &appointment, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment, fromStatus string, columns ...string) error {
	res := r.db.WithContext(ctx).
		Model(appointment).
		Where("status = ?", fromStatus).
		Select(columns).
		Updates(appointment)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update appointment")
	}
	if res.RowsAffected == 0 {
		return ErrStaleAppointment
	}
	r.invalidate(ctx, appointment.DoctorID, appointment.AppointmentDate)
	return nil
}

func (r *AppointmentRepository) Reserved(ctx context.Context, doctorID, date string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	err := r.db.WithContext(ctx).
		Select("id, doctor_id, appointment_date, start_time, end_time, status").
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?", doctorID, date, models.ReservingStatuses).
		Find(&appointments).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reserved slots")
	}
	return appointments, nil
}

// ListByDoctorDate reads through a cache keyed by the doctor-day version.
// Writers bump the version after commit, so a reader that loaded rows before
// the commit can only store them under a key nobody reads any more.
func (r *AppointmentRepository) ListByDoctorDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}

	cacheKey, cached := "", false
	if r.pending == nil {
		cacheKey, cached = r.dayCacheKey(ctx, doctorID, date)
	}
	if cached {
		hit, err := r.cache.GetJSON(ctx, cacheKey, &appointments)
		if err != nil {
			r.logger.Warn("failed to read doctor day from cache", zap.String("key", cacheKey), zap.Error(err))
		}
		if hit {
			return appointments, nil
		}
	}

	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list doctor appointments")
	}

	if cached {
		if err := r.cache.SetJSON(ctx, cacheKey, appointments, AppointmentCacheExpiry); err != nil {
			r.logger.Warn("failed to cache doctor day", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return appointments, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string, statuses ...string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	q := r.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("appointment_date DESC").Order("start_time DESC").Find(&appointments).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list patient appointments")
	}
	return appointments, nil
}

func (r *AppointmentRepository) Count(ctx context.Context, filter AppointmentFilter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.DoctorID != "" {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != "" {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Date != "" {
		q = q.Where("appointment_date = ?", filter.Date)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count appointments")
	}
	return n, nil
}

func (r *AppointmentRepository) invalidate(ctx context.Context, doctorID, date string) {
	key := dayVersionKey(doctorID, date)
	if r.pending != nil {
		r.pending[key] = struct{}{}
		return
	}
	r.bumpVersion(ctx, key)
}

func (r *AppointmentRepository) bumpVersion(ctx context.Context, key string) {
	if _, err := r.cache.Incr(ctx, key); err != nil {
		r.logger.Warn("failed to invalidate appointment cache", zap.String("key", key), zap.Error(err))
	}
}

// dayCacheKey returns the listing key for the current doctor-day version.
// It reports false when the version cannot be read, and the caller then
// bypasses the cache.
func (r *AppointmentRepository) dayCacheKey(ctx context.Context, doctorID, date string) (string, bool) {
	version, err := r.cache.Get(ctx, dayVersionKey(doctorID, date))
	if err != nil {
		r.logger.Warn("failed to read doctor day version", zap.Error(err))
		return "", false
	}
	if version == "" {
		version = "0"
	}
	return fmt.Sprintf("appointments_cache:%s:%s:v%s", doctorID, date, version), true
}

func slotKey(doctorID, date string) string {
	return doctorID + "|" + date
}

func dayVersionKey(doctorID, date string) string {
	return fmt.Sprintf("appointments_version:%s:%s", doctorID, date)
}
