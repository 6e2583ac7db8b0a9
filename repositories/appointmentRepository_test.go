package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"Samagra/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testDoctor = "doc-1"
	testDate   = "2025-03-10"
)

// memoryCache is a DayCache backed by a map. beforeSet, when set, runs
// just before a listing is stored.
type memoryCache struct {
	mu        sync.Mutex
	values    map[string]string
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.values[key], 10, 64)
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, _ := m.Get(ctx, key)
	if raw == "" {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.beforeSet != nil {
		m.beforeSet()
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = string(data)
	return nil
}

func (m *memoryCache) version() string {
	v, _ := m.Get(context.Background(), dayVersionKey(testDoctor, testDate))
	return v
}

func newMockRepository(t *testing.T) (*AppointmentRepository, sqlmock.Sqlmock, *memoryCache) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	c := newMemoryCache()
	return NewAppointmentRepository(db, c, zap.NewNop()), mock, c
}

var (
	lockSQL     = regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)
	reservedSQL = `SELECT id, doctor_id, appointment_date, start_time, end_time, status FROM "appointment" ` +
		`WHERE doctor_id = \$1 AND appointment_date = \$2 AND status IN \(\$3,\$4,\$5\)`
	insertSQL = `INSERT INTO "appointment"`
	updateSQL = `UPDATE "appointment" SET .* WHERE status = \$\d+ AND .*"id" = \$\d+`
	daySQL    = `SELECT \* FROM "appointment" WHERE doctor_id = \$1 AND appointment_date = \$2 ORDER BY start_time ASC`
)

func slotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "doctor_id", "appointment_date", "start_time", "end_time", "status"})
}

func newBooking(id string) *models.Appointment {
	patient := "pat-1"
	return &models.Appointment{
		ID:              id,
		PatientID:       &patient,
		DoctorID:        testDoctor,
		AppointmentDate: testDate,
		StartTime:       "09:00",
		EndTime:         "09:30",
		Status:          models.StatusRequested,
		RecurrenceType:  models.RecurrenceNone,
		CreatedBy:       models.CreatedByPatient,
	}
}

func TestWithSlotLockLocksBeforeReadAndInsert(t *testing.T) {
	repo, mock, c := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs("doc-1|2025-03-10").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(reservedSQL).
		WithArgs(testDoctor, testDate, models.StatusRequested, models.StatusApproved, models.StatusBlocked).
		WillReturnRows(slotRows().AddRow("a0", testDoctor, testDate, "08:00", "09:00", models.StatusApproved))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithSlotLock(ctx, testDoctor, testDate, func(tx AppointmentStore) error {
		existing, err := tx.Reserved(ctx, testDoctor, testDate)
		if err != nil {
			return err
		}
		require.Len(t, existing, 1)
		return tx.Create(ctx, newBooking("a1"))
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// The doctor-day listing is invalidated only once the commit landed.
	assert.Equal(t, "1", c.version())
}

func TestWithSlotLockRollsBackOnError(t *testing.T) {
	repo, mock, c := newMockRepository(t)
	ctx := context.Background()
	errTaken := errors.New("slot taken")

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WithArgs("doc-1|2025-03-10").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.WithSlotLock(ctx, testDoctor, testDate, func(tx AppointmentStore) error {
		if err := tx.Create(ctx, newBooking("a1")); err != nil {
			return err
		}
		return errTaken
	})
	assert.ErrorIs(t, err, errTaken)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, c.version())
}

func TestWithSlotLockFailsWhenLockFails(t *testing.T) {
	repo, mock, _ := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(lockSQL).WillReturnError(errors.New("canceling statement due to lock timeout"))
	mock.ExpectRollback()

	called := false
	err := repo.WithSlotLock(context.Background(), testDoctor, testDate, func(AppointmentStore) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateGuardsOnStatus(t *testing.T) {
	repo, mock, c := newMockRepository(t)
	appt := newBooking("a1")
	appt.Status = models.StatusApproved

	mock.ExpectBegin()
	mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), appt, models.StatusRequested, "status"))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "1", c.version())
}

func TestUpdateReportsStaleRow(t *testing.T) {
	repo, mock, c := newMockRepository(t)
	appt := newBooking("a1")
	appt.Status = models.StatusApproved

	mock.ExpectBegin()
	mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), appt, models.StatusRequested, "status")
	assert.ErrorIs(t, err, ErrStaleAppointment)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, c.version())
}

func TestListByDoctorDateReadsThroughCache(t *testing.T) {
	repo, mock, _ := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectQuery(daySQL).WithArgs(testDoctor, testDate).
		WillReturnRows(slotRows().AddRow("a1", testDoctor, testDate, "09:00", "09:30", models.StatusRequested))

	first, err := repo.ListByDoctorDate(ctx, testDoctor, testDate)
	require.NoError(t, err)
	second, err := repo.ListByDoctorDate(ctx, testDoctor, testDate)
	require.NoError(t, err)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].StartTime, second[0].StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByDoctorDateIgnoresListingLoadedBeforeCommit(t *testing.T) {
	repo, mock, c := newMockRepository(t)
	ctx := context.Background()

	// A booking commits after the reader queried but before it cached.
	c.beforeSet = func() {
		c.beforeSet = nil
		repo.invalidate(ctx, testDoctor, testDate)
	}

	mock.ExpectQuery(daySQL).WithArgs(testDoctor, testDate).WillReturnRows(slotRows())
	mock.ExpectQuery(daySQL).WithArgs(testDoctor, testDate).
		WillReturnRows(slotRows().AddRow("a1", testDoctor, testDate, "09:00", "09:30", models.StatusRequested))

	stale, err := repo.ListByDoctorDate(ctx, testDoctor, testDate)
	require.NoError(t, err)
	assert.Empty(t, stale)

	fresh, err := repo.ListByDoctorDate(ctx, testDoctor, testDate)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "a1", fresh[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
