package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"Samagra/models"
	"Samagra/repositories"
)

// memoryStore is an in-memory AppointmentStore. WithSlotLock serialises
// callers and restores the previous rows when fn fails.
type memoryStore struct {
	mu     sync.Mutex
	slotMu sync.Mutex
	rows   map[string]models.Appointment

	failCreate error
	failUpdate error
}

func newMemoryStore(rows ...models.Appointment) *memoryStore {
	s := &memoryStore{rows: map[string]models.Appointment{}}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	if _, exists := s.rows[a.ID]; exists {
		return errors.New("duplicate id")
	}
	s.rows[a.ID] = *a
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *memoryStore) Update(_ context.Context, a *models.Appointment, fromStatus string, columns ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	stored, ok := s.rows[a.ID]
	if !ok || stored.Status != fromStatus {
		return repositories.ErrStaleAppointment
	}
	for _, c := range columns {
		switch c {
		case "status":
			stored.Status = a.Status
		case "report":
			stored.Report = a.Report
		case "rescheduled_to":
			stored.RescheduledTo = a.RescheduledTo
		default:
			return errors.New("unexpected column " + c)
		}
	}
	s.rows[a.ID] = stored
	return nil
}

func (s *memoryStore) Reserved(_ context.Context, doctorID, date string) ([]models.Appointment, error) {
	return s.filter(func(a models.Appointment) bool {
		return a.DoctorID == doctorID && a.AppointmentDate == date && a.Reserves()
	}), nil
}

func (s *memoryStore) ListByDoctorDate(_ context.Context, doctorID, date string) ([]models.Appointment, error) {
	out := s.filter(func(a models.Appointment) bool {
		return a.DoctorID == doctorID && a.AppointmentDate == date
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *memoryStore) ListByPatient(_ context.Context, patientID string, statuses ...string) ([]models.Appointment, error) {
	out := s.filter(func(a models.Appointment) bool {
		return a.BelongsToPatient(patientID) && (len(statuses) == 0 || contains(statuses, a.Status))
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate > out[j].AppointmentDate })
	return out, nil
}

func (s *memoryStore) Count(_ context.Context, f repositories.AppointmentFilter) (int64, error) {
	out := s.filter(func(a models.Appointment) bool {
		return (f.DoctorID == "" || a.DoctorID == f.DoctorID) &&
			(f.PatientID == "" || a.BelongsToPatient(f.PatientID)) &&
			(f.Date == "" || a.AppointmentDate == f.Date) &&
			(len(f.Statuses) == 0 || contains(f.Statuses, a.Status))
	})
	return int64(len(out)), nil
}

func (s *memoryStore) WithSlotLock(_ context.Context, _, _ string, fn func(tx repositories.AppointmentStore) error) error {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[string]models.Appointment, len(s.rows))
	for k, v := range s.rows {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if err := fn(memoryTx{s}); err != nil {
		s.mu.Lock()
		s.rows = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) filter(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range s.rows {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s *memoryStore) get(id string) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id]
}

func (s *memoryStore) all() []models.Appointment {
	return s.filter(func(models.Appointment) bool { return true })
}

// memoryTx is the store as seen inside WithSlotLock.
type memoryTx struct {
	*memoryStore
}

func (t memoryTx) WithSlotLock(_ context.Context, _, _ string, fn func(tx repositories.AppointmentStore) error) error {
	return fn(t)
}

type doctorDirectory map[string]*models.Doctor

func (d doctorDirectory) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	return d[id], nil
}

type notification struct {
	recipient, subject, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{recipient, subject, body})
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type operationLog struct {
	mu      sync.Mutex
	entries map[string][]error
}

func (o *operationLog) RecordOperation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.entries == nil {
		o.entries = map[string][]error{}
	}
	o.entries[op] = append(o.entries[op], err)
}

func strPtr(s string) *string {
	return &s
}
