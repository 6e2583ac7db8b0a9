package services

import (
	"context"
	"sort"
	"sync"

	"Samagra/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type memoryUsers struct {
	mu       sync.Mutex
	users    map[string]models.User
	profiles map[string]interface{}
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]models.User{}, profiles: map[string]interface{}{}}
}

func (m *memoryUsers) EmailExists(_ context.Context, email string) (bool, error) {
	u, _ := m.GetUserByEmail(context.Background(), email)
	return u != nil, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User, roleName string, profile interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Role = models.Role{Name: roleName}
	m.users[user.ID] = *user
	m.profiles[user.ID] = profile
	return nil
}

func (m *memoryUsers) UpdateUserPassword(_ context.Context, userID, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashedPassword
	m.users[userID] = u
	return nil
}

// keyLocker is a process-local Locker.
type keyLocker struct {
	mu    sync.Mutex
	keys  map[string]*sync.Mutex
	taken []string
}

func (l *keyLocker) WithLock(_ context.Context, key string, fn func() error) error {
	l.mu.Lock()
	if l.keys == nil {
		l.keys = map[string]*sync.Mutex{}
	}
	m, ok := l.keys[key]
	if !ok {
		m = &sync.Mutex{}
		l.keys[key] = m
	}
	l.taken = append(l.taken, key)
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn()
}

type memoryCodes struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *memoryCodes) Set(_ context.Context, email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.codes == nil {
		c.codes = map[string]string{}
	}
	c.codes[email] = code
	return nil
}

func (c *memoryCodes) Get(_ context.Context, email string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email], nil
}

func (c *memoryCodes) Delete(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, email)
	return nil
}

type memoryPatients struct {
	rows map[string]*models.Patient
}

func (m *memoryPatients) GetByID(_ context.Context, id string) (*models.Patient, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPatients) Update(_ context.Context, id string, fields map[string]interface{}) error {
	p, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, v := range fields {
		switch column {
		case "date_of_birth":
			p.DateOfBirth = v.(string)
		case "address":
			p.Address = v.(string)
		case "age":
			p.Age = v.(int)
		case "profile_picture":
			p.ProfilePicture = v.(string)
		case "profile_completed":
			p.ProfileCompleted = v.(bool)
		case "health_records":
			p.HealthRecords = v.(datatypes.JSON)
		}
	}
	return nil
}

type memoryDietPlans struct {
	mu    sync.Mutex
	plans []models.DietPlan
}

func (m *memoryDietPlans) Save(_ context.Context, plan *models.DietPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.plans {
		if m.plans[i].PatientID == plan.PatientID && m.plans[i].WeekStartDate == plan.WeekStartDate {
			m.plans[i].IsActive = false
		}
	}
	plan.IsActive = true
	m.plans = append(m.plans, *plan)
	return nil
}

func (m *memoryDietPlans) Latest(_ context.Context, patientID, week string) (*models.DietPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.plans) - 1; i >= 0; i-- {
		p := m.plans[i]
		if p.PatientID != patientID {
			continue
		}
		if (week != "" && p.WeekStartDate == week) || (week == "" && p.IsActive) {
			return &p, nil
		}
	}
	return nil, nil
}

type memoryReports struct {
	rows []models.Report
}

func (m *memoryReports) Create(_ context.Context, r *models.Report) error {
	m.rows = append(m.rows, *r)
	return nil
}

func (m *memoryReports) GetByID(_ context.Context, id string) (*models.Report, error) {
	for _, r := range m.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memoryReports) ListByDoctor(_ context.Context, doctorID string) ([]models.Report, error) {
	return m.list(func(r models.Report) bool { return r.DoctorID == doctorID }), nil
}

func (m *memoryReports) ListByPatient(_ context.Context, patientID string) ([]models.Report, error) {
	return m.list(func(r models.Report) bool { return r.PatientID == patientID }), nil
}

func (m *memoryReports) list(keep func(models.Report) bool) []models.Report {
	out := []models.Report{}
	for _, r := range m.rows {
		if keep(r) && !r.IsArchived {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VisitNumber > out[j].VisitNumber })
	return out
}

func (m *memoryReports) Update(_ context.Context, r *models.Report, _ ...string) error {
	for i := range m.rows {
		if m.rows[i].ID == r.ID {
			m.rows[i] = *r
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
