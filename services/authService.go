package services

import (
	"Samagra/database"
	"Samagra/models"
	"Samagra/repositories"
	"Samagra/utils"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Locker serialises work on a key across instances.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// ResetCodes keeps pending password reset codes.
type ResetCodes interface {
	Set(ctx context.Context, email, code string) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

type RegisterPatientRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dob"`
	Address     string `json:"address"`
	Age         int    `json:"age"`
}

type RegisterDoctorRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Phone          string `json:"phone"`
	Gender         string `json:"gender"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
}

// Session is what a successful login returns.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	Role         string `json:"role"`
}

type AuthService interface {
	RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*models.Patient, error)
	RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*models.Doctor, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	SendResetCode(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, email, resetCode, newPassword string) error
}

type authService struct {
	users    repositories.UserRepository
	locker   Locker
	issuer   utils.TokenIssuer
	codes    ResetCodes
	notifier Notifier
	logger   *zap.Logger
}

func NewAuthService(users repositories.UserRepository, locker Locker, issuer utils.TokenIssuer, codes ResetCodes, notifier Notifier, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		locker:   locker,
		issuer:   issuer,
		codes:    codes,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *authService) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (*models.Patient, error) {
	email := normalizeEmail(req.Email)
	if err := utils.ValidateUserData(email, req.Password); err != nil {
		return nil, err
	}
	patient := &models.Patient{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Gender:      strings.ToLower(strings.TrimSpace(req.Gender)),
		DateOfBirth: req.DateOfBirth,
		Address:     strings.TrimSpace(req.Address),
		Age:         req.Age,
	}
	if err := utils.ValidatePatientProfile(*patient); err != nil {
		return nil, err
	}

	err := s.register(ctx, email, req.Password, models.RolePatient, func(userID string) interface{} {
		patient.ID = userID
		return patient
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *authService) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*models.Doctor, error) {
	email := normalizeEmail(req.Email)
	if err := utils.ValidateUserData(email, req.Password); err != nil {
		return nil, err
	}
	doctor := &models.Doctor{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		Gender:         strings.ToLower(strings.TrimSpace(req.Gender)),
		Specialization: strings.TrimSpace(req.Specialization),
		Experience:     req.Experience,
	}
	if err := utils.ValidateDoctorProfile(*doctor); err != nil {
		return nil, err
	}

	err := s.register(ctx, email, req.Password, models.RoleDoctor, func(userID string) interface{} {
		doctor.ID = userID
		return doctor
	})
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

// register creates the login and its profile while holding a lock on the
// address, so two signups with one email cannot both pass the check.
func (s *authService) register(ctx context.Context, email, password, role string, profile func(userID string) interface{}) error {
	lockKey := fmt.Sprintf("user_lock:%s", email)
	err := s.locker.WithLock(ctx, lockKey, func() error {
		exists, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return utils.Conflictf("email already registered")
		}

		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}
		user := &models.User{
			ID:       uuid.New().String(),
			Email:    email,
			Password: hashedPassword,
		}
		if err := s.users.CreateUser(ctx, user, role, profile(user.ID)); err != nil {
			return err
		}

		s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", role))
		return nil
	})
	if errors.Is(err, database.ErrLockNotAcquired) {
		return utils.Conflictf("registration for this email is already in progress")
	}
	return err
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.Validationf("email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.Password, password) {
		return nil, utils.Unauthenticatedf("invalid email or password")
	}

	accessToken, refreshToken, err := utils.GenerateTokens(s.issuer, user.ID, user.Role.Name)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Role:         user.Role.Name,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", utils.Unauthenticatedf("refresh token is required")
	}
	claims, err := utils.ValidateToken(s.issuer, refreshToken)
	if err != nil {
		return "", utils.Unauthenticatedf("invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", utils.Unauthenticatedf("invalid refresh token")
	}
	return utils.GenerateAccessToken(s.issuer, user.ID, user.Role.Name)
}

// SendResetCode mails a one-time code. Unknown addresses get the same
// response without a mail.
func (s *authService) SendResetCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return utils.Validationf("email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Info("reset code requested for unknown email")
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset code")
	}
	if err := s.codes.Set(ctx, email, code); err != nil {
		return errors.Wrap(err, "failed to store reset code")
	}

	const subject = "Your Password Reset Code"
	body, err := utils.RenderEmail(subject, "Use the code below to reset your password. It is valid for 15 minutes.",
		utils.EmailDetail{Label: "Code", Value: code},
	)
	if err != nil {
		return err
	}
	if err := s.notifier.Notify(ctx, email, subject, body); err != nil {
		return errors.Wrap(err, "failed to send reset code")
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, email, resetCode, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" {
		return utils.Validationf("email is required")
	}
	if err := utils.ValidatePasswordReset(resetCode, newPassword); err != nil {
		return err
	}

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return err
	}
	if stored == "" || stored != resetCode {
		return utils.Validationf("invalid or expired reset code")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.NotFoundf("email not registered")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete reset code", zap.Error(err))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
