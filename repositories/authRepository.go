package repositories

import (
	"Samagra/cache"
	"Samagra/models"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrUnknownRole is returned when a role has not been seeded.
var ErrUnknownRole = errors.New("unknown role")

type UserRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	// GetUserByEmail includes the password hash. It returns nil, nil when
	// no user has the address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// CreateUser inserts the user and its role profile in one transaction.
	CreateUser(ctx context.Context, user *models.User, roleName string, profile interface{}) error
	UpdateUserPassword(ctx context.Context, userID, hashedPassword string) error
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewUserRepository(db *gorm.DB, cache *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check email existence")
	}
	return count > 0, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, description")
		}).
		Where(query, arg).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, roleName string, profile interface{}) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownRole
			}
			return err
		}
		user.RoleID = role.ID
		user.Role = role

		if err := tx.Omit("Role").Create(user).Error; err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		if profile != nil {
			if err := tx.Create(profile).Error; err != nil {
				return errors.Wrap(err, "failed to create profile")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if roleName == models.RoleDoctor {
		return r.cache.Delete(ctx, doctorsCacheKey)
	}
	return nil
}

func (r *userRepository) UpdateUserPassword(ctx context.Context, userID, hashedPassword string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hashedPassword)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update password")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
