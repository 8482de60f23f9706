package service

import (
	"errors"
	"time"

	"github.com/tawargy/project-manager/internal/model"
	jwtpkg "github.com/tawargy/project-manager/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db        *gorm.DB
	jwtSecret string
	jwtExpire int
}

func NewUserService(db *gorm.DB, jwtSecret string, jwtExpire int) *UserService {
	return &UserService{db: db, jwtSecret: jwtSecret, jwtExpire: jwtExpire}
}

// Register creates a user with no role. Uniqueness of email and username is
// checked before the insert so duplicates come back as 409, not a bare
// driver error.
func (s *UserService) Register(username, email, password string) (*model.User, error) {
	var count int64
	s.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, ConflictError("User with this email already exists")
	}

	s.db.Model(&model.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, ConflictError("User with this username already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session token. Wrong email and
// wrong password produce the same message.
func (s *UserService) Login(email, password string) (*model.User, string, time.Time, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", time.Time{}, &Error{Status: 401, Message: "Invalid email or password"}
		}
		return nil, "", time.Time{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", time.Time{}, &Error{Status: 401, Message: "Invalid email or password"}
	}

	token, expireAt, err := jwtpkg.GenerateToken(s.jwtSecret, user.ID, user.Role, s.jwtExpire)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return &user, token, expireAt, nil
}

func (s *UserService) List() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateRole(id uint, role string) (*model.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(id uint) error {
	result := s.db.Delete(&model.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return NotFoundError("User not found")
	}
	return nil
}
