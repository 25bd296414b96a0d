package account

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
)

const bcryptCost = 10

var (
	ErrEmailTaken    = errors.New("email already registered")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// Registration 注册请求
type Registration struct {
	DisplayName string
	Email       string
	Password    string
	ProfilePic  *finance.Upload
}

// Service 用户注册、登录与资料维护
type Service struct {
	users      finance.UserStore
	uploadsDir string
	now        func() time.Time
}

func NewService(users finance.UserStore, uploadsDir string) *Service {
	return &Service{users: users, uploadsDir: uploadsDir, now: time.Now}
}

// Register creates a user with a bcrypt password hash. The profile picture, if
// any, is written to the uploads dir and referenced as /uploads/<file>.
func (s *Service) Register(reg Registration) (finance.User, error) {
	if _, taken, err := s.users.FindUserByEmail(reg.Email); err != nil {
		return finance.User{}, err
	} else if taken {
		return finance.User{}, ErrEmailTaken
	}

	profilePic := ""
	if reg.ProfilePic != nil {
		name, err := s.saveProfilePic(reg.ProfilePic)
		if err != nil {
			return finance.User{}, err
		}
		profilePic = "/uploads/" + name
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcryptCost)
	if err != nil {
		return finance.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user := finance.User{
		ID:          uuid.NewString(),
		Email:       reg.Email,
		DisplayName: reg.DisplayName,
		Password:    string(hash),
		ProfilePic:  profilePic,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.users.CreateUser(user); err != nil {
		return finance.User{}, err
	}

	log.Printf("[account] registered user=%s", user.ID)
	return user.Public(), nil
}

func (s *Service) saveProfilePic(upload *finance.Upload) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}

	name := fmt.Sprintf("%d-%d-%s", s.now().UnixMilli(), rand.IntN(1e9), filepath.Base(upload.Filename))
	f, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("creating profile picture: %w", err)
	}
	_, err = io.Copy(f, upload.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing profile picture: %w", err)
	}
	return name, nil
}

// Login checks the password against the stored hash.
func (s *Service) Login(email, password string) (finance.User, error) {
	user, ok, err := s.users.FindUserByEmail(email)
	if err != nil {
		return finance.User{}, err
	}
	if !ok {
		return finance.User{}, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return finance.User{}, ErrWrongPassword
	}
	return user.Public(), nil
}

func (s *Service) Get(id string) (finance.User, error) {
	user, err := s.users.GetUser(id)
	if errors.Is(err, finance.ErrNotFound) {
		return finance.User{}, ErrUserNotFound
	}
	if err != nil {
		return finance.User{}, err
	}
	return user.Public(), nil
}

func (s *Service) Update(id, displayName, email string) error {
	err := s.users.UpdateUser(id, displayName, email)
	if errors.Is(err, finance.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Delete is idempotent.
func (s *Service) Delete(id string) error {
	return s.users.DeleteUser(id)
}

func (s *Service) List() ([]finance.User, error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}
