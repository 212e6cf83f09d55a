package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sokoni/config"
	"sokoni/internal/auth"
	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrSuspended      = errors.New("account suspended")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

func (s *AuthService) Register(email, username, phone, password string) (*models.User, string, string, error) {
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	_, err = s.userRepo.GetByUsername(username)
	if err == nil {
		return nil, "", "", ErrUsernameExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		Email:        email,
		Username:     username,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if u.Suspended {
		return nil, "", "", ErrSuspended
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

// LoginWithGoogle creates or finds a user by Google ID and returns user +
// tokens + isNew flag. Existing email accounts get the Google ID linked.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL string) (*models.User, string, string, bool, error) {
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err == nil {
		if u.Suspended {
			return nil, "", "", false, ErrSuspended
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
		return u, access, refresh, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", false, err
	}
	existing, _ := s.userRepo.GetByEmail(email)
	if existing != nil {
		gid := googleID
		existing.GoogleID = &gid
		if avatarURL != "" && existing.AvatarURL == "" {
			existing.AvatarURL = avatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, "", "", false, err
		}
		access, _ := auth.GenerateAccessToken(&s.cfg.JWT, existing.ID, existing.Email, existing.Role)
		refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, existing.ID)
		return existing, access, refresh, false, nil
	}
	gid := googleID
	username := strings.Split(email, "@")[0]
	if name != "" {
		username = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	}
	if username == "" {
		username = "user" + fmt.Sprintf("%d", time.Now().UnixNano()%100000)
	}
	u = &models.User{
		Email:     email,
		Username:  username,
		GoogleID:  &gid,
		Role:      domain.RoleUser,
		AvatarURL: avatarURL,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", false, err
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, true, nil
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil {
		return ErrInvalidCreds
	}
	if u.PasswordHash == "" {
		return errors.New("account uses Google sign-in; set a password first")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

func (s *AuthService) RefreshToken(refreshToken string) (access, refresh string, err error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", "", err
	}
	if u.Suspended {
		return "", "", ErrSuspended
	}
	access, _ = auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	refresh, _ = auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return access, refresh, nil
}
