package services

import (
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rohan/courtside/internal/database"
	"github.com/rohan/courtside/internal/models"
	"github.com/rohan/courtside/pkg/utils"
)

type AuthService struct {
	DB *sql.DB
}

// NewAuthService creates a new instance of AuthService
func NewAuthService() *AuthService {
	return &AuthService{
		DB: database.DB,
	}
}

// Signup registers a new account. Mobile numbers are the identity key, so a
// number can only be registered once.
func (s *AuthService) Signup(user models.User) (int64, error) {
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		return 0, err
	}

	var existingUserID int64
	userQuery := "SELECT user_id FROM users WHERE mobile = ?"
	err = s.DB.QueryRow(userQuery, user.Mobile).Scan(&existingUserID)
	if err == nil {
		return 0, errors.New("mobile number already registered")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	query := "INSERT INTO users (name, mobile, password, avatar_url, created_at) VALUES (?, ?, ?, ?, ?)"
	value, err := s.DB.Exec(query, user.Name, user.Mobile, hashedPassword, user.AvatarURL, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	return value.LastInsertId()
}

// Login authenticates a user by mobile number and password.
func (s *AuthService) Login(mobile, password string) (string, models.User, error) {
	var user models.User
	query := "SELECT user_id, name, mobile, password, avatar_url FROM users WHERE mobile = ?"
	err := s.DB.QueryRow(query, mobile).Scan(&user.UserID, &user.Name, &user.Mobile, &user.Password, &user.AvatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.User{}, errors.New("user not found")
		}
		return "", models.User{}, err
	}
	if err := utils.CheckPassword(user.Password, password); err != nil {
		return "", models.User{}, errors.New("incorrect password")
	}

	token, err := s.GenerateJWT(user.Mobile, user.UserID)
	if err != nil {
		return "", models.User{}, err
	}
	user.Password = ""

	return token, user, nil
}

// GenerateJWT creates a JWT token for authentication
func (s *AuthService) GenerateJWT(mobile string, userID int64) (string, error) {
	secretKey := os.Getenv("JWT_SECRET")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"mobile":  mobile,
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})

	return token.SignedString([]byte(secretKey))
}
