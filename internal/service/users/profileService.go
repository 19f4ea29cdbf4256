package profileService

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rohan/courtside/internal/database"
	"github.com/rohan/courtside/internal/middleware"
	"github.com/rohan/courtside/internal/models"
)

type ProfileService struct {
	DB *sql.DB
}

func NewProfileService() *ProfileService {
	return &ProfileService{
		DB: database.DB,
	}
}

func (profile *ProfileService) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userDetails, ok := r.Context().Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	user, err := database.GetSqlQueryRow(
		"SELECT user_id, name, mobile, avatar_url, created_at FROM users WHERE user_id = ?",
		userDetails["user_id"])
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "User details", "user_details": user})
}

func (profile *ProfileService) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	userDetails, ok := r.Context().Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err := database.SendSqlStatement(
		"UPDATE users SET name = ?, avatar_url = ? WHERE user_id = ?",
		user.Name, user.AvatarURL, userDetails["user_id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "User details updated successfully"})
}
