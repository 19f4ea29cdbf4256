package roomService

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/rohan/courtside/internal/database"
	"github.com/rohan/courtside/internal/logger"
	"github.com/rohan/courtside/internal/middleware"
	"github.com/rohan/courtside/internal/models"
)

// RoomService handles room and roster operations
type RoomService struct {
	DB  *sql.DB
	Log *logger.Logger
	Hub *models.Hub
}

// CreateRoomRequest represents the request body for room creation
type CreateRoomRequest struct {
	Name string `json:"room_name"`
}

// AddPlayerRequest represents the request body for adding a roster player
type AddPlayerRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// NewRoomService initializes a new room service
func NewRoomService() *RoomService {
	return &RoomService{
		DB:  database.DB,
		Log: logger.NewLogger("room-service"),
		Hub: models.GetHub(),
	}
}

// CreateRoom handles the creation of a new room
func (rs *RoomService) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := rs.Log.WithContext(ctx)

	userID, mobile, ok := currentUser(ctx)
	if !ok {
		log.Error("Failed to extract user details from context")
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("Failed to decode request body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Room name is required")
		return
	}

	tx, err := rs.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	currentTime := time.Now().UTC().Unix()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (room_name, created_by, created_at) VALUES (?, ?, ?)`,
		req.Name, userID, currentTime)
	if err != nil {
		log.Error("Failed to create room", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create room")
		return
	}

	roomID, err := result.LastInsertId()
	if err != nil {
		log.Error("Failed to get room ID", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get room ID")
		return
	}

	// The creator joins their own roster as admin.
	var creatorName string
	if err := tx.QueryRowContext(ctx, `SELECT name FROM users WHERE user_id = ?`, userID).Scan(&creatorName); err != nil {
		log.Error("Failed to load creator profile", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, name, mobile, role, is_active, added_by, joined_at)
		 VALUES (?, ?, ?, ?, 'admin', 1, ?, ?)`,
		roomID, userID, creatorName, mobile, userID, currentTime)
	if err != nil {
		log.Error("Failed to add creator to room", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to add creator to room")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	log.WithUser(userID).Info("Room created", "room_id", roomID)
	respondWithJSON(w, http.StatusCreated, models.Room{
		RoomID:    roomID,
		Name:      req.Name,
		CreatedBy: userID,
		CreatedAt: currentTime,
	})
}

// GetUserRooms lists the rooms the caller belongs to
func (rs *RoomService) GetUserRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := rs.Log.WithContext(ctx)

	userID, _, ok := currentUser(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	rows, err := rs.DB.QueryContext(ctx,
		`SELECT r.room_id, r.room_name, r.created_by, r.created_at
		 FROM rooms r
		 INNER JOIN room_members rm ON rm.room_id = r.room_id
		 WHERE rm.user_id = ? AND rm.is_active = 1
		 ORDER BY r.created_at DESC`, userID)
	if err != nil {
		log.Error("Failed to get rooms", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get rooms")
		return
	}
	defer rows.Close()

	rooms := make([]models.Room, 0)
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.RoomID, &room.Name, &room.CreatedBy, &room.CreatedAt); err != nil {
			log.Error("Failed to scan room row", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to get rooms")
			return
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		log.Error("Failed reading room rows", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get rooms")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

// GetRoom returns a room's details with its active roster
func (rs *RoomService) GetRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := rs.Log.WithContext(ctx)

	userID, _, ok := currentUser(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	if ok, err := rs.isMember(ctx, roomID, userID); err != nil {
		log.Error("Failed to verify room access", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this room")
		return
	}

	var room models.Room
	err = rs.DB.QueryRowContext(ctx,
		`SELECT room_id, room_name, created_by, created_at FROM rooms WHERE room_id = ?`, roomID).
		Scan(&room.RoomID, &room.Name, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Error("Failed to get room details", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get room details")
		return
	}

	roster, err := rs.Roster(ctx, roomID)
	if err != nil {
		log.Error("Failed to get roster", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get roster")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"room": room, "players": roster})
}

// AddPlayer adds an informal player to a room's roster by name and mobile
func (rs *RoomService) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := rs.Log.WithContext(ctx)

	userID, _, ok := currentUser(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	roomID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}

	var req AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Mobile == "" {
		respondWithError(w, http.StatusBadRequest, "Name and mobile are required")
		return
	}

	if ok, err := rs.isMember(ctx, roomID, userID); err != nil {
		log.Error("Failed to verify room access", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this room")
		return
	}

	// The active roster is unique by mobile.
	var existingID int64
	err = rs.DB.QueryRowContext(ctx,
		`SELECT id FROM room_members WHERE room_id = ? AND mobile = ? AND is_active = 1`,
		roomID, req.Mobile).Scan(&existingID)
	if err == nil {
		respondWithError(w, http.StatusConflict, "A player with this mobile is already in the room")
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("Failed to check roster", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Adopt the registered account if the mobile belongs to one.
	var memberUserID sql.NullInt64
	if err := rs.DB.QueryRowContext(ctx, `SELECT user_id FROM users WHERE mobile = ?`, req.Mobile).Scan(&memberUserID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("Failed to match player to account", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	currentTime := time.Now().UTC().Unix()
	result, err := rs.DB.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id, name, mobile, role, is_active, added_by, joined_at)
		 VALUES (?, ?, ?, ?, 'member', 1, ?, ?)`,
		roomID, memberUserID, req.Name, req.Mobile, userID, currentTime)
	if err != nil {
		log.Error("Failed to add player", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to add player")
		return
	}
	memberID, _ := result.LastInsertId()

	rs.Hub.BroadcastToRoom(strconv.FormatInt(roomID, 10), models.Event{
		Type:   models.EventRosterUpdated,
		RoomID: strconv.FormatInt(roomID, 10),
		UserID: strconv.FormatInt(userID, 10),
	})

	member := models.RoomMember{
		ID:       memberID,
		RoomID:   roomID,
		UserID:   memberUserID.Int64,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Role:     "member",
		IsActive: true,
		AddedBy:  userID,
		JoinedAt: currentTime,
	}
	respondWithJSON(w, http.StatusCreated, member)
}

// RemovePlayer deactivates a roster entry
func (rs *RoomService) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := rs.Log.WithContext(ctx)

	userID, _, ok := currentUser(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	vars := mux.Vars(r)
	roomID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid room ID")
		return
	}
	playerID, err := strconv.ParseInt(vars["playerId"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid player ID")
		return
	}

	if ok, err := rs.isMember(ctx, roomID, userID); err != nil {
		log.Error("Failed to verify room access", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this room")
		return
	}

	result, err := rs.DB.ExecContext(ctx,
		`UPDATE room_members SET is_active = 0 WHERE id = ? AND room_id = ?`, playerID, roomID)
	if err != nil {
		log.Error("Failed to remove player", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to remove player")
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		respondWithError(w, http.StatusNotFound, "Player not found in this room")
		return
	}

	rs.Hub.BroadcastToRoom(strconv.FormatInt(roomID, 10), models.Event{
		Type:   models.EventRosterUpdated,
		RoomID: strconv.FormatInt(roomID, 10),
		UserID: strconv.FormatInt(userID, 10),
	})

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Player removed from room"})
}

// Roster loads the active roster for a room, enriched with avatar and
// accumulated points from the matching account where one exists.
func (rs *RoomService) Roster(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	rows, err := rs.DB.QueryContext(ctx,
		`SELECT rm.id, rm.room_id, COALESCE(rm.user_id, 0), rm.name, rm.mobile, rm.role,
		        rm.individual_points, COALESCE(u.avatar_url, ''), rm.added_by, rm.joined_at
		 FROM room_members rm
		 LEFT JOIN users u ON u.user_id = rm.user_id
		 WHERE rm.room_id = ? AND rm.is_active = 1
		 ORDER BY rm.joined_at`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []models.RoomMember
	for rows.Next() {
		member := models.RoomMember{IsActive: true}
		if err := rows.Scan(&member.ID, &member.RoomID, &member.UserID, &member.Name, &member.Mobile,
			&member.Role, &member.IndividualPoints, &member.AvatarURL, &member.AddedBy, &member.JoinedAt); err != nil {
			return nil, err
		}
		roster = append(roster, member)
	}
	return roster, rows.Err()
}

func (rs *RoomService) isMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var id int64
	err := rs.DB.QueryRowContext(ctx,
		`SELECT id FROM room_members WHERE room_id = ? AND user_id = ? AND is_active = 1`,
		roomID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// currentUser pulls the acting user's id and mobile from the JWT claims set
// by the auth middleware.
func currentUser(ctx context.Context) (int64, string, bool) {
	claims, ok := ctx.Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}
	userID, err := strconv.ParseInt(fmt.Sprintf("%v", claims["user_id"]), 10, 64)
	if err != nil {
		return 0, "", false
	}
	mobile, _ := claims["mobile"].(string)
	return userID, mobile, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
