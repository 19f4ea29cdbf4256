package gameService

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
	"github.com/rohan/courtside/internal/schedule"
	"github.com/rohan/courtside/internal/teamgen"
)

// GameService handles team shuffling, game creation, scores and standings
type GameService struct {
	DB  *sql.DB
	Log *logger.Logger
	Hub *models.Hub
}

// ShuffleRequest represents the request body for a team shuffle
type ShuffleRequest struct {
	RoomID    int64   `json:"room_id"`
	GameType  string  `json:"game_type"`
	PlayerIDs []int64 `json:"player_ids,omitempty"`
}

// CreateGameRequest represents the request body for game creation. Teams are
// the client-accepted output of a previous shuffle.
type CreateGameRequest struct {
	RoomID   int64          `json:"room_id"`
	GameType string         `json:"game_type"`
	Teams    []teamgen.Team `json:"teams"`
}

// ScoreRequest represents the request body for recording a match result
type ScoreRequest struct {
	MatchNumber int `json:"match_number"`
	ScoreA      int `json:"score_a"`
	ScoreB      int `json:"score_b"`
}

// NewGameService initializes a new game service
func NewGameService() *GameService {
	return &GameService{
		DB:  database.DB,
		Log: logger.NewLogger("game-service"),
		Hub: models.GetHub(),
	}
}

// ShuffleTeams generates a fresh ephemeral team allocation from the room's
// roster. Nothing is persisted; calling again reshuffles.
func (gs *GameService) ShuffleTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := gs.Log.WithContext(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req ShuffleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	format := teamgen.Format(req.GameType)
	if !format.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Unknown game type")
		return
	}

	if ok, err := gs.isMember(ctx, req.RoomID, userID); err != nil {
		log.Error("Failed to verify room access", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this room")
		return
	}

	players, err := gs.rosterPlayers(ctx, req.RoomID, req.PlayerIDs)
	if err != nil {
		log.Error("Failed to load roster", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load roster")
		return
	}

	teams, err := teamgen.Shuffle(players, format)
	if err != nil {
		switch {
		case errors.Is(err, teamgen.ErrInsufficientPlayers):
			respondWithError(w, http.StatusBadRequest, "Not enough players to form teams")
		case errors.Is(err, teamgen.ErrInvalidPlayerCount):
			respondWithError(w, http.StatusBadRequest, "Invalid player count for the selected format")
		default:
			log.Error("Failed to generate teams", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to generate teams")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// CreateGame persists an accepted team allocation and its match schedule
func (gs *GameService) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := gs.Log.WithContext(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	format := teamgen.Format(req.GameType)
	if !format.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Unknown game type")
		return
	}
	if len(req.Teams) < 2 {
		respondWithError(w, http.StatusBadRequest, "At least two teams are required")
		return
	}

	if ok, err := gs.isMember(ctx, req.RoomID, userID); err != nil {
		log.Error("Failed to verify room access", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this room")
		return
	}

	matches, err := schedule.Build(req.Teams, format)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := gs.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	currentTime := time.Now().UTC().Unix()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO games (room_id, game_type, status, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		req.RoomID, req.GameType, models.GameStatusActive, userID, currentTime)
	if err != nil {
		log.Error("Failed to create game", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}
	gameID, err := result.LastInsertId()
	if err != nil {
		log.Error("Failed to get game ID", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game ID")
		return
	}

	for _, team := range req.Teams {
		teamResult, err := tx.ExecContext(ctx,
			`INSERT INTO game_teams (game_id, letter, color, total_points, wins) VALUES (?, ?, ?, ?, 0)`,
			gameID, team.Letter, team.Color, team.TotalPoints)
		if err != nil {
			log.Error("Failed to save team", "error", err, "letter", team.Letter)
			respondWithError(w, http.StatusInternalServerError, "Failed to save teams")
			return
		}
		teamID, err := teamResult.LastInsertId()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to save teams")
			return
		}
		for _, slot := range team.Players {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO game_team_players (team_id, user_id, name, mobile, points, plays_twice)
				 VALUES (?, NULLIF(?, ''), ?, ?, ?, ?)`,
				teamID, slot.PlayerID, slot.Name, slot.Mobile, slot.Points, slot.PlaysTwice)
			if err != nil {
				log.Error("Failed to save team player", "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to save teams")
				return
			}
		}
	}

	saved := make([]models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		matchResult, err := tx.ExecContext(ctx,
			`INSERT INTO matches (game_id, round_number, match_number, team_a, team_b, is_bye)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			gameID, m.RoundNumber, m.MatchNumber, m.TeamA, m.TeamB, m.Bye)
		if err != nil {
			log.Error("Failed to save match", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to save schedule")
			return
		}
		matchID, _ := matchResult.LastInsertId()
		saved = append(saved, models.MatchRecord{
			ID:          matchID,
			GameID:      gameID,
			RoundNumber: m.RoundNumber,
			MatchNumber: m.MatchNumber,
			TeamA:       m.TeamA,
			TeamB:       m.TeamB,
			Bye:         m.Bye,
		})
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	game := models.Game{
		GameID:    gameID,
		RoomID:    req.RoomID,
		GameType:  req.GameType,
		Status:    models.GameStatusActive,
		CreatedBy: userID,
		CreatedAt: currentTime,
	}

	gs.Hub.BroadcastToRoom(strconv.FormatInt(req.RoomID, 10), models.Event{
		Type:   models.EventGameCreated,
		RoomID: strconv.FormatInt(req.RoomID, 10),
		UserID: strconv.FormatInt(userID, 10),
	})

	log.WithUser(userID).Info("Game created", "game_id", gameID, "room_id", req.RoomID, "game_type", req.GameType)
	respondWithJSON(w, http.StatusCreated, models.GameDetail{Game: game, Teams: req.Teams, Matches: saved})
}

// GetGame returns a game with its teams and playable (non-bye) matches
func (gs *GameService) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := gs.Log.WithContext(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	gameID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	game, err := gs.loadGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Game not found")
			return
		}
		log.Error("Failed to get game", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	if ok, err := gs.isMember(ctx, game.RoomID, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this game")
		return
	}

	teams, err := gs.loadTeams(ctx, gameID)
	if err != nil {
		log.Error("Failed to load teams", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	// Bye matches are scheduling artifacts, not something to display.
	matches, err := gs.loadMatches(ctx, gameID, false)
	if err != nil {
		log.Error("Failed to load matches", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	respondWithJSON(w, http.StatusOK, models.GameDetail{Game: game, Teams: teams, Matches: matches})
}

// RecordScore stores a completed match result and pushes a live update
func (gs *GameService) RecordScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := gs.Log.WithContext(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	gameID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ScoreA < 0 || req.ScoreB < 0 {
		respondWithError(w, http.StatusBadRequest, "Scores cannot be negative")
		return
	}
	if req.ScoreA == req.ScoreB {
		respondWithError(w, http.StatusBadRequest, "A match cannot end in a draw")
		return
	}

	game, err := gs.loadGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Game not found")
			return
		}
		log.Error("Failed to get game", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	if ok, err := gs.isMember(ctx, game.RoomID, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this game")
		return
	}

	tx, err := gs.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var match models.MatchRecord
	var isBye bool
	err = tx.QueryRowContext(ctx,
		`SELECT id, round_number, match_number, team_a, team_b, is_bye, COALESCE(winner, '')
		 FROM matches WHERE game_id = ? AND match_number = ?`,
		gameID, req.MatchNumber).
		Scan(&match.ID, &match.RoundNumber, &match.MatchNumber, &match.TeamA, &match.TeamB, &isBye, &match.Winner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Match not found")
			return
		}
		log.Error("Failed to load match", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if isBye {
		respondWithError(w, http.StatusBadRequest, "Bye matches are not scored")
		return
	}
	if match.Winner != "" {
		respondWithError(w, http.StatusConflict, "Match already has a recorded score")
		return
	}

	winner := match.TeamA
	if req.ScoreB > req.ScoreA {
		winner = match.TeamB
	}
	currentTime := time.Now().UTC().Unix()

	_, err = tx.ExecContext(ctx,
		`UPDATE matches SET score_a = ?, score_b = ?, winner = ?, completed_at = ? WHERE id = ?`,
		req.ScoreA, req.ScoreB, winner, currentTime, match.ID)
	if err != nil {
		log.Error("Failed to record score", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record score")
		return
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE game_teams SET wins = wins + 1 WHERE game_id = ? AND letter = ?`, gameID, winner)
	if err != nil {
		log.Error("Failed to update team wins", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record score")
		return
	}

	// Fold each side's score into the roster's accumulated points; the
	// roster query serves these back as individual_points.
	for _, side := range []struct {
		letter string
		score  int
	}{{match.TeamA, req.ScoreA}, {match.TeamB, req.ScoreB}} {
		_, err = tx.ExecContext(ctx,
			`UPDATE room_members rm
			 INNER JOIN game_team_players gtp ON gtp.mobile = rm.mobile
			 INNER JOIN game_teams gt ON gt.team_id = gtp.team_id
			 SET rm.individual_points = rm.individual_points + ?
			 WHERE gt.game_id = ? AND gt.letter = ? AND rm.room_id = ? AND rm.is_active = 1`,
			side.score, gameID, side.letter, game.RoomID)
		if err != nil {
			log.Error("Failed to update player points", "error", err, "letter", side.letter)
			respondWithError(w, http.StatusInternalServerError, "Failed to record score")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	match.GameID = gameID
	match.ScoreA = req.ScoreA
	match.ScoreB = req.ScoreB
	match.Winner = winner
	match.CompletedAt = currentTime

	data, _ := json.Marshal(match)
	gs.Hub.BroadcastToRoom(strconv.FormatInt(game.RoomID, 10), models.Event{
		Type:   models.EventScoreRecorded,
		RoomID: strconv.FormatInt(game.RoomID, 10),
		UserID: strconv.FormatInt(userID, 10),
		Data:   data,
	})

	respondWithJSON(w, http.StatusOK, match)
}

// GetStandings aggregates recorded results into the standings table
func (gs *GameService) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := gs.Log.WithContext(ctx)

	userID, ok := currentUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	gameID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	game, err := gs.loadGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Game not found")
			return
		}
		log.Error("Failed to get game", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get game")
		return
	}

	if ok, err := gs.isMember(ctx, game.RoomID, userID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to verify room access")
		return
	} else if !ok {
		respondWithError(w, http.StatusForbidden, "You don't have access to this game")
		return
	}

	matches, err := gs.loadMatches(ctx, gameID, false)
	if err != nil {
		log.Error("Failed to load matches", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get standings")
		return
	}

	var results []schedule.Result
	for _, m := range matches {
		if m.Winner != "" {
			results = append(results, m.Result())
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"standings": schedule.Standings(results)})
}

// rosterPlayers loads the room's active roster as teamgen input. When
// playerIDs is non-empty only those roster entries participate.
func (gs *GameService) rosterPlayers(ctx context.Context, roomID int64, playerIDs []int64) ([]teamgen.Player, error) {
	rows, err := gs.DB.QueryContext(ctx,
		`SELECT rm.id, COALESCE(rm.user_id, 0), rm.name, rm.mobile, rm.individual_points, COALESCE(u.avatar_url, '')
		 FROM room_members rm
		 LEFT JOIN users u ON u.user_id = rm.user_id
		 WHERE rm.room_id = ? AND rm.is_active = 1
		 ORDER BY rm.joined_at`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	selected := make(map[int64]bool, len(playerIDs))
	for _, id := range playerIDs {
		selected[id] = true
	}

	var players []teamgen.Player
	for rows.Next() {
		var memberID, memberUserID int64
		var player teamgen.Player
		if err := rows.Scan(&memberID, &memberUserID, &player.Name, &player.Mobile, &player.IndividualPoints, &player.AvatarURL); err != nil {
			return nil, err
		}
		if len(selected) > 0 && !selected[memberID] {
			continue
		}
		if memberUserID != 0 {
			player.ID = strconv.FormatInt(memberUserID, 10)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (gs *GameService) loadGame(ctx context.Context, gameID int64) (models.Game, error) {
	var game models.Game
	err := gs.DB.QueryRowContext(ctx,
		`SELECT game_id, room_id, game_type, status, created_by, created_at FROM games WHERE game_id = ?`, gameID).
		Scan(&game.GameID, &game.RoomID, &game.GameType, &game.Status, &game.CreatedBy, &game.CreatedAt)
	return game, err
}

func (gs *GameService) loadTeams(ctx context.Context, gameID int64) ([]teamgen.Team, error) {
	rows, err := gs.DB.QueryContext(ctx,
		`SELECT gt.team_id, gt.letter, gt.color, gt.total_points
		 FROM game_teams gt WHERE gt.game_id = ? ORDER BY gt.team_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []teamgen.Team
	var teamIDs []int64
	for rows.Next() {
		var teamID int64
		var team teamgen.Team
		if err := rows.Scan(&teamID, &team.Letter, &team.Color, &team.TotalPoints); err != nil {
			return nil, err
		}
		teams = append(teams, team)
		teamIDs = append(teamIDs, teamID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, teamID := range teamIDs {
		slotRows, err := gs.DB.QueryContext(ctx,
			`SELECT COALESCE(user_id, 0), name, mobile, points, plays_twice
			 FROM game_team_players WHERE team_id = ? ORDER BY id`, teamID)
		if err != nil {
			return nil, err
		}
		for slotRows.Next() {
			var slotUserID int64
			var slot teamgen.Slot
			if err := slotRows.Scan(&slotUserID, &slot.Name, &slot.Mobile, &slot.Points, &slot.PlaysTwice); err != nil {
				slotRows.Close()
				return nil, err
			}
			if slotUserID != 0 {
				slot.PlayerID = strconv.FormatInt(slotUserID, 10)
			}
			teams[i].Players = append(teams[i].Players, slot)
		}
		if err := slotRows.Err(); err != nil {
			slotRows.Close()
			return nil, err
		}
		slotRows.Close()
	}

	return teams, nil
}

func (gs *GameService) loadMatches(ctx context.Context, gameID int64, includeByes bool) ([]models.MatchRecord, error) {
	query := `SELECT id, game_id, round_number, match_number, team_a, team_b, is_bye,
	                 score_a, score_b, COALESCE(winner, ''), COALESCE(completed_at, 0)
	          FROM matches WHERE game_id = ?`
	if !includeByes {
		query += ` AND is_bye = 0`
	}
	query += ` ORDER BY match_number`

	rows, err := gs.DB.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.ID, &m.GameID, &m.RoundNumber, &m.MatchNumber, &m.TeamA, &m.TeamB, &m.Bye,
			&m.ScoreA, &m.ScoreB, &m.Winner, &m.CompletedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (gs *GameService) isMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var id int64
	err := gs.DB.QueryRowContext(ctx,
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

func currentUserID(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseInt(fmt.Sprintf("%v", claims["user_id"]), 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
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
