package gameroutes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohan/courtside/internal/middleware"
	gameService "github.com/rohan/courtside/internal/service/game"
)

func GameRoutes(router *mux.Router) {
	gameService := gameService.NewGameService()

	gameRouter := router.PathPrefix("/game").Subrouter()
	gameRouter.Use(middleware.RequestIDMiddleware, middleware.AuthMiddleware, middleware.ResponseWrapperMiddleware)
	gameRouter.HandleFunc("/shuffle", gameService.ShuffleTeams).Methods(http.MethodPost)
	gameRouter.HandleFunc("/create", gameService.CreateGame).Methods(http.MethodPost)
	gameRouter.HandleFunc("/get/{id}", gameService.GetGame).Methods(http.MethodGet)
	gameRouter.HandleFunc("/{id}/score", gameService.RecordScore).Methods(http.MethodPost)
	gameRouter.HandleFunc("/{id}/standings", gameService.GetStandings).Methods(http.MethodGet)
}
