package roomroutes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohan/courtside/internal/middleware"
	roomService "github.com/rohan/courtside/internal/service/room"
)

func RoomRoutes(router *mux.Router) {
	roomService := roomService.NewRoomService()

	roomRouter := router.PathPrefix("/room").Subrouter()
	roomRouter.Use(middleware.RequestIDMiddleware, middleware.AuthMiddleware, middleware.ResponseWrapperMiddleware)
	roomRouter.HandleFunc("/create", roomService.CreateRoom).Methods(http.MethodPost)
	roomRouter.HandleFunc("/all", roomService.GetUserRooms).Methods(http.MethodGet)
	roomRouter.HandleFunc("/get/{id}", roomService.GetRoom).Methods(http.MethodGet)
	roomRouter.HandleFunc("/{id}/players", roomService.AddPlayer).Methods(http.MethodPost)
	roomRouter.HandleFunc("/{id}/players/{playerId}", roomService.RemovePlayer).Methods(http.MethodDelete)
}
