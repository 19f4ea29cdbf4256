package routes

import (
	"github.com/gorilla/mux"

	authRoute "github.com/rohan/courtside/internal/routes/Auth"
	gameroutes "github.com/rohan/courtside/internal/routes/GameRoutes"
	roomroutes "github.com/rohan/courtside/internal/routes/RoomRoutes"
	userRoutes "github.com/rohan/courtside/internal/routes/user"
)

// List of all route registration functions
var routeModules = []func(*mux.Router){
	authRoute.RegisterAuthRoutes,
	userRoutes.UserProfileRoutes,
	roomroutes.RoomRoutes,
	gameroutes.GameRoutes,
	RegisterWebSocketRoutes,
}

// Register all routes dynamically
func RegisterAllRoutes() *mux.Router {
	router := mux.NewRouter()

	for _, register := range routeModules {
		register(router)
	}

	return router
}
