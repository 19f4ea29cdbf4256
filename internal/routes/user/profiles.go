package userRoutes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rohan/courtside/internal/middleware"
	profileService "github.com/rohan/courtside/internal/service/users"
)

func UserProfileRoutes(router *mux.Router) {
	profileService := profileService.NewProfileService()

	userRouter := router.PathPrefix("/user").Subrouter()
	userRouter.Use(middleware.RequestIDMiddleware, middleware.AuthMiddleware, middleware.ResponseWrapperMiddleware)
	userRouter.HandleFunc("/profile", profileService.GetUserProfile).Methods(http.MethodGet)
	userRouter.HandleFunc("/profile", profileService.UpdateUserProfile).Methods(http.MethodPut)
}
