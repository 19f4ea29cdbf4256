package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rohan/courtside/internal/database"
	"github.com/rohan/courtside/internal/routes"
)

func main() {
	database.InitDB()
	router := routes.RegisterAllRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server is running on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
