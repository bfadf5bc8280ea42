package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fleetbackend/clients/auth"
	"fleetbackend/config"
	"fleetbackend/db"
	"fleetbackend/services/users"
)

func main() {
	userID := flag.String("user", "", "ID of the user to mint a bearer token for")
	flag.Parse()

	if *userID == "" {
		log.Printf("❌ -user is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	usersService := users.NewUsersService(db.NewPostgresUsersRepository(dbConn, cfg.DatabaseSchema))
	maybeUser, err := usersService.GetUserByID(context.Background(), *userID)
	if err != nil {
		log.Fatalf("❌ Failed to look up user: %v", err)
	}
	user, ok := maybeUser.Get()
	if !ok {
		log.Fatalf("❌ User %s not found", *userID)
	}

	log.Printf("🔑 Generating %s token for %s (%s)...", cfg.AuthConfig.TokenTTL, user.ID, user.Role)
	token, err := auth.NewJWTVerifier([]byte(cfg.AuthConfig.JWTSecret)).Generate(user.ID, cfg.AuthConfig.TokenTTL)
	if err != nil {
		log.Fatalf("❌ Failed to generate token: %v", err)
	}

	fmt.Println(token)
	log.Printf("✅ Successfully generated token")
}
