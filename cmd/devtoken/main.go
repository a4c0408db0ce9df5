package main

// Mint a local session token signed with JWT_SECRET:
//   go run ./cmd/devtoken -user user_123 -plan premium

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	userID := flag.String("user", "dev_user", "Subject (user id) for the token")
	plan := flag.String("plan", string(auth.PlanFree), "Plan claim: free or premium")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		exitErr("JWT_SECRET is required")
	}

	token, err := auth.SignHS256([]byte(cfg.JWTSecret), *userID, auth.ParsePlan(*plan), *ttl)
	if err != nil {
		exitErr(fmt.Sprintf("sign token: %v", err))
	}
	fmt.Println(token)
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
