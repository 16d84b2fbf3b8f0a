package main

import (
	"context"
	"log"
	"os"
	"strings"

	"signwise/internal/config"
	apperr "signwise/internal/errors"
	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminName := config.GetEnv("ADMIN_NAME", "Administrator")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	v := validation.New()
	v.Email("ADMIN_EMAIL", adminEmail)
	v.Password("ADMIN_PASSWORD", adminPassword)
	if err := v.Err(); err != nil {
		log.Fatalf("Invalid admin credentials: %v", err)
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer repositories.Close()

	ctx := context.Background()
	operators := repositories.NewOperatorRepository(repositories.DB)

	if _, err := operators.GetByEmail(ctx, adminEmail); err == nil {
		log.Println("Admin operator already exists")
		return
	} else if !apperr.IsNotFound(err) {
		log.Fatalf("Failed to look up admin operator: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := &models.Operator{
		Email:        adminEmail,
		Password:     string(hashedPassword),
		Name:         adminName,
		Role:         models.RoleAdmin,
		Status:       "active",
		TokenVersion: 1,
	}
	if err := operators.Create(ctx, admin); err != nil {
		log.Fatal("Failed to create admin operator:", err)
	}

	log.Println("✅ Admin account created successfully!")
}
