// Package demo provides demo data seeding for demonstration deployments.
package demo

import (
	"log"

	"threadboard/internal/auth"
	"threadboard/internal/database"
	"threadboard/internal/models"
	"threadboard/internal/repository"
)

// DemoPassword is the password of the seeded demo account.
const DemoPassword = "demo1234"

// Seeder seeds the database with demo data.
type Seeder struct {
	db         *database.DB
	userRepo   *repository.UserRepository
	threadRepo *repository.ThreadRepository
}

// NewSeeder creates a new demo data seeder.
func NewSeeder(db *database.DB) *Seeder {
	return &Seeder{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		threadRepo: repository.NewThreadRepository(db),
	}
}

// SeedIfEmpty seeds demo data if the database has no users yet.
func (s *Seeder) SeedIfEmpty() error {
	count, err := s.userRepo.CountAll()
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Database already has users, skipping demo seed")
		return nil
	}

	log.Println("Seeding demo data...")
	return s.Seed()
}

// Seed creates a demo user with a few sample threads.
func (s *Seeder) Seed() error {
	passwordHash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}

	userID, err := s.userRepo.Create(&models.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: passwordHash,
	})
	if err != nil {
		return err
	}
	log.Printf("Created demo user (ID: %d)", userID)

	threads := []models.Thread{
		{
			UserID: userID,
			Title:  "Welcome to the board",
			Body:   "<p>This is a demo deployment. Log in as <strong>demo</strong> to try it out.</p>",
		},
		{
			UserID: userID,
			Title:  "Formatting guide",
			Body:   "<p>Posts support a small set of safe HTML tags: <strong>bold</strong>, <em>italic</em>, lists and links.</p>",
		},
		{
			UserID: userID,
			Title:  "House rules",
			Body:   "<p>Be kind. Stay on topic. Search before posting.</p>",
		},
	}

	for _, thread := range threads {
		if _, err := s.threadRepo.Create(&thread); err != nil {
			return err
		}
	}
	log.Printf("Created %d demo threads", len(threads))

	return nil
}
