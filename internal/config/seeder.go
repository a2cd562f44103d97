package config

import (
	"log"

	"aphc-housingportal/internal/adapters/persistence/models"
	"aphc-housingportal/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedStaffUsers(); err != nil {
		log.Printf("⚠️ Staff seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedStaffUsers seeds default admin and worker accounts
// This is for development/testing only
// In production, create staff through secure process
func (s *Seeder) seedStaffUsers() error {
	// Check if any staff already exists
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	adminPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}
	workerPassword, err := password.Hash("worker123456")
	if err != nil {
		return err
	}

	staff := []*models.User{
		{
			Username: "admin",
			Email:    "admin@housing.ap.gov.in",
			Password: adminPassword,
			FullName: "Portal Administrator",
			Role:     models.RoleAdmin,
			IsActive: true,
		},
		{
			Username: "worker1",
			Email:    "worker1@housing.ap.gov.in",
			Password: workerPassword,
			FullName: "Field Worker",
			Role:     models.RoleWorker,
			IsActive: true,
		},
	}

	for _, user := range staff {
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Staff user created: %s (%s)", user.Username, user.Role)
	}

	return nil
}
