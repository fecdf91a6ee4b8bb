package database

import (
	"fahran-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists")
// when the DSN points at a connection pooler (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all cooperative models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Member{},
		&domain.Share{},
		&domain.BusinessPlan{},
		&domain.Vote{},
		&domain.ShareAllocation{},
		&domain.ProfitRecord{},
		&domain.Transaction{},
		&domain.MonthlyPayment{},
		&domain.PlanEvent{},
	)
}
