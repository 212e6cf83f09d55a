package database

import (
	"log"
	"os"

	"sokoni/config"
	"sokoni/internal/domain"
	"sokoni/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Plan{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Transaction{},
		&models.DiscountCode{},
		&models.Favorite{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
		&models.Report{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the bootstrap admin account when ADMIN_EMAIL/ADMIN_PASSWORD
// are set and no admin exists yet.
func SeedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[SEED] admin password hash: %v", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[SEED] admin create: %v", err)
		return
	}
	log.Printf("[SEED] admin account created: %s", email)
}

// SeedPlans inserts the listing plans if the table is empty.
func SeedPlans(db *gorm.DB) {
	var count int64
	db.Model(&models.Plan{}).Count(&count)
	if count > 0 {
		return
	}
	plans := []models.Plan{
		{Code: domain.PlanFree, Name: "Free", PriceCents: 0, DurationDays: 30},
		{Code: domain.PlanFeatured, Name: "Featured", PriceCents: 15000, DurationDays: 30, Featured: true},
		{Code: domain.PlanPremium, Name: "Premium", PriceCents: 50000, DurationDays: 60, Featured: true},
	}
	if err := db.Create(&plans).Error; err != nil {
		log.Printf("[SEED] plans: %v", err)
	}
}

// SeedCategories inserts the base category tree if the table is empty.
func SeedCategories(db *gorm.DB) {
	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}
	roots := []struct {
		name, slug, icon string
		children         []string
	}{
		{"Electronics", "electronics", "cpu", []string{"Phones", "Laptops", "TVs", "Audio"}},
		{"Vehicles", "vehicles", "car", []string{"Cars", "Motorbikes", "Trucks", "Parts"}},
		{"Property", "property", "home", []string{"For Rent", "For Sale", "Land"}},
		{"Fashion", "fashion", "shirt", []string{"Clothing", "Shoes", "Bags", "Watches"}},
		{"Home & Garden", "home-garden", "sofa", []string{"Furniture", "Appliances", "Garden"}},
		{"Jobs", "jobs", "briefcase", nil},
		{"Services", "services", "wrench", nil},
	}
	for i, r := range roots {
		cat := models.Category{Name: r.name, Slug: r.slug, Icon: r.icon, SortOrder: i}
		if err := db.Create(&cat).Error; err != nil {
			log.Printf("[SEED] category %s: %v", r.slug, err)
			continue
		}
		for j, child := range r.children {
			sub := models.Category{
				Name:     child,
				Slug:     cat.Slug + "-" + slugify(child),
				ParentID:  &cat.ID,
				SortOrder: j,
			}
			if err := db.Create(&sub).Error; err != nil {
				log.Printf("[SEED] subcategory %s: %v", sub.Slug, err)
			}
		}
	}
	log.Printf("[SEED] category tree created")
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ', r == '&', r == '-':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
