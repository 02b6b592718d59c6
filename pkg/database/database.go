package database

import (
	"fmt"
	"log"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logMode := logger.Warn
	if mode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.CurriculumModule{},
		&model.Lesson{},
		&model.PracticeItem{},
		&model.Assessment{},
		&model.AssessmentSection{},
		&model.AssessmentItemLink{},
		&model.EnrichmentAsset{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Bootstrap admin so the mutation endpoints are reachable on a fresh
	// install. The password must be rotated on first login.
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		db.Create(&model.User{
			Name:     "Platform Admin",
			Email:    "admin@localhost",
			Password: string(hash),
			Role:     model.Admin,
		})
		log.Println("Seeded default admin account (admin@localhost)")
	}

	return db, nil
}
