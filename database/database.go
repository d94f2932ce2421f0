package database

import (
	"tastytracker/logger"
	"tastytracker/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(dsn string, log *zap.Logger) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(log, gormlogger.Warn),
	})
	if err != nil {
		return err
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	return seedDefaultAdmin(log)
}

// Migrate creates or updates the schema for every entity. Also used by
// tests against in-memory databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Client{},
		&models.Project{},
		&models.ProjectTask{},
		&models.ProjectMember{},
		&models.ProjectUpdate{},
		&models.ProjectFile{},
		&models.TimeEntry{},
		&models.ActiveTimer{},
		&models.Invite{},
	)
}

func seedDefaultAdmin(log *zap.Logger) error {
	var count int64
	DB.Model(&models.Profile{}).Where("email = ?", "admin@tastytracker.local").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Profile{
		Email:              "admin@tastytracker.local",
		FullName:           "Administrator",
		PasswordHash:       string(hashedPassword),
		Role:               models.RoleAdmin,
		MustChangePassword: true,
	}

	if result := DB.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Info("default admin profile created",
		zap.String("email", admin.Email))
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
