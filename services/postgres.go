package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	appcontext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

type PostgresService struct {
	appcontext.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *appcontext.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		user := envOr("DB_USER", "postgres")
		password := envOr("DB_PASSWORD", "postgres")
		dbname := envOr("DB_NAME", "coursegen")
		sslmode := envOr("DB_SSLMODE", "disable")
		timezone := envOr("DB_TIMEZONE", "UTC")

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(
		&model.Course{},
		&model.Module{},
		&model.Lesson{},
		&model.PhaseDataRecord{},
		&model.AISettings{},
		&model.RateLimit{},
		&model.DriveCredential{},
	)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, errorType, err)
}

// ==================== COURSE METHODS ====================

func (ds *PostgresService) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.ID == "" {
		course.ID = shared.NewCourseID().String()
	}
	now := time.Now()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}
		return ds.saveSettingsTx(tx, course.ID, course.AIConfig)
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) SaveCourse(ctx context.Context, course *model.Course) error {
	course.UpdatedAt = time.Now()
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Modules").Save(course).Error; err != nil {
			return err
		}
		for i := range course.Modules {
			course.Modules[i].CourseID = course.ID
			if err := ds.saveModuleTx(tx, &course.Modules[i]); err != nil {
				return err
			}
		}
		return ds.saveSettingsTx(tx, course.ID, course.AIConfig)
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetCourse(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	var course model.Course
	err := ds.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		Where("id = ?", id.String()).First(&course).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}

	if settings, err := ds.GetAISettings(ctx, id); err == nil && settings != nil {
		course.AIConfig = settings.ToConfig()
	}

	records, err := ds.GetPhaseData(ctx, id)
	if err == nil && len(records) > 0 {
		course.Phases = make(map[int]model.PhaseData, len(records))
		for _, rec := range records {
			course.Phases[rec.Phase] = model.PhaseData{Data: rec.Data, LastUpdated: rec.LastUpdated}
		}
	}
	return &course, nil
}

func (ds *PostgresService) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := ds.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		Order("updated_at DESC").Find(&courses).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return courses, nil
}

func (ds *PostgresService) DeleteCourse(ctx context.Context, id shared.CourseID) error {
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []string
		if err := tx.Model(&model.Module{}).Where("course_id = ?", id.String()).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id.String()).Delete(&model.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id.String()).Delete(&model.PhaseDataRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id.String()).Delete(&model.AISettings{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id.String()).Delete(&model.Course{}).Error
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== MODULE METHODS ====================

func (ds *PostgresService) saveModuleTx(tx *gorm.DB, mod *model.Module) error {
	if mod.ID == "" {
		id, _ := uuid.NewV7()
		mod.ID = id.String()
	}
	now := time.Now()
	if mod.CreatedAt.IsZero() {
		mod.CreatedAt = now
	}
	mod.UpdatedAt = now

	if err := tx.Omit("Lessons").Save(mod).Error; err != nil {
		return err
	}
	for i := range mod.Lessons {
		lesson := &mod.Lessons[i]
		lesson.ModuleID = mod.ID
		if lesson.ID == "" {
			id, _ := uuid.NewV7()
			lesson.ID = id.String()
		}
		if lesson.CreatedAt.IsZero() {
			lesson.CreatedAt = now
		}
		lesson.UpdatedAt = now
		if err := tx.Save(lesson).Error; err != nil {
			return err
		}
	}
	return nil
}

func (ds *PostgresService) SaveModule(ctx context.Context, mod *model.Module) error {
	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ds.saveModuleTx(tx, mod)
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetModule(ctx context.Context, id string) (*model.Module, error) {
	var mod model.Module
	err := ds.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\" ASC") }).
		Where("id = ?", id).First(&mod).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &mod, nil
}

// ==================== PHASE DATA METHODS ====================

// SavePhaseData resolves the target course strictly by id; the payload merges
// into any existing row for the same phase.
func (ds *PostgresService) SavePhaseData(ctx context.Context, courseID shared.CourseID, phase int, data map[string]interface{}) error {
	now := time.Now()

	var rec model.PhaseDataRecord
	err := ds.db.WithContext(ctx).
		Where("course_id = ? AND phase = ?", courseID.String(), phase).First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, _ := uuid.NewV7()
		rec = model.PhaseDataRecord{
			ID:          id.String(),
			CourseID:    courseID.String(),
			Phase:       phase,
			Data:        data,
			LastUpdated: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := ds.db.WithContext(ctx).Create(&rec).Error; err != nil {
			return ds.HandleError(err)
		}
		return nil
	}
	if err != nil {
		return ds.HandleError(err)
	}

	if rec.Data == nil {
		rec.Data = make(map[string]interface{})
	}
	for k, v := range data {
		rec.Data[k] = v
	}
	rec.LastUpdated = now
	rec.UpdatedAt = now
	if err := ds.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetPhaseData(ctx context.Context, courseID shared.CourseID) ([]model.PhaseDataRecord, error) {
	var records []model.PhaseDataRecord
	if err := ds.db.WithContext(ctx).
		Where("course_id = ?", courseID.String()).Order("phase ASC").Find(&records).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return records, nil
}

func (ds *PostgresService) GetPhase(ctx context.Context, courseID shared.CourseID, phase int) (*model.PhaseDataRecord, error) {
	var rec model.PhaseDataRecord
	err := ds.db.WithContext(ctx).
		Where("course_id = ? AND phase = ?", courseID.String(), phase).First(&rec).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &rec, nil
}

// ==================== AI SETTINGS METHODS ====================

func (ds *PostgresService) saveSettingsTx(tx *gorm.DB, courseID string, cfg model.AIConfig) error {
	var settings model.AISettings
	err := tx.Where("course_id = ?", courseID).First(&settings).Error
	now := time.Now()

	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, _ := uuid.NewV7()
		settings = model.AISettings{ID: id.String(), CourseID: courseID, CreatedAt: now}
	} else if err != nil {
		return err
	}

	settings.ApplyConfig(cfg)
	settings.UpdatedAt = now
	return tx.Save(&settings).Error
}

func (ds *PostgresService) GetAISettings(ctx context.Context, courseID shared.CourseID) (*model.AISettings, error) {
	var settings model.AISettings
	err := ds.db.WithContext(ctx).Where("course_id = ?", courseID.String()).First(&settings).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &settings, nil
}

// ==================== RATE LIMIT METHODS ====================

func (ds *PostgresService) GetRateLimit(identifier, endpointType string) (*model.RateLimit, error) {
	var rateLimit model.RateLimit
	err := ds.db.Where("identifier = ? AND endpoint_type = ?", identifier, endpointType).First(&rateLimit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rateLimit, nil
}

func (ds *PostgresService) SaveRateLimit(rateLimit *model.RateLimit) error {
	if rateLimit.ID == "" {
		id, _ := uuid.NewV7()
		rateLimit.ID = id.String()
	}
	now := time.Now()
	if rateLimit.CreatedAt.IsZero() {
		rateLimit.CreatedAt = now
	}
	rateLimit.UpdatedAt = now
	return ds.db.Save(rateLimit).Error
}

func (ds *PostgresService) CleanupOldRateLimits() error {
	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	now := time.Now()
	return ds.db.Where("created_at < ? AND (blocked_until IS NULL OR blocked_until < ?)", cutoff, now).
		Delete(&model.RateLimit{}).Error
}

// ==================== DRIVE CREDENTIAL METHODS ====================

func (ds *PostgresService) SaveDriveCredential(ctx context.Context, cred *model.DriveCredential) error {
	if cred.ID == "" {
		id, _ := uuid.NewV7()
		cred.ID = id.String()
	}
	now := time.Now()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	if err := ds.db.WithContext(ctx).Save(cred).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) LatestDriveCredential(ctx context.Context) (*model.DriveCredential, error) {
	var cred model.DriveCredential
	err := ds.db.WithContext(ctx).Order("updated_at DESC").First(&cred).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &cred, nil
}
