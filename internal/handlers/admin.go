package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/easyghar/easyghar-backend/internal/models"
)

type AdminHandler struct {
	DB  *gorm.DB
	Log *zap.Logger

	// Strict refuses approve/reject on workers that are no longer pending.
	Strict bool
}

func NewAdminHandler(db *gorm.DB, log *zap.Logger, strict bool) *AdminHandler {
	return &AdminHandler{DB: db, Log: log, Strict: strict}
}

type adminWorkerRow struct {
	ID                 uint
	UserID             uint
	CityID             uint
	DefaultAddress     string
	ExperienceYears    int
	Bio                string
	ProfilePhotoURL    string
	CNICNumber         string `gorm:"column:cnic_number"`
	VerificationStatus string
	VerificationNotes  string
	VerifiedAt         *time.Time
	CreatedAt          time.Time
	FullName           string
	Phone              string
	Email              *string
	CityName           string
}

type adminServiceRow struct {
	WorkerID       uint
	EnglishName    string
	ServiceKey     string
	MinimumCharges float64
	HourlyRate     float64
}

// GET /api/admin/workers?status=pending|approved|rejected|all
func (h *AdminHandler) ListWorkers(c *fiber.Ctx) error {
	status := c.Query("status", "all")

	q := h.DB.Table("workers").
		Select(`workers.id, workers.user_id, workers.city_id, workers.default_address,
			workers.experience_years, workers.bio, workers.profile_photo_url,
			workers.cnic_number, workers.verification_status, workers.verification_notes,
			workers.verified_at, workers.created_at,
			users.full_name, users.phone, users.email, cities.city_name`).
		Joins("LEFT JOIN users ON users.id = workers.user_id").
		Joins("LEFT JOIN cities ON cities.id = workers.city_id")
	if status != "all" {
		q = q.Where("workers.verification_status = ?", status)
	}

	var workers []adminWorkerRow
	if err := q.Order("workers.created_at DESC").Scan(&workers).Error; err != nil {
		h.Log.Error("admin list workers", zap.Error(err))
		return fail500(c, "Failed to fetch workers.")
	}
	if len(workers) == 0 {
		return c.JSON(fiber.Map{"success": true, "workers": []fiber.Map{}})
	}

	ids := make([]uint, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID)
	}

	var docs []models.WorkerDocument
	if err := h.DB.Where("worker_id IN ?", ids).Find(&docs).Error; err != nil {
		h.Log.Error("admin list documents", zap.Error(err))
		return fail500(c, "Failed to fetch workers.")
	}
	docsByWorker := map[uint]fiber.Map{}
	for _, d := range docs {
		docsByWorker[d.WorkerID] = fiber.Map{
			"cnic_front_url": d.CNICFrontURL,
			"cnic_back_url":  d.CNICBackURL,
		}
	}

	var serviceRows []adminServiceRow
	if err := h.DB.Table("worker_services").
		Select(`worker_services.worker_id, services.english_name, services.service_key,
			worker_services.minimum_charges, worker_services.hourly_rate`).
		Joins("JOIN services ON services.id = worker_services.service_id").
		Where("worker_services.worker_id IN ?", ids).
		Scan(&serviceRows).Error; err != nil {
		h.Log.Error("admin list services", zap.Error(err))
		return fail500(c, "Failed to fetch workers.")
	}
	servicesByWorker := map[uint][]fiber.Map{}
	for _, s := range serviceRows {
		servicesByWorker[s.WorkerID] = append(servicesByWorker[s.WorkerID], fiber.Map{
			"name":            s.EnglishName,
			"key":             s.ServiceKey,
			"minimum_charges": s.MinimumCharges,
			"hourly_rate":     s.HourlyRate,
		})
	}

	out := make([]fiber.Map, 0, len(workers))
	for _, w := range workers {
		documents := docsByWorker[w.ID]
		if documents == nil {
			documents = fiber.Map{}
		}
		services := servicesByWorker[w.ID]
		if services == nil {
			services = []fiber.Map{}
		}
		out = append(out, fiber.Map{
			"id":                  w.ID,
			"user_id":             w.UserID,
			"full_name":           w.FullName,
			"email":               w.Email,
			"phone":               w.Phone,
			"city_name":           w.CityName,
			"default_address":     w.DefaultAddress,
			"experience_years":    w.ExperienceYears,
			"bio":                 w.Bio,
			"cnic_number":         w.CNICNumber,
			"profile_photo_url":   w.ProfilePhotoURL,
			"verification_status": w.VerificationStatus,
			"verification_notes":  w.VerificationNotes,
			"verified_at":         w.VerifiedAt,
			"created_at":          w.CreatedAt,
			"documents":           documents,
			"services":            services,
		})
	}

	return c.JSON(fiber.Map{"success": true, "workers": out})
}

// PATCH /api/admin/workers/:id/approve
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, models.VerificationApproved, "Worker approved.")
}

// PATCH /api/admin/workers/:id/reject
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, models.VerificationRejected, "Worker rejected.")
}

func (h *AdminHandler) decide(c *fiber.Ctx, status models.VerificationStatus, doneMsg string) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid worker id.")
	}

	var body struct {
		Notes string `json:"notes"`
	}
	_ = c.BodyParser(&body) // notes are optional, so is the body

	var worker models.Worker
	lookupErr := h.DB.Select("id", "verification_status").First(&worker, id).Error
	if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		h.Log.Error("admin decision lookup", zap.Error(lookupErr))
		return fail500(c, "Failed to update worker.")
	}

	if h.Strict {
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return fail(c, fiber.StatusNotFound, "Worker not found.")
		}
		if worker.VerificationStatus != models.VerificationPending {
			return fail(c, fiber.StatusBadRequest, "Worker application already reviewed.")
		}
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&models.Worker{}).Where("id = ?", id).Updates(map[string]interface{}{
		"verification_status": status,
		"verification_notes":  body.Notes,
		"verified_at":         time.Now(),
	})
	if result.Error != nil {
		tx.Rollback()
		h.Log.Error("admin decision update", zap.Error(result.Error))
		return fail500(c, "Failed to update worker.")
	}

	if result.RowsAffected > 0 {
		details, _ := json.Marshal(fiber.Map{
			"from": worker.VerificationStatus,
			"to":   status,
		})
		reviewLog := models.WorkerReviewLog{
			WorkerID: uint(id),
			Action:   string(status),
			Notes:    body.Notes,
			Details:  datatypes.JSON(details),
		}
		if err := tx.Create(&reviewLog).Error; err != nil {
			tx.Rollback()
			h.Log.Error("admin decision log", zap.Error(err))
			return fail500(c, "Failed to update worker.")
		}
	}

	if err := tx.Commit().Error; err != nil {
		h.Log.Error("admin decision commit", zap.Error(err))
		return fail500(c, "Failed to update worker.")
	}

	return c.JSON(fiber.Map{"success": true, "message": doneMsg})
}
