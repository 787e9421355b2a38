package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/easyghar/easyghar-backend/internal/models"
)

type WorkerHandler struct {
	DB    *gorm.DB
	Media MediaUploader
	Log   *zap.Logger
}

func NewWorkerHandler(db *gorm.DB, media MediaUploader, log *zap.Logger) *WorkerHandler {
	return &WorkerHandler{DB: db, Media: media, Log: log}
}

func (h *WorkerHandler) workerIDForUser(userID uint) (uint, error) {
	var worker models.Worker
	err := h.DB.Select("id").Where("user_id = ?", userID).First(&worker).Error
	if err != nil {
		return 0, err
	}
	return worker.ID, nil
}

type workerProfileRow struct {
	ID                 uint
	UserID             uint
	CityID             uint
	DefaultAddress     string
	ExperienceYears    int
	Bio                string
	ProfilePhotoURL    string
	VerificationStatus string
	FullName           string
	Phone              string
	Email              *string
	CityName           string
}

type pricedServiceRow struct {
	ID             uint
	ServiceID      uint
	MinimumCharges float64
	HourlyRate     float64
	ServiceKey     string
	EnglishName    string
}

func (h *WorkerHandler) pricedServices(workerID uint) ([]pricedServiceRow, error) {
	var rows []pricedServiceRow
	err := h.DB.Table("worker_services").
		Select(`worker_services.id, worker_services.service_id, worker_services.minimum_charges,
			worker_services.hourly_rate, services.service_key, services.english_name`).
		Joins("JOIN services ON services.id = worker_services.service_id").
		Where("worker_services.worker_id = ?", workerID).
		Scan(&rows).Error
	return rows, err
}

// GET /api/worker/profile
func (h *WorkerHandler) Profile(c *fiber.Ctx) error {
	userID, err := getAuthUserID(c)
	if err != nil {
		return err
	}

	workerID, err := h.workerIDForUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusNotFound, "Worker profile not found.")
	}
	if err != nil {
		h.Log.Error("worker profile lookup", zap.Error(err))
		return fail500(c, "Failed to load profile.")
	}

	var row workerProfileRow
	err = h.DB.Table("workers").
		Select(`workers.id, workers.user_id, workers.city_id, workers.default_address,
			workers.experience_years, workers.bio, workers.profile_photo_url,
			workers.verification_status,
			users.full_name, users.phone, users.email, cities.city_name`).
		Joins("JOIN users ON users.id = workers.user_id").
		Joins("LEFT JOIN cities ON cities.id = workers.city_id").
		Where("workers.id = ?", workerID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusNotFound, "Worker not found.")
	}
	if err != nil {
		h.Log.Error("worker profile query", zap.Error(err))
		return fail500(c, "Failed to load profile.")
	}

	services, err := h.pricedServices(workerID)
	if err != nil {
		h.Log.Error("worker profile services", zap.Error(err))
		return fail500(c, "Failed to load profile.")
	}

	outServices := make([]fiber.Map, 0, len(services))
	for _, s := range services {
		outServices = append(outServices, fiber.Map{
			"id":              s.ID,
			"service_id":      s.ServiceID,
			"service_key":     s.ServiceKey,
			"name":            s.EnglishName,
			"minimum_charges": s.MinimumCharges,
			"hourly_rate":     s.HourlyRate,
		})
	}

	email := ""
	if row.Email != nil {
		email = *row.Email
	}
	return c.JSON(fiber.Map{
		"success": true,
		"profile": fiber.Map{
			"worker_id":           row.ID,
			"full_name":           row.FullName,
			"email":               email,
			"phone":               row.Phone,
			"city_id":             row.CityID,
			"city_name":           row.CityName,
			"default_address":     row.DefaultAddress,
			"bio":                 row.Bio,
			"profile_photo_url":   row.ProfilePhotoURL,
			"experience_years":    row.ExperienceYears,
			"verification_status": row.VerificationStatus,
		},
		"services": outServices,
	})
}

// PATCH /api/worker/profile (multipart, everything optional)
func (h *WorkerHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := getAuthUserID(c)
	if err != nil {
		return err
	}

	var worker models.Worker
	err = h.DB.Where("user_id = ?", userID).First(&worker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusNotFound, "Worker profile not found.")
	}
	if err != nil {
		h.Log.Error("worker update lookup", zap.Error(err))
		return fail500(c, "Failed to update profile.")
	}

	fullName := strings.TrimSpace(c.FormValue("full_name"))
	if fullName == "" {
		fullName = strings.TrimSpace(c.FormValue("fullName"))
	}
	phone := strings.TrimSpace(c.FormValue("phone"))
	email := strings.TrimSpace(c.FormValue("email"))
	emailSubmitted := formHas(c, "email")
	defaultAddress := strings.TrimSpace(c.FormValue("default_address"))
	if defaultAddress == "" {
		defaultAddress = strings.TrimSpace(c.FormValue("defaultAddress"))
	}
	bio := strings.TrimSpace(c.FormValue("bio"))
	cityID := parsePositiveInt(c.FormValue("city_id"))

	if phone != "" {
		var other models.User
		err := h.DB.Where("phone = ? AND id <> ?", phone, worker.UserID).First(&other).Error
		if err == nil {
			return fail(c, fiber.StatusBadRequest, "Phone number already in use.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.Log.Error("worker update phone check", zap.Error(err))
			return fail500(c, "Failed to update profile.")
		}
	}

	newPhoto, ferr := uploadFormImage(c, h.Media, h.Log, "profilePicture")
	if ferr != nil {
		return fail(c, ferr.Code, ferr.Message)
	}

	userUpdates := map[string]interface{}{}
	if fullName != "" {
		userUpdates["full_name"] = fullName
	}
	if phone != "" {
		userUpdates["phone"] = phone
	}
	if emailSubmitted {
		userUpdates["email"] = strPtrOrNil(email)
	}

	workerUpdates := map[string]interface{}{}
	if formHas(c, "default_address") || formHas(c, "defaultAddress") {
		workerUpdates["default_address"] = defaultAddress
	}
	if formHas(c, "bio") {
		workerUpdates["bio"] = bio
	}
	if cityID > 0 {
		workerUpdates["city_id"] = cityID
	}
	if newPhoto != nil {
		workerUpdates["profile_photo_url"] = newPhoto.SecureURL
		workerUpdates["profile_photo_public_id"] = newPhoto.PublicID
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if len(userUpdates) > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", worker.UserID).Updates(userUpdates).Error; err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				return fail(c, fiber.StatusBadRequest, "Phone number already in use.")
			}
			h.Log.Error("worker update user", zap.Error(err))
			return fail500(c, "Failed to update profile.")
		}
	}
	if len(workerUpdates) > 0 {
		if err := tx.Model(&models.Worker{}).Where("id = ?", worker.ID).Updates(workerUpdates).Error; err != nil {
			tx.Rollback()
			h.Log.Error("worker update worker", zap.Error(err))
			return fail500(c, "Failed to update profile.")
		}
	}
	if err := tx.Commit().Error; err != nil {
		h.Log.Error("worker update commit", zap.Error(err))
		return fail500(c, "Failed to update profile.")
	}

	// The replaced asset is now orphaned on the media host; removal is
	// best-effort and never surfaces to the caller.
	if newPhoto != nil && worker.ProfilePhotoPublicID != "" {
		h.destroyAsset(worker.ProfilePhotoPublicID)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Profile updated."})
}

func (h *WorkerHandler) destroyAsset(publicID string) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = h.Media.Destroy(context.Background(), publicID); err == nil {
			return
		}
	}
	h.Log.Warn("orphaned media asset", zap.String("public_id", publicID), zap.Error(err))
}

// GET /api/worker/services-list
func (h *WorkerHandler) ServicesList(c *fiber.Ctx) error {
	var services []models.Service
	if err := h.DB.Where("is_active = ?", true).Order("english_name").Find(&services).Error; err != nil {
		h.Log.Error("worker services-list", zap.Error(err))
		return fail500(c, "Failed to load services.")
	}

	out := make([]fiber.Map, 0, len(services))
	for _, s := range services {
		out = append(out, fiber.Map{
			"id":           s.ID,
			"service_key":  s.ServiceKey,
			"english_name": s.EnglishName,
		})
	}
	return c.JSON(fiber.Map{"success": true, "services": out})
}

type serviceItemReq struct {
	ServiceID      interface{} `json:"service_id"`
	ServiceKey     string      `json:"service_key"`
	MinimumCharges interface{} `json:"minimum_charges"`
	HourlyRate     interface{} `json:"hourly_rate"`
}

type replaceServicesReq struct {
	Services []serviceItemReq `json:"services"`
}

// PUT /api/worker/services — full replacement of the worker's pricing set.
func (h *WorkerHandler) ReplaceServices(c *fiber.Ctx) error {
	userID, err := getAuthUserID(c)
	if err != nil {
		return err
	}

	workerID, err := h.workerIDForUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusNotFound, "Worker profile not found.")
	}
	if err != nil {
		h.Log.Error("worker services lookup", zap.Error(err))
		return fail500(c, "Failed to update services.")
	}

	var req replaceServicesReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("worker_id = ?", workerID).Delete(&models.WorkerService{}).Error; err != nil {
		tx.Rollback()
		h.Log.Error("worker services delete", zap.Error(err))
		return fail500(c, "Failed to update services.")
	}

	for _, item := range req.Services {
		serviceID := toServiceID(item.ServiceID)
		var svc models.Service
		var lookupErr error
		if serviceID != 0 {
			lookupErr = tx.Where("id = ? AND is_active = ?", serviceID, true).First(&svc).Error
		} else if item.ServiceKey != "" {
			lookupErr = tx.Where("service_key = ? AND is_active = ?", item.ServiceKey, true).First(&svc).Error
		} else {
			continue
		}
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			continue // unresolved items are skipped, not rejected
		}
		if lookupErr != nil {
			tx.Rollback()
			h.Log.Error("worker services resolve", zap.Error(lookupErr))
			return fail500(c, "Failed to update services.")
		}

		ws := models.WorkerService{
			WorkerID:       workerID,
			ServiceID:      svc.ID,
			MinimumCharges: toFloat(item.MinimumCharges),
			HourlyRate:     toFloat(item.HourlyRate),
		}
		if err := tx.Create(&ws).Error; err != nil {
			tx.Rollback()
			h.Log.Error("worker services insert", zap.Error(err))
			return fail500(c, "Failed to update services.")
		}
	}

	if err := tx.Commit().Error; err != nil {
		h.Log.Error("worker services commit", zap.Error(err))
		return fail500(c, "Failed to update services.")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Services updated."})
}

func toServiceID(v interface{}) uint {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return uint(n)
		}
	case string:
		if id, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && id > 0 {
			return uint(id)
		}
	}
	return 0
}
