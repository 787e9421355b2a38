package handlers

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/easyghar/easyghar-backend/internal/models"
	"github.com/easyghar/easyghar-backend/internal/utils"
)

type AuthHandler struct {
	DB         *gorm.DB
	Media      MediaUploader
	Log        *zap.Logger
	JWTSecret  string
	ExpiresMin int
}

func NewAuthHandler(db *gorm.DB, media MediaUploader, log *zap.Logger, jwtSecret string, expiresMin int) *AuthHandler {
	return &AuthHandler{
		DB:         db,
		Media:      media,
		Log:        log,
		JWTSecret:  jwtSecret,
		ExpiresMin: expiresMin,
	}
}

// GET /api/auth/cities
func (h *AuthHandler) Cities(c *fiber.Ctx) error {
	var cities []models.City
	if err := h.DB.Where("is_active = ?", true).Order("city_name").Find(&cities).Error; err != nil {
		h.Log.Error("cities list", zap.Error(err))
		return fail500(c, "Failed to load cities.")
	}

	out := make([]fiber.Map, 0, len(cities))
	for _, city := range cities {
		out = append(out, fiber.Map{
			"id":             city.ID,
			"city_name":      city.CityName,
			"city_name_urdu": city.CityNameUrdu,
		})
	}
	return c.JSON(fiber.Map{"success": true, "cities": out})
}

// GET /api/auth/services
func (h *AuthHandler) Services(c *fiber.Ctx) error {
	var services []models.Service
	if err := h.DB.Where("is_active = ?", true).
		Order("display_order ASC, english_name ASC").
		Find(&services).Error; err != nil {
		h.Log.Error("services list", zap.Error(err))
		return fail500(c, "Failed to load services.")
	}

	out := make([]fiber.Map, 0, len(services))
	for _, s := range services {
		// the signup UI keys selections by service_key, hence id == key here
		out = append(out, fiber.Map{
			"id":          s.ServiceKey,
			"service_key": s.ServiceKey,
			"name":        s.EnglishName,
			"nameUrdu":    s.UrduName,
			"icon":        s.Icon,
		})
	}
	return c.JSON(fiber.Map{"success": true, "services": out})
}

type registerCustomerReq struct {
	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	CityID         uint   `json:"cityId"`
	City           string `json:"city"`
	DefaultAddress string `json:"defaultAddress"`
}

// POST /api/auth/register/customer
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req registerCustomerReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)
	email := strings.TrimSpace(req.Email)
	if fullName == "" || phone == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Full name, phone and password are required.")
	}

	cityID := req.CityID
	if cityID == 0 && strings.TrimSpace(req.City) != "" {
		cityID = h.resolveActiveCity(req.City)
	}

	if taken, err := h.phoneTaken(phone, 0); err != nil {
		h.Log.Error("customer signup phone check", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	} else if taken {
		return fail(c, fiber.StatusBadRequest, "Phone number already registered.")
	}

	if email != "" {
		var existing models.User
		err := h.DB.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return fail(c, fiber.StatusBadRequest, "Email already registered.")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.Log.Error("customer signup email check", zap.Error(err))
			return fail500(c, "Registration failed. Please try again.")
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("customer signup hash", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	user := models.User{
		Phone:        phone,
		Email:        strPtrOrNil(email),
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return fail(c, fiber.StatusBadRequest, "Phone number already registered.")
		}
		h.Log.Error("customer signup user insert", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	// Best-effort customer row: some deployments run without the table, in
	// which case the user row alone stands. Deliberately not inside a
	// transaction with the user insert for that reason.
	customer := models.Customer{
		UserID:         user.ID,
		DefaultAddress: strings.TrimSpace(req.DefaultAddress),
	}
	if cityID != 0 {
		customer.CityID = &cityID
	}
	if err := h.DB.Create(&customer).Error; err != nil {
		if !isUndefinedTable(err) {
			h.Log.Error("customer signup customer insert", zap.Error(err))
			return fail500(c, "Registration failed. Please try again.")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Customer registered successfully.",
		"user": fiber.Map{
			"id":        user.ID,
			"phone":     user.Phone,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

type servicePricing struct {
	MinRate    interface{} `json:"minRate"`
	HourlyRate interface{} `json:"hourlyRate"`
}

// POST /api/auth/register/worker (multipart)
func (h *AuthHandler) RegisterWorker(c *fiber.Ctx) error {
	fullName := strings.TrimSpace(c.FormValue("fullname"))
	if fullName == "" {
		fullName = strings.TrimSpace(c.FormValue("fullName"))
	}
	phone := strings.TrimSpace(c.FormValue("phone"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	cnicNumber := strings.TrimSpace(c.FormValue("cnic"))
	cityName := strings.TrimSpace(c.FormValue("city"))
	defaultAddress := strings.TrimSpace(c.FormValue("defaultAddress"))
	experienceYears := parsePositiveInt(c.FormValue("experience"))
	bio := strings.TrimSpace(c.FormValue("bio"))

	if fullName == "" || phone == "" || password == "" || cnicNumber == "" || cityName == "" {
		return fail(c, fiber.StatusBadRequest, "Required fields: full name, phone, password, CNIC, city.")
	}

	if taken, err := h.phoneTaken(phone, 0); err != nil {
		h.Log.Error("worker signup phone check", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	} else if taken {
		return fail(c, fiber.StatusBadRequest, "Phone number already registered.")
	}

	cityID := h.resolveActiveCity(cityName)
	if cityID == 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid city selected.")
	}

	// Uploads happen before the database transaction opens, keeping the tx
	// to plain inserts.
	profile, ferr := uploadFormImage(c, h.Media, h.Log, "profilePicture")
	if ferr != nil {
		return fail(c, ferr.Code, ferr.Message)
	}
	cnicFront, ferr := uploadFormImage(c, h.Media, h.Log, "cnicFront")
	if ferr != nil {
		return fail(c, ferr.Code, ferr.Message)
	}
	cnicBack, ferr := uploadFormImage(c, h.Media, h.Log, "cnicBack")
	if ferr != nil {
		return fail(c, ferr.Code, ferr.Message)
	}

	pricing := parseServicesPayload(c.FormValue("servicesData"), c.FormValue("servicePricing"))

	hash, err := utils.HashPassword(password)
	if err != nil {
		h.Log.Error("worker signup hash", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	tx := h.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	user := models.User{
		Phone:        phone,
		Email:        strPtrOrNil(email),
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleWorker,
		IsActive:     true,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return fail(c, fiber.StatusBadRequest, "Phone number already registered.")
		}
		h.Log.Error("worker signup user insert", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	worker := models.Worker{
		UserID:          user.ID,
		CityID:          cityID,
		DefaultAddress:  defaultAddress,
		ExperienceYears: experienceYears,
		Bio:             bio,
		CNICNumber:      cnicNumber,
	}
	if profile != nil {
		worker.ProfilePhotoURL = profile.SecureURL
		worker.ProfilePhotoPublicID = profile.PublicID
	}
	if err := tx.Create(&worker).Error; err != nil {
		tx.Rollback()
		h.Log.Error("worker signup worker insert", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	doc := models.WorkerDocument{WorkerID: worker.ID}
	if cnicFront != nil {
		doc.CNICFrontURL = cnicFront.SecureURL
		doc.CNICFrontPublicID = cnicFront.PublicID
	}
	if cnicBack != nil {
		doc.CNICBackURL = cnicBack.SecureURL
		doc.CNICBackPublicID = cnicBack.PublicID
	}
	if err := tx.Create(&doc).Error; err != nil {
		tx.Rollback()
		h.Log.Error("worker signup document insert", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	// Unknown service keys are skipped, not rejected: the catalog can change
	// between the signup form loading and submitting.
	keys := make([]string, 0, len(pricing))
	for k := range pricing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var svc models.Service
		err := tx.Where("service_key = ? AND is_active = ?", key, true).First(&svc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			tx.Rollback()
			h.Log.Error("worker signup service lookup", zap.Error(err))
			return fail500(c, "Registration failed. Please try again.")
		}
		ws := models.WorkerService{
			WorkerID:       worker.ID,
			ServiceID:      svc.ID,
			MinimumCharges: toFloat(pricing[key].MinRate),
			HourlyRate:     toFloat(pricing[key].HourlyRate),
		}
		if err := tx.Create(&ws).Error; err != nil {
			tx.Rollback()
			h.Log.Error("worker signup service insert", zap.Error(err))
			return fail500(c, "Registration failed. Please try again.")
		}
	}

	if err := tx.Commit().Error; err != nil {
		h.Log.Error("worker signup commit", zap.Error(err))
		return fail500(c, "Registration failed. Please try again.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Application submitted successfully. We will verify and activate your account soon.",
		"user": fiber.Map{
			"id":        user.ID,
			"phone":     user.Phone,
			"full_name": user.FullName,
			"role":      user.Role,
		},
		"workerId": worker.ID,
	})
}

type loginReq struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body.")
	}

	phone := strings.TrimSpace(req.Phone)
	email := strings.TrimSpace(req.Email)
	if (phone == "" && email == "") || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Phone or email and password are required.")
	}

	var user models.User
	var err error
	if phone != "" {
		err = h.DB.Where("phone = ?", phone).First(&user).Error
	} else {
		err = h.DB.Where("email = ?", email).First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Invalid phone/email or password.")
	}
	if err != nil {
		h.Log.Error("login lookup", zap.Error(err))
		return fail500(c, "Sign in failed. Please try again.")
	}

	if !user.IsActive {
		return fail(c, fiber.StatusForbidden, "Account is deactivated. Contact support.")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid phone/email or password.")
	}

	now := time.Now()
	if err := h.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		h.Log.Error("login stamp", zap.Error(err))
		return fail500(c, "Sign in failed. Please try again.")
	}

	token, err := utils.SignJWT(h.JWTSecret, user.ID, string(user.Role), h.ExpiresMin)
	if err != nil {
		h.Log.Error("login sign token", zap.Error(err))
		return fail500(c, "Sign in failed. Please try again.")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Signed in successfully.",
		"user": fiber.Map{
			"id":        user.ID,
			"phone":     user.Phone,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
		"token": token,
	})
}

// ---- helpers ----

func (h *AuthHandler) resolveActiveCity(name string) uint {
	var city models.City
	err := h.DB.Where("LOWER(city_name) = ? AND is_active = ?",
		strings.ToLower(strings.TrimSpace(name)), true).First(&city).Error
	if err != nil {
		return 0
	}
	return city.ID
}

func (h *AuthHandler) phoneTaken(phone string, excludeUserID uint) (bool, error) {
	var existing models.User
	q := h.DB.Where("phone = ?", phone)
	if excludeUserID != 0 {
		q = q.Where("id <> ?", excludeUserID)
	}
	err := q.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func parseServicesPayload(raws ...string) map[string]servicePricing {
	out := map[string]servicePricing{}
	for _, raw := range raws {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		// malformed payloads yield an empty selection, not an error
		_ = json.Unmarshal([]byte(raw), &out)
		return out
	}
	return out
}

func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
