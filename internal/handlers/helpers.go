package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/easyghar/easyghar-backend/internal/services/cloudinary"
)

// MediaUploader is the slice of the Cloudinary service the handlers need.
type MediaUploader interface {
	UploadImage(ctx context.Context, data []byte, filename string) (*cloudinary.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

const maxUploadSize = 5 * 1024 * 1024

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func fail500(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, message)
}

func getAuthUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok || userID == 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return userID, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint")
}

// postgres undefined_table (SQLSTATE 42P01)
func isUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "42p01") ||
		strings.Contains(msg, "does not exist")
}

// toFloat coerces the loosely-typed pricing values clients send (numbers,
// numeric strings, or garbage) to a float64, defaulting to 0.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// readImage validates and buffers an uploaded image (≤5MB, image extension).
func readImage(field string, file *multipart.FileHeader) ([]byte, *fiber.Error) {
	if file.Size > maxUploadSize {
		return nil, fiber.NewError(fiber.StatusBadRequest, field+" exceeds the 5MB limit.")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return nil, fiber.NewError(fiber.StatusBadRequest, field+" must be a jpg/jpeg/png/webp image.")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	return data, nil
}

type uploadRef struct {
	SecureURL string
	PublicID  string
}

// uploadFormImage pushes an optional multipart image to the media host.
// A missing field is not an error.
func uploadFormImage(c *fiber.Ctx, media MediaUploader, log *zap.Logger, field string) (*uploadRef, *fiber.Error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return nil, nil
	}
	data, ferr := readImage(field, file)
	if ferr != nil {
		return nil, ferr
	}
	result, err := media.UploadImage(c.Context(), data, file.Filename)
	if err != nil {
		log.Error("media upload", zap.String("field", field), zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to upload "+field+".")
	}
	return &uploadRef{SecureURL: result.SecureURL, PublicID: result.PublicID}, nil
}

// formHas reports whether the request body carried the given field at all,
// distinguishing "submitted empty" from "not submitted".
func formHas(c *fiber.Ctx, key string) bool {
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		_, ok := mf.Value[key]
		return ok
	}
	return c.Request().PostArgs().Has(key)
}
