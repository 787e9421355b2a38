package cloudinary_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyghar/easyghar-backend/internal/config"
	"github.com/easyghar/easyghar-backend/internal/services/cloudinary"
)

func testService(baseURL string) *cloudinary.Service {
	svc := cloudinary.New(config.Cloudinary{
		CloudName: "demo",
		APIKey:    "key123",
		APISecret: "shhh",
	})
	if baseURL != "" {
		svc.BaseURL = baseURL
	}
	return svc
}

func TestSignParams_SortedJoin(t *testing.T) {
	params := map[string]string{
		"timestamp": "1700000000",
		"folder":    "easyghar",
		"public_id": "abc",
	}
	// keys sorted, joined with '&', secret appended, SHA-1 hex
	sum := sha1.Sum([]byte("folder=easyghar&public_id=abc&timestamp=1700000000shhh"))
	want := hex.EncodeToString(sum[:])

	assert.Equal(t, want, cloudinary.SignParams(params, "shhh"))
	assert.NotEqual(t, want, cloudinary.SignParams(params, "other"))
}

func TestUploadImage(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "key123", r.FormValue("api_key"))
		assert.Equal(t, "easyghar", r.FormValue("folder"))
		assert.NotEmpty(t, r.FormValue("public_id"))

		// the request must be signed over the signable params only
		want := cloudinary.SignParams(map[string]string{
			"folder":    r.FormValue("folder"),
			"public_id": r.FormValue("public_id"),
			"timestamp": r.FormValue("timestamp"),
		}, "shhh")
		assert.Equal(t, want, r.FormValue("signature"))

		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "selfie.jpg", hdr.Filename)

		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/easyghar/x.jpg",
			"public_id":  "easyghar/x",
		})
	}))
	defer ts.Close()

	svc := testService(ts.URL)
	result, err := svc.UploadImage(context.Background(), []byte("fake-image-bytes"), "selfie.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/demo/image/upload", gotPath)
	assert.Equal(t, "easyghar/x", result.PublicID)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/easyghar/x.jpg", result.SecureURL)
}

func TestUploadImage_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid Signature"},
		})
	}))
	defer ts.Close()

	svc := testService(ts.URL)
	_, err := svc.UploadImage(context.Background(), []byte("x"), "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Signature")
}

func TestDestroy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/demo/image/destroy", r.URL.Path)
		assert.Equal(t, "easyghar/old", r.FormValue("public_id"))
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer ts.Close()

	svc := testService(ts.URL)
	assert.NoError(t, svc.Destroy(context.Background(), "easyghar/old"))
}

func TestDestroy_NotFoundTolerated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "not found"})
	}))
	defer ts.Close()

	svc := testService(ts.URL)
	assert.NoError(t, svc.Destroy(context.Background(), "easyghar/gone"))
}
