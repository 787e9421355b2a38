package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	assert.Equal(t, 150.5, toFloat(150.5))
	assert.Equal(t, 200.0, toFloat("200"))
	assert.Equal(t, 99.9, toFloat(" 99.9 "))
	assert.Equal(t, 0.0, toFloat("abc"))
	assert.Equal(t, 0.0, toFloat(nil))
	assert.Equal(t, 0.0, toFloat(map[string]string{}))
}

func TestParseServicesPayload(t *testing.T) {
	got := parseServicesPayload(`{"plumbing":{"minRate":500,"hourlyRate":"150"}}`)
	assert.Len(t, got, 1)
	assert.Equal(t, 500.0, toFloat(got["plumbing"].MinRate))
	assert.Equal(t, 150.0, toFloat(got["plumbing"].HourlyRate))
}

func TestParseServicesPayload_FallbackField(t *testing.T) {
	got := parseServicesPayload("", `{"electrical":{"minRate":"1000"}}`)
	assert.Len(t, got, 1)
	assert.Equal(t, 1000.0, toFloat(got["electrical"].MinRate))
}

func TestParseServicesPayload_Malformed(t *testing.T) {
	assert.Empty(t, parseServicesPayload("{not json"))
	assert.Empty(t, parseServicesPayload(""))
}

func TestToServiceID(t *testing.T) {
	assert.Equal(t, uint(3), toServiceID(float64(3)))
	assert.Equal(t, uint(7), toServiceID("7"))
	assert.Equal(t, uint(0), toServiceID("plumbing"))
	assert.Equal(t, uint(0), toServiceID(nil))
	assert.Equal(t, uint(0), toServiceID(float64(-2)))
}

func TestParsePositiveInt(t *testing.T) {
	assert.Equal(t, 5, parsePositiveInt("5"))
	assert.Equal(t, 0, parsePositiveInt("-3"))
	assert.Equal(t, 0, parsePositiveInt("abc"))
	assert.Equal(t, 0, parsePositiveInt(""))
}

func TestStrPtrOrNil(t *testing.T) {
	assert.Nil(t, strPtrOrNil(""))
	assert.Nil(t, strPtrOrNil("   "))
	if got := strPtrOrNil("a@b.pk"); assert.NotNil(t, got) {
		assert.Equal(t, "a@b.pk", *got)
	}
}

func TestPostgresErrorClassification(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_phone_key" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))

	assert.True(t, isUndefinedTable(errors.New(`ERROR: relation "customers" does not exist (SQLSTATE 42P01)`)))
	assert.False(t, isUndefinedTable(errors.New("deadlock detected")))
	assert.False(t, isUndefinedTable(nil))
}
