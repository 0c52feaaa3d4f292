package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("LEARNHUB_TEST_STR", "mongodb://db:27017")

	assert.Equal(t, "mongodb://db:27017", GetEnv("LEARNHUB_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LEARNHUB_TEST_MISSING", "fallback"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("LEARNHUB_TEST_INT", "45")
	t.Setenv("LEARNHUB_TEST_BAD_INT", "forty-five")

	assert.Equal(t, 45, GetEnvAsInt("LEARNHUB_TEST_INT", 30))
	assert.Equal(t, 30, GetEnvAsInt("LEARNHUB_TEST_BAD_INT", 30))
	assert.Equal(t, 30, GetEnvAsInt("LEARNHUB_TEST_MISSING", 30))
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("LEARNHUB_TEST_SLICE", "airtel,mtn")

	assert.Equal(t, []string{"airtel", "mtn"}, GetEnvAsSlice("LEARNHUB_TEST_SLICE", ",", nil))
	assert.Nil(t, GetEnvAsSlice("LEARNHUB_TEST_MISSING", ",", nil))
}
