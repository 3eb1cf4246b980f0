package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:          tt.env,
				StoreBackend: BackendPostgres,
				DBSSLMode:    tt.sslMode,
				JWTSecret:    "secure-secret-at-least-32-chars-long",
				DBPassword:   "secure-password",
				Port:         "8080",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateBackend(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"mongo with uri", Config{StoreBackend: BackendMongo, MongoURI: "mongodb://db:27017"}, false},
		{"mongo without uri", Config{StoreBackend: BackendMongo}, true},
		{"sqlite in development", Config{StoreBackend: BackendSQLite, Env: "development"}, false},
		{"sqlite in production", Config{StoreBackend: BackendSQLite, Env: "production"}, true},
		{"unknown backend", Config{StoreBackend: "cassandra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			c.Port = "8080"
			c.JWTSecret = "secure-secret-at-least-32-chars-long"
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecret(t *testing.T) {
	c := &Config{
		Env:          "production",
		Port:         "8080",
		StoreBackend: BackendMongo,
		MongoURI:     "mongodb://db:27017",
		JWTSecret:    defaultJWTSecret,
	}
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c.JWTSecret = "secure-secret-at-least-32-chars-long"
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("ENGAGEMENT_FANOUT")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("STORE_BACKEND", " SQLite ")
	os.Setenv("ENGAGEMENT_FANOUT", "0")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, 8, c.EngagementFanout)
	assert.Equal(t, 168, c.DraftTTLHours)
}
