package config

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "parses a valid integer",
			key:          "TEST_INT",
			defaultValue: 5,
			envValue:     "42",
			shouldSet:    true,
			want:         42,
		},
		{
			name:         "returns default when unset",
			key:          "TEST_INT_MISSING",
			defaultValue: 5,
			shouldSet:    false,
			want:         5,
		},
		{
			name:         "returns default on parse failure",
			key:          "TEST_INT_BAD",
			defaultValue: 5,
			envValue:     "not-a-number",
			shouldSet:    true,
			want:         5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("requires API_KEY", func(t *testing.T) {
		t.Setenv("API_KEY", "")

		if _, err := Load(); err == nil {
			t.Error("Load() expected error when API_KEY unset")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Port != "8080" {
			t.Errorf("Port = %v, want 8080", cfg.Port)
		}
		if cfg.EmbedDimensions != 768 {
			t.Errorf("EmbedDimensions = %v, want 768", cfg.EmbedDimensions)
		}
		if cfg.EmbeddingMaxAttempts != 1 {
			t.Errorf("EmbeddingMaxAttempts = %v, want 1", cfg.EmbeddingMaxAttempts)
		}
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		t.Setenv("API_KEY", "test-key")
		t.Setenv("EMBED_DIMENSIONS", "0")

		if _, err := Load(); err == nil {
			t.Error("Load() expected error for EMBED_DIMENSIONS=0")
		}
	})
}
