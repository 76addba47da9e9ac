package fx

import (
	"testing"

	"keystone-tracker/internal/config"

	"github.com/rs/zerolog"
)

func TestProvideLoggerHonorsConfiguredLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"error", zerolog.ErrorLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if got := ProvideLogger(cfg).GetLevel(); got != tt.want {
				t.Errorf("logger level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProvideLoggerFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{LogLevel: "nonsense"}
	if got := ProvideLogger(cfg).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("logger level = %v, want %v", got, zerolog.InfoLevel)
	}
}
