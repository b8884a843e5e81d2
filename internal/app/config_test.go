package app

import (
	"testing"
	"time"

	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/services"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "AMEND_MISSING_POLICY", "CORS_ORIGINS", "REDIS_ADDR", "EXPORT_RATE_WINDOW"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.AmendPolicy != services.AmendMissingUpsert {
		t.Fatalf("AmendPolicy = %q", cfg.AmendPolicy)
	}
	if cfg.RedisAddr != "" || len(cfg.CORSOrigins) != 0 {
		t.Fatalf("unexpected optional settings: %+v", cfg)
	}
	if cfg.ExportRateWindow != time.Minute {
		t.Fatalf("ExportRateWindow = %v", cfg.ExportRateWindow)
	}
}

func TestLoadConfigPolicy(t *testing.T) {
	cases := []struct {
		raw  string
		want services.AmendMissingPolicy
	}{
		{"strict", services.AmendMissingStrict},
		{"STRICT", services.AmendMissingStrict},
		{"upsert", services.AmendMissingUpsert},
		{"bogus", services.AmendMissingUpsert},
	}
	for _, tc := range cases {
		t.Setenv("AMEND_MISSING_POLICY", tc.raw)
		if got := LoadConfig(logger.Nop()).AmendPolicy; got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example ,, https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("splitList = %#v", got)
	}
	if splitList("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
