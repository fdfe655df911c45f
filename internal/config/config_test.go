package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	body = strings.ReplaceAll(body, "$UPLOADS", filepath.Join(dir, "uploads"))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	dir := writeConfig(t, `
jwt:
  secret: short
  expire_hours: 2
storage:
  local_path: $UPLOADS
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.ExpireTime != 2*time.Hour {
		t.Fatalf("expire = %v", cfg.JWT.ExpireTime)
	}
	q := cfg.Questionnaire
	if q.DefaultMaxScore != 5 || q.DefaultMinScore != 0 || q.MaxBulkAdd != 100 || q.PageSize != 10 {
		t.Fatalf("questionnaire defaults not applied: %+v", q)
	}
	if q.CacheTTL() != 5*time.Minute {
		t.Fatalf("cache ttl = %v", q.CacheTTL())
	}
	if _, err := os.Stat(cfg.Storage.LocalPath); err != nil {
		t.Fatalf("local storage dir not created: %v", err)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"weak secret in release": `
server:
  mode: release
jwt:
  secret: short
storage:
  local_path: $UPLOADS
`,
		"inverted score range": `
jwt:
  secret: x
storage:
  local_path: $UPLOADS
questionnaire:
  default_min_score: 5
  default_max_score: 5
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			if _, err := LoadConfig(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
