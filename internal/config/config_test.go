package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead_Defaults(t *testing.T) {
	cfg, err := Read(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("读取配置失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Store.Backend != "database" {
		t.Errorf("默认存储不正确: %+v %+v", cfg.Database, cfg.Store)
	}
	if cfg.Timer.MorningStart != 8 || cfg.Timer.MorningEnd != 12 ||
		cfg.Timer.AfternoonStart != 13 || cfg.Timer.AfternoonEnd != 19 {
		t.Errorf("默认时段不正确: %+v", cfg.Timer)
	}
	if cfg.TickInterval() != time.Second {
		t.Errorf("tick = %v", cfg.TickInterval())
	}
}

func TestRead_EnvOverride(t *testing.T) {
	t.Setenv("STUDY_SERVER_PORT", "7000")
	cfg, err := Read(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want env override 7000", cfg.Server.Port)
	}
}

func TestRead_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad driver":   "database:\n  driver: mysql\n",
		"postgres dsn": "database:\n  driver: postgres\n",
		"bad backend":  "store:\n  backend: redis\n",
		"bad window":   "timer:\n  morning_start: 12\n  morning_end: 8\n",
		"bad timezone": "timer:\n  timezone: Mars/Olympus\n",
	}
	for name, body := range cases {
		if _, err := Read(writeConfig(t, body)); err == nil {
			t.Errorf("%s: 应返回错误", name)
		}
	}
}

func TestRead_MissingExplicitFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("指定的配置文件不存在时应返回错误")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timer: TimerConfig{Timezone: "Asia/Taipei"}}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "Asia/Taipei" {
		t.Errorf("loc = %s", loc)
	}
}

func TestRequireSecrets(t *testing.T) {
	cases := []struct {
		name    string
		jwt     string
		key     string
		wantErr bool
	}{
		{"both set", "s", "k", false},
		{"no jwt secret", "", "k", true},
		{"no encryption key", "s", "", true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{JWT: JWTConfig{Secret: tt.jwt}, Security: SecurityConfig{EncryptionKey: tt.key}}
			if err := c.RequireSecrets(); (err != nil) != tt.wantErr {
				t.Errorf("RequireSecrets() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
