package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not error: %v", err)
	}
	if cfg.DBPath != "" || cfg.NATSURL != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("db_path: /tmp/file.db\nnats_url: nats://file:4222\ngrading:\n  fast_model: file-fast\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GRADECORE_NATS_URL", "nats://env:4222")
	t.Setenv("GRADECORE_DB", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/file.db" {
		t.Errorf("db path = %q, want file value", cfg.DBPath)
	}
	if cfg.NATSURL != "nats://env:4222" {
		t.Errorf("nats url = %q, env must win over file", cfg.NATSURL)
	}
	if cfg.Grading.FastModel != "file-fast" {
		t.Errorf("fast model = %q", cfg.Grading.FastModel)
	}
}

func TestLoad_FallbackModelLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("grading:\n  fast_model: primary\n  fast_fallbacks: [backup-a, backup-b]\n  detail_model: deep\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GRADECORE_DETAIL_FALLBACKS", "deep-backup, ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	fast := cfg.Grading.FastChain()
	want := []string{"primary", "backup-a", "backup-b"}
	if len(fast) != len(want) {
		t.Fatalf("fast chain = %v, want %v", fast, want)
	}
	for i := range want {
		if fast[i] != want[i] {
			t.Errorf("fast chain[%d] = %q, want %q", i, fast[i], want[i])
		}
	}

	detail := cfg.Grading.DetailChain()
	if len(detail) != 2 || detail[0] != "deep" || detail[1] != "deep-backup" {
		t.Errorf("detail chain = %v, want [deep deep-backup]", detail)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db_path: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveDBPath_Override(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{DBPath: filepath.Join(dir, "nested", "gradecore.db")}

	p, err := cfg.ResolveDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != cfg.DBPath {
		t.Errorf("path = %q, want configured %q", p, cfg.DBPath)
	}
	if _, err := os.Stat(filepath.Dir(p)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}
