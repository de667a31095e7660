package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameHost != "127.0.0.1" || cfg.GamePort != 7445 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.HasLLM() {
		t.Error("HasLLM true with no credentials")
	}
}

func TestFileOverlayAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "juno.yaml")
	body := "game_host: filehost\ngame_port: 9000\nllm_model: file-model\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GAME_HOST", "envhost")
	t.Setenv("GAME_PORT", "")
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("OPENRA_FACTION", "Allies")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameHost != "envhost" {
		t.Errorf("env did not win over file: %q", cfg.GameHost)
	}
	if cfg.GamePort != 9000 {
		t.Errorf("file port lost: %d", cfg.GamePort)
	}
	if cfg.Faction != "Allies" {
		t.Errorf("faction = %q", cfg.Faction)
	}
	if !cfg.HasLLM() {
		t.Error("HasLLM false with key from env and model from file")
	}
}

func TestMissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing optional file rejected: %v", err)
	}
}

func TestMalformedFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "juno.yaml")
	if err := os.WriteFile(path, []byte("game_port: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestBadFactionRejected(t *testing.T) {
	t.Setenv("OPENRA_FACTION", "Nod")
	if _, err := Load(""); err == nil {
		t.Error("unknown faction accepted")
	}
}
