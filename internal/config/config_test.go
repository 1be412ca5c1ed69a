package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHotkeyString(t *testing.T) {
	cases := []struct {
		hk   HotkeyConfig
		want string
	}{
		{HotkeyConfig{Modifiers: []Modifier{ModCtrl, ModShift}, Key: KeySpace}, "ctrl+shift+space"},
		{HotkeyConfig{Modifiers: []Modifier{ModSuper}, Key: KeyV}, "super+v"},
		{HotkeyConfig{Key: KeyF5}, "f5"},
	}

	for _, c := range cases {
		if got := c.hk.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := NewFromFile("")

	if cfg.Language() != "auto" {
		t.Fatalf("default language = %q, want auto", cfg.Language())
	}
	if cfg.Output() != OutputPolished {
		t.Fatalf("default output = %q, want polished", cfg.Output())
	}
	if !cfg.NotificationsEnabled() {
		t.Fatal("notifications must be enabled by default")
	}
	if got := cfg.Hotkey().String(); got != "ctrl+shift+space" {
		t.Fatalf("default hotkey = %q, want ctrl+shift+space", got)
	}

	f := cfg.Filter()
	if f.SilenceRMS != DefaultSilenceRMS {
		t.Fatalf("default silence RMS = %v, want %v", f.SilenceRMS, DefaultSilenceRMS)
	}
	if len(f.FillerTemplates) == 0 {
		t.Fatal("default filler templates must not be empty")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := NewFromFile(path)
	cfg.SetLanguage("ru")
	cfg.SetOutput(OutputRaw)
	cfg.SetASRModelID("whisper-turbo")
	cfg.SetHotkey(HotkeyConfig{Modifiers: []Modifier{ModAlt}, Key: KeyR})
	cfg.SetPolish(PolishConfig{AbortOnError: true, OllamaURL: "http://localhost:11434", OllamaModel: "qwen2.5:3b"})

	reloaded := NewFromFile(path)

	if reloaded.Language() != "ru" {
		t.Fatalf("language = %q, want ru", reloaded.Language())
	}
	if reloaded.Output() != OutputRaw {
		t.Fatalf("output = %q, want raw", reloaded.Output())
	}
	if reloaded.ASRModelID() != "whisper-turbo" {
		t.Fatalf("asr model = %q, want whisper-turbo", reloaded.ASRModelID())
	}
	if got := reloaded.Hotkey().String(); got != "alt+r" {
		t.Fatalf("hotkey = %q, want alt+r", got)
	}

	p := reloaded.Polish()
	if !p.AbortOnError || p.OllamaURL != "http://localhost:11434" || p.OllamaModel != "qwen2.5:3b" {
		t.Fatalf("polish config not persisted: %+v", p)
	}
}

func TestToggleOutput(t *testing.T) {
	cfg := NewFromFile("")

	if got := cfg.ToggleOutput(); got != OutputRaw {
		t.Fatalf("first toggle = %q, want raw", got)
	}
	if got := cfg.ToggleOutput(); got != OutputPolished {
		t.Fatalf("second toggle = %q, want polished", got)
	}
}

func TestToggleNotifications(t *testing.T) {
	cfg := NewFromFile("")

	if cfg.ToggleNotifications() {
		t.Fatal("first toggle must disable notifications")
	}
	if !cfg.ToggleNotifications() {
		t.Fatal("second toggle must enable notifications")
	}
}

func TestMissingNotificationsKeyKeepsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"language": "ru"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := NewFromFile(path)
	if !cfg.NotificationsEnabled() {
		t.Fatal("missing notifications key must keep the default (enabled)")
	}
}

func TestNotificationsFalsePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := NewFromFile(path)
	if cfg.ToggleNotifications() {
		t.Fatal("toggle must disable notifications")
	}

	reloaded := NewFromFile(path)
	if reloaded.NotificationsEnabled() {
		t.Fatal("explicit false must survive save and reload")
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := NewFromFile(path)
	if cfg.Language() != "auto" {
		t.Fatalf("language = %q, want defaults on corrupt file", cfg.Language())
	}
}

func TestFilterReturnsCopy(t *testing.T) {
	cfg := NewFromFile("")

	f := cfg.Filter()
	if len(f.FillerTemplates) == 0 {
		t.Fatal("expected default templates")
	}
	f.FillerTemplates[0] = "mutated"

	if cfg.Filter().FillerTemplates[0] == "mutated" {
		t.Fatal("Filter must return a copy of the templates slice")
	}
}
