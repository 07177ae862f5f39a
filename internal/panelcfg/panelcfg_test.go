package panelcfg

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weston.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
[core]
shell=desktop-shell.so

[shell]
background-color=0xff002244
size=1920x1080
`)

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.Width != 1920 || d.Height != 1080 {
		t.Errorf("Load() = %dx%d, want 1920x1080", d.Width, d.Height)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Error("Load() on a missing file did not fail")
	}
}

func TestLoadNoSizeEntry(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[shell]\nbackground-color=0xff000000\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() without a size entry did not fail")
	}
}

func TestLoadMalformedSize(t *testing.T) {
	t.Parallel()

	for _, size := range []string{"huge", "1920", "0x1080", "-1x720"} {
		path := writeConfig(t, "[shell]\nsize="+size+"\n")
		if _, err := Load(path); err == nil {
			t.Errorf("Load() accepted malformed size %q", size)
		}
	}
}
