// Package panelcfg reads the compositor's panel configuration file to pick
// an initial display scale and fullscreen size. Everything here is
// best-effort: a missing or malformed file is an error the caller degrades
// from, never a hard failure.
package panelcfg

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// DefaultPath is where the desktop shell configuration normally lives.
const DefaultPath = "/etc/xdg/weston/weston.ini"

// PanelHeight is subtracted from the desktop height when deriving the
// fullscreen window size, leaving room for the shell panel.
const PanelHeight = 32

// Desktop is the shell's configured desktop geometry.
type Desktop struct {
	Width  int
	Height int
}

// Load parses the shell section of a weston-style ini file and returns the
// configured desktop size.
func Load(path string) (Desktop, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return Desktop{}, fmt.Errorf("read panel config: %w", err)
	}

	size := cfg.Section("shell").Key("size").String()
	if size == "" {
		return Desktop{}, fmt.Errorf("panel config %s: no shell size entry", path)
	}

	var d Desktop
	if n, err := fmt.Sscanf(size, "%dx%d", &d.Width, &d.Height); err != nil || n != 2 {
		return Desktop{}, fmt.Errorf("panel config %s: malformed size %q", path, size)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return Desktop{}, fmt.Errorf("panel config %s: non-positive size %q", path, size)
	}
	return d, nil
}
