package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShot(t *testing.T) {
	tests := []struct {
		scene         string
		width, height int
	}{
		{"features", 80 * 12, 40 * 12},
		{"mapgen", 40 * 12, 40 * 12},
	}
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.scene+".png")
			out, err := execute(t, "shot", tt.scene, "-o", path, "--frames", "2")
			if err != nil {
				t.Fatalf("shot failed: %v\n%s", err, out)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			cfg, err := png.DecodeConfig(f)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Errorf("snapshot is %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
		})
	}
}

func TestShotRejectsOnscreenBackend(t *testing.T) {
	if _, err := execute(t, "shot", "--backend", "headless", "-o", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("shot accepted the headless backend")
	}
	if _, err := execute(t, "shot", "nosuchscene"); err == nil {
		t.Error("shot accepted an unknown scene")
	}
}

func TestAtlas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tileset.png")
	out, err := execute(t, "atlas", "-o", path, "--cell-width", "8", "--cell-height", "10")
	if err != nil {
		t.Fatalf("atlas failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "128x160") {
		t.Errorf("output %q does not report the 128x160 size", out)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decode atlas: %v", err)
	}
}

func TestRunScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.lua")
	src := `
		function tick(frame)
		  term.print(0, 0, 0, "hello")
		  print("frame", frame)
		  if frame == 1 then return false end
		end
	`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "run", "--backend", "headless", "--interval", "1ms", "--width", "10", "--height", "2", path)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "frame\t0") || !strings.Contains(out, "frame\t1") {
		t.Errorf("script output = %q", out)
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := execute(t, "features", "--backend", "nosuch"); err == nil {
		t.Error("features accepted an unknown backend")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"software", "headless", "tty"} {
		if !strings.Contains(out, name) {
			t.Errorf("version output lacks backend %q:\n%s", name, out)
		}
	}
}
