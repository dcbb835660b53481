package main

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soocke/pixel-match-go/images"
)

func TestRun_RequiresImageOrScreen(t *testing.T) {
	if err := run([]string{"-template", "t.png"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestRun_RejectsUnknownMode(t *testing.T) {
	err := run([]string{"-image", "i.png", "-template", "t.png", "-mode", "wavelet"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unsupported mode") {
		t.Fatalf("expected unsupported mode error, got %v", err)
	}
}

func TestRun_PrintsMatches(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 12, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*x*7 + y*29 + x*y*5) % 240)})
		}
	}
	tmpl := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			tmpl.SetGray(x, y, img.GrayAt(5+x, 3+y))
		}
	}
	imgPath, tmplPath := filepath.Join(dir, "i.png"), filepath.Join(dir, "t.png")
	if err := images.Save(imgPath, img); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := images.Save(tmplPath, tmpl); err != nil {
		t.Fatalf("save: %v", err)
	}
	var out bytes.Buffer
	if err := run([]string{"-image", imgPath, "-template", tmplPath, "-threshold", "0.9999", "-log-format", "text"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "5 3 ") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo, "text").Info("hello", "k", 1)
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
	buf.Reset()
	newLogger(&buf, slog.LevelInfo, "json").Debug("hidden")
	newLogger(&buf, slog.LevelInfo, "json").Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("unexpected json output %q", buf.String())
	}
}
