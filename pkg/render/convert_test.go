package render

import (
	"os/exec"
	"strings"
	"testing"
)

func TestToPNGRejectsScale(t *testing.T) {
	if _, err := ToPNG([]byte("<svg/>"), 0); err == nil {
		t.Error("ToPNG() with zero scale should fail")
	}
}

func TestConvertWithoutLibrsvg(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err == nil {
		t.Skip("rsvg-convert is installed")
	}
	_, err := ToPDF([]byte("<svg/>"))
	if err == nil || !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("ToPDF() error = %v, want install hint", err)
	}
}
