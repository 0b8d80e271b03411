package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/OFFIS-RIT/corpusgraph/pkg/loader"
)

var reNewlines = regexp.MustCompile(`\n{3,}`)

func parsePDF(input []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "pdfextract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not found in PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// page breaks (\f) are kept so the output can be split per page
	cmd := exec.CommandContext(
		ctx,
		"pdftotext",
		"-enc", "UTF-8",
		"-eol", "unix",
		"-q",
		pdfPath,
		"-",
	)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("pdftotext timed out")
	}
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, bytes.TrimSpace(out))
	}

	return out, nil
}

// splitPages splits pdftotext output on form feeds into numbered pages.
// Trailing empty pages are dropped; interior blank pages keep their
// number so later pages stay aligned with the source document.
func splitPages(text string) []loader.Page {
	parts := strings.Split(text, "\f")

	last := len(parts)
	for last > 0 && strings.TrimSpace(parts[last-1]) == "" {
		last--
	}

	pages := make([]loader.Page, 0, last)
	for i := 0; i < last; i++ {
		pageText := strings.TrimSpace(parts[i])
		pageText = reNewlines.ReplaceAllString(pageText, "\n\n")
		pages = append(pages, loader.Page{
			Number: i + 1,
			Text:   pageText,
		})
	}
	return pages
}
