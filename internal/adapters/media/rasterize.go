package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
)

var ErrTooManyPages = errors.New("pdf exceeds page limit")

type RasterizerConfig struct {
	Pdftoppm string // binary name or absolute path; defaults to "pdftoppm"
	DPI      int    // defaults to 200
	MaxPages int    // larger PDFs are rejected; 0 = no limit
}

// Rasterizer renders PDFs to PNG pages with poppler's pdftoppm.
type Rasterizer struct {
	cfg    RasterizerConfig
	runner Runner
}

func NewRasterizer(cfg RasterizerConfig) *Rasterizer {
	return newRasterizer(cfg, execRunner{})
}

func newRasterizer(cfg RasterizerConfig, r Runner) *Rasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Rasterizer{cfg: cfg, runner: r}
}

func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte) ([]ports.Page, error) {
	tmpDir, err := os.MkdirTemp("", "ocr-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", tmpDir).Msg("failed to remove temp dir")
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png [-l <max+1>] <in.pdf> <tmp/page>
	// one page past the limit is rendered so an oversized PDF is detected
	args := []string{"-r", strconv.Itoa(r.cfg.DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages+1))
	}
	args = append(args, in, prefix)

	if _, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...); err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return nil, fmt.Errorf("pdftoppm: %w", err)
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, msg)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]ports.Page, 0, len(matches))
	for _, m := range matches {
		n, err := pageNumber(prefix, m)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, ports.Page{Number: n, Data: data, MediaType: TypePNG})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })

	if r.cfg.MaxPages > 0 && len(pages) > r.cfg.MaxPages {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyPages, r.cfg.MaxPages)
	}
	return pages, nil
}

// pageNumber parses "<prefix>-07.png" into 7.
func pageNumber(prefix, path string) (int, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(path, prefix+"-"), ".png")
	return strconv.Atoi(s)
}
