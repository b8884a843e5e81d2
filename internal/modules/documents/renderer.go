package documents

import (
	"fmt"

	"github.com/thuee/info-system-backend/internal/platform/logger"
)

// Renderer turns a letter into one binary document. Implementations must be
// safe for concurrent Render calls.
type Renderer interface {
	Format() string
	Ext() string
	ContentType() string
	Render(l Letter) ([]byte, error)
}

// NewRenderer builds the renderer for cfg.Format.
func NewRenderer(log *logger.Logger, cfg Config) (Renderer, error) {
	cfg = cfg.withDefaults()
	switch cfg.Format {
	case FormatDOCX:
		return NewDOCXRenderer(cfg.TemplatePath)
	case FormatPNG:
		return NewPNGRenderer(log, cfg.FontPath, cfg.FontSize)
	default:
		return nil, fmt.Errorf("unsupported letter format %q", cfg.Format)
	}
}

// NewRenderers builds every supported renderer from one config.
func NewRenderers(log *logger.Logger, cfg Config) ([]Renderer, error) {
	cfg = cfg.withDefaults()
	docx, err := NewDOCXRenderer(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	png, err := NewPNGRenderer(log, cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, err
	}
	return []Renderer{docx, png}, nil
}
