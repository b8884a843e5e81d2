package documents

import (
	"os"
	"strings"

	"github.com/thuee/info-system-backend/internal/platform/envutil"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

const (
	FormatDOCX = "docx"
	FormatPNG  = "png"

	defaultDepartment = "清华大学电子工程系"
)

// Config is handed to the pipeline at construction; renderers never read
// process-wide state.
type Config struct {
	Format       string
	Department   string
	FontPath     string
	FontSize     float64
	TemplatePath string
	WorkDir      string
	Concurrency  int
}

func (c Config) withDefaults() Config {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = FormatDOCX
	}
	if strings.TrimSpace(c.Department) == "" {
		c.Department = defaultDepartment
	}
	if c.FontSize <= 0 {
		c.FontSize = 28
	}
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	if c.Concurrency < 1 {
		c.Concurrency = 4
	}
	return c
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		Format:       envutil.String("LETTER_FORMAT", FormatDOCX, log),
		Department:   envutil.String("LETTER_DEPARTMENT", defaultDepartment, log),
		FontPath:     envutil.String("LETTER_FONT_PATH", "", log),
		FontSize:     envutil.Float("LETTER_FONT_SIZE", 28, log),
		TemplatePath: envutil.String("LETTER_TEMPLATE_PATH", "", log),
		WorkDir:      envutil.String("LETTER_WORKDIR", os.TempDir(), log),
		Concurrency:  envutil.Int("LETTER_RENDER_CONCURRENCY", 4, log),
	}
}
