package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved, absolute directories the resolver reads from.
type Paths struct {
	BaseDir      string
	RecordsDir   string
	ContextsDir  string
	StaticDir    string
	TemplatesDir string // empty: use the embedded templates
}

// ResolvePaths turns a PathsConfig into absolute paths.
//
// The base directory is, in order: PathsConfig.BaseDir, the executable
// directory when RelativeToExe is set, or the current working directory.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base, err := baseDir(cfg)
	if err != nil {
		return nil, err
	}

	paths := &Paths{
		BaseDir:     base,
		RecordsDir:  resolve(base, cfg.RecordsDir),
		ContextsDir: resolve(base, cfg.ContextsDir),
		StaticDir:   resolve(base, cfg.StaticDir),
	}
	if cfg.TemplatesDir != "" {
		paths.TemplatesDir = resolve(base, cfg.TemplatesDir)
	}

	return paths, nil
}

func baseDir(cfg PathsConfig) (string, error) {
	if cfg.BaseDir != "" {
		return filepath.Abs(cfg.BaseDir)
	}

	if cfg.RelativeToExe {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to get executable path: %w", err)
		}
		// Resolve symlinks to get the actual executable location
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		return filepath.Dir(exe), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// Validate reports missing directories. Only the records directory is
// required; contexts and static mounts simply 404 when absent.
func (p *Paths) Validate() error {
	info, err := os.Stat(p.RecordsDir)
	if err != nil {
		return fmt.Errorf("records directory %s: %w", p.RecordsDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("records directory %s is not a directory", p.RecordsDir)
	}

	if p.TemplatesDir != "" && !DirExists(p.TemplatesDir) {
		return fmt.Errorf("templates directory %s does not exist", p.TemplatesDir)
	}

	return nil
}

// Missing returns the optional directories that do not exist
func (p *Paths) Missing() []string {
	var missing []string
	for _, dir := range []string{p.ContextsDir, p.StaticDir} {
		if !DirExists(dir) {
			missing = append(missing, dir)
		}
	}
	return missing
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	templates := p.TemplatesDir
	if templates == "" {
		templates = "(embedded)"
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("records", p.RecordsDir),
			slog.String("contexts", p.ContextsDir),
			slog.String("static", p.StaticDir),
			slog.String("templates", templates),
		),
		slog.String("missing", strings.Join(p.Missing(), ",")))
}
