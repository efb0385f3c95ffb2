// Package config loads the scanbook settings.
//
// Settings come from four layers, each overriding the previous one:
// built-in defaults, an optional YAML file, SCANBOOK_* environment variables
// and finally command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/scanbook/internal/engine"
	"github.com/gardar/scanbook/pkg/gdocai"
)

// Config holds all scanbook settings
type Config struct {
	InputDir    string  `yaml:"input_dir"`    // Directory with the page images
	Interim     string  `yaml:"interim"`      // Interim PDF path
	Output      string  `yaml:"output"`       // Searchable PDF path
	Language    string  `yaml:"language"`     // OCR languages joined by '+'
	OutputType  string  `yaml:"output_type"`  // "pdf" or "pdfa"
	Jobs        int     `yaml:"jobs"`         // Parallelism hint
	Engine      string  `yaml:"engine"`       // OCR engine name
	DPI         float64 `yaml:"dpi"`          // Scan resolution
	Deskew      bool    `yaml:"deskew"`       // Straighten and clean pages
	RotatePages bool    `yaml:"rotate_pages"` // Fix page orientation
	Sidecar     string  `yaml:"sidecar"`      // Optional plain text output
	HOCR        string  `yaml:"hocr"`         // Optional hOCR output
	KeepInterim bool    `yaml:"keep_interim"` // Keep the interim PDF after success
	Overwrite   bool    `yaml:"overwrite"`    // Replace an existing output
	Verify      bool    `yaml:"verify"`       // Read back the finished PDF
	DryRun      bool    `yaml:"dry_run"`      // Stop after planning

	Log   LogConfig   `yaml:"log"`
	DocAI DocAIConfig `yaml:"docai"`
}

// LogConfig selects the log output
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// DocAIConfig holds the Document AI processor and debugging settings
type DocAIConfig struct {
	gdocai.Config `yaml:",inline"`
	DebugDir      string `yaml:"debug_dir"` // Where raw responses are saved
}

// DefaultJobs is half the CPUs, at least one
func DefaultJobs() int {
	return max(1, runtime.NumCPU()/2)
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		InputDir:    "images",
		Interim:     "temp_merged.pdf",
		Output:      "book.pdf",
		Language:    "eng",
		OutputType:  "pdfa",
		Jobs:        DefaultJobs(),
		Engine:      "ocrmypdf",
		DPI:         300,
		Deskew:      true,
		RotatePages: true,
		Verify:      true,
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// LoadFile reads a YAML file over c. Keys missing from the file keep their value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv applies SCANBOOK_* environment variables over c
func (c *Config) LoadEnv() error {
	c.InputDir = getEnv("SCANBOOK_INPUT_DIR", c.InputDir)
	c.Interim = getEnv("SCANBOOK_INTERIM", c.Interim)
	c.Output = getEnv("SCANBOOK_OUTPUT", c.Output)
	c.Language = getEnv("SCANBOOK_LANGUAGE", c.Language)
	c.OutputType = getEnv("SCANBOOK_OUTPUT_TYPE", c.OutputType)
	c.Engine = getEnv("SCANBOOK_ENGINE", c.Engine)
	c.Sidecar = getEnv("SCANBOOK_SIDECAR", c.Sidecar)
	c.Log.Level = getEnv("SCANBOOK_LOG_LEVEL", c.Log.Level)
	c.DocAI.ProjectID = getEnv("SCANBOOK_DOCAI_PROJECT_ID", c.DocAI.ProjectID)
	c.DocAI.Location = getEnv("SCANBOOK_DOCAI_LOCATION", c.DocAI.Location)
	c.DocAI.ProcessorID = getEnv("SCANBOOK_DOCAI_PROCESSOR_ID", c.DocAI.ProcessorID)

	var err error
	if c.Jobs, err = getEnvInt("SCANBOOK_JOBS", c.Jobs); err != nil {
		return err
	}
	if c.DPI, err = getEnvFloat("SCANBOOK_DPI", c.DPI); err != nil {
		return err
	}
	return nil
}

// BindFlags registers a flag for every command-line setting on fs, writing into c
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputDir, "input", c.InputDir, "Directory containing the page images")
	fs.StringVar(&c.Interim, "interim", c.Interim, "Path of the interim PDF built from the images")
	fs.StringVar(&c.Output, "output", c.Output, "Path of the searchable PDF")
	fs.StringVar(&c.Language, "lang", c.Language, "OCR languages, joined by '+' (e.g. eng+isl)")
	fs.StringVar(&c.OutputType, "output-type", c.OutputType, "Output type: pdf or pdfa")
	fs.IntVar(&c.Jobs, "jobs", c.Jobs, "Number of pages to OCR in parallel")
	fs.StringVar(&c.Engine, "engine", c.Engine, "OCR engine: "+strings.Join(engine.Names(), ", "))
	fs.Float64Var(&c.DPI, "dpi", c.DPI, "Resolution the pages were scanned at")
	fs.BoolVar(&c.Deskew, "deskew", c.Deskew, "Deskew and clean pages (ocrmypdf)")
	fs.BoolVar(&c.RotatePages, "rotate-pages", c.RotatePages, "Fix page orientation (ocrmypdf)")
	fs.StringVar(&c.Sidecar, "sidecar", c.Sidecar, "Path to save the recognized text")
	fs.StringVar(&c.HOCR, "hocr", c.HOCR, "Path to save the hOCR (all engines but ocrmypdf)")
	fs.BoolVar(&c.KeepInterim, "keep-interim", c.KeepInterim, "Keep the interim PDF after a successful run")
	fs.BoolVar(&c.Overwrite, "overwrite", c.Overwrite, "Overwrite the output PDF if it already exists")
	fs.BoolVar(&c.Verify, "verify", c.Verify, "Check the page count of the finished PDF")
	fs.BoolVar(&c.DryRun, "dry-run", c.DryRun, "Print the page order and stop")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format: text or json")
}

// Parse builds the configuration from the command line args (without the program name)
// and the environment. The YAML file named by -config, if any, sits between the
// defaults and the environment.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	given := Default()
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	given.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := Default()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return Config{}, err
	}

	// Replay the flags given on the command line over the loaded settings
	replay := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	cfg.BindFlags(replay)
	var replayErr error
	fs.Visit(func(f *flag.Flag) {
		if replay.Lookup(f.Name) == nil || replayErr != nil {
			return
		}
		replayErr = replay.Set(f.Name, f.Value.String())
	})
	if replayErr != nil {
		return Config{}, replayErr
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings for values no run can succeed with
func (c *Config) Validate() error {
	switch {
	case c.InputDir == "":
		return fmt.Errorf("input directory is not set")
	case c.Output == "":
		return fmt.Errorf("output path is not set")
	case c.Interim == "":
		return fmt.Errorf("interim path is not set")
	case filepath.Clean(c.Interim) == filepath.Clean(c.Output):
		return fmt.Errorf("interim and output must be different files")
	case c.Language == "":
		return fmt.Errorf("language is not set")
	case c.OutputType != "pdf" && c.OutputType != "pdfa":
		return fmt.Errorf("invalid output type %q (want pdf or pdfa)", c.OutputType)
	case c.Jobs < 1:
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	case c.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %v", c.DPI)
	case c.Log.Format != "text" && c.Log.Format != "json":
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	for _, name := range engine.Names() {
		if name == c.Engine {
			if name == "docai" {
				return c.DocAI.Validate()
			}
			return nil
		}
	}
	return fmt.Errorf("unknown OCR engine %q (known: %s)", c.Engine, strings.Join(engine.Names(), ", "))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
