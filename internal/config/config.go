package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/seanblong/repofinder/internal/finder"
	"github.com/seanblong/repofinder/internal/github"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Specification struct {
	Language     string        `yaml:"language"`
	APIURL       string        `yaml:"apiURL" envconfig:"API_URL"`
	Timeout      time.Duration `yaml:"timeout"`
	LogLevel     string        `yaml:"logLevel" split_words:"true"`
	LogFile      string        `yaml:"logFile" split_words:"true"`
	Port         int           `yaml:"port" split_words:"true"`
	GlamourStyle string        `yaml:"glamourStyle" split_words:"true"`

	flags *pflag.FlagSet `ignored:"true"`
}

const envPrefix = "REPOFINDER"

func (s *Specification) Usage() {
	fmt.Fprint(os.Stderr, s.flags.FlagUsages())
}

// Load => defaults < YAML < env < flags.
// configPath may be ""; if so we auto-discover.
func Load(configPath string, fs *pflag.FlagSet) (Specification, error) {
	var cfg Specification

	// set defaults (lowest precedence)
	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	// config file
	path := configPath
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{
				"config/repofinder.yaml",
				"config/config.yaml",
				"./repofinder.yaml",
				"./config.yaml",
			} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	// env overrides config file
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}

	// flags override everything
	if err := fs.Parse(os.Args[1:]); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	if err := validate(&cfg); err != nil {
		return Specification{}, err
	}
	return cfg, nil
}

func validate(cfg *Specification) error {
	lang, err := finder.ParseLanguage(cfg.Language)
	if err != nil {
		return fmt.Errorf("REPOFINDER_LANGUAGE: %w", err)
	}
	cfg.Language = lang.String()

	if strings.TrimSpace(cfg.APIURL) == "" {
		return fmt.Errorf("REPOFINDER_API_URL is required (env/file/flag)")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("REPOFINDER_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return nil
}

// ---------- helpers ----------

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	// If --config is provided on the command line, capture it now so
	// config discovery (which runs before flags.Parse) can use it.
	for i, a := range os.Args {
		if a == "--config" {
			if i+1 < len(os.Args) && !strings.HasPrefix(os.Args[i+1], "-") {
				_ = os.Setenv(envPrefix+"_CONFIG", os.Args[i+1])
			}
		} else if strings.HasPrefix(a, "--config=") {
			parts := strings.SplitN(a, "=", 2)
			if len(parts) == 2 {
				_ = os.Setenv(envPrefix+"_CONFIG", parts[1])
			}
		}
	}

	fs.String("language", c.Language, "Initial language (javascript|python|ruby|go|java)")
	fs.String("api-url", c.APIURL, "GitHub API base URL")
	fs.Duration("timeout", c.Timeout, "Timeout for one repository search")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("log-file", c.LogFile, "Write logs to this file (TUI only; default discards)")
	fs.Int("port", c.Port, "API server port")
	fs.String("glamour-style", c.GlamourStyle, "Glamour style for descriptions (dark|light|notty|...)")

	// Used later for usage/help
	// create a shallow copy of fs (so Usage can be called safely without mutating caller)
	copied := pflag.NewFlagSet("temp", pflag.ContinueOnError)
	*copied = *fs
	c.flags = copied
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if fs.Changed(name) {
			v, _ := fs.GetDuration(name)
			*dst = v
		}
	}

	// (We ignore --config here; it's for discovery.)
	setStr("language", &c.Language)
	setStr("api-url", &c.APIURL)
	setDuration("timeout", &c.Timeout)

	setStr("log-level", &c.LogLevel)
	setStr("log-file", &c.LogFile)
	setInt("port", &c.Port)
	setStr("glamour-style", &c.GlamourStyle)
}

func setDefaults(c *Specification) {
	c.Language = string(finder.DefaultLanguage)
	c.APIURL = github.DefaultAPIURL
	c.Timeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogFile = ""
	c.Port = 8080
	c.GlamourStyle = "dark"
}
