package appconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from path, falling back to DefaultConfigPath. A
// missing file yields the defaults. Environment variables prefixed with
// EnvPrefix override both.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("list_id", cfg.ListID)
	v.SetDefault("backend.url", cfg.Backend.URL)
	v.SetDefault("backend.api_base", cfg.Backend.APIBase)
	v.SetDefault("backend.csrf_token", cfg.Backend.CSRFToken)
	v.SetDefault("backend.csrf_header", cfg.Backend.CSRFHeader)
	v.SetDefault("backend.timeout_seconds", cfg.Backend.TimeoutSeconds)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)
	v.SetDefault("http.route_path", cfg.HTTP.RoutePath)
	v.SetDefault("render.loader", cfg.Render.Loader)
	v.SetDefault("render.strict_keys", cfg.Render.StrictKeys)
	v.SetDefault("render.disable_widget_framework", cfg.Render.DisableWidgetFramework)
	v.SetDefault("render.templates_dir", cfg.Render.TemplatesDir)
	v.SetDefault("render.template_engine", cfg.Render.TemplateEngine)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else if v.GetInt("config_version") != CurrentConfigVersion {
		return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Backend.URL = os.ExpandEnv(cfg.Backend.URL)
	cfg.Backend.CSRFToken = os.ExpandEnv(cfg.Backend.CSRFToken)
	cfg.Render.TemplatesDir = os.ExpandEnv(cfg.Render.TemplatesDir)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	backend := strings.TrimSpace(cfg.Backend.URL)
	if backend != "" {
		parsed, err := url.Parse(backend)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("backend.url must include scheme and host (e.g. https://cms.example.com)")
		}
	}
	if cfg.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("backend.timeout_seconds must not be negative")
	}
	basePath := strings.TrimSpace(cfg.HTTP.BasePath)
	if basePath != "" {
		if strings.Contains(basePath, "://") {
			return fmt.Errorf("http.base_path must be a path prefix, not a URL")
		}
		if strings.ContainsAny(basePath, "?#") {
			return fmt.Errorf("http.base_path must not include query or fragment")
		}
	}
	switch cfg.Render.TemplateEngine {
	case EnginePongo2, EngineGoTemplate:
	default:
		return fmt.Errorf("render.template_engine must be %q or %q", EnginePongo2, EngineGoTemplate)
	}
	return nil
}

// WriteDefault writes the default config to path and returns the path used.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
