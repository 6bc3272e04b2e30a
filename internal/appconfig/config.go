package appconfig

import (
	"os"
	"path/filepath"

	"github.com/goliatone/go-widgetlist/pkg/api"
	"github.com/goliatone/go-widgetlist/pkg/transport"
)

// Config is the top-level CLI configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	ListID        string        `mapstructure:"list_id" yaml:"list_id"`
	Backend       BackendConfig `mapstructure:"backend" yaml:"backend"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	Render        RenderConfig  `mapstructure:"render" yaml:"render"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EnvPrefix prefixes environment overrides, e.g. WIDGETLIST_BACKEND_URL.
const EnvPrefix = "WIDGETLIST"

// BackendConfig points at the widget backend.
type BackendConfig struct {
	URL            string `mapstructure:"url" yaml:"url"`
	APIBase        string `mapstructure:"api_base" yaml:"api_base"`
	CSRFToken      string `mapstructure:"csrf_token" yaml:"csrf_token"`
	CSRFHeader     string `mapstructure:"csrf_header" yaml:"csrf_header"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	BasePath  string `mapstructure:"base_path" yaml:"base_path"`
	RoutePath string `mapstructure:"route_path" yaml:"route_path"`
}

// Template engines accepted by render.template_engine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// RenderConfig controls controller rendering. Templates in TemplatesDir named
// list.tpl, item.tpl or form.tpl replace the built-in slot markup; globals are
// visible to every slot template.
type RenderConfig struct {
	Loader                 string         `mapstructure:"loader" yaml:"loader"`
	StrictKeys             bool           `mapstructure:"strict_keys" yaml:"strict_keys"`
	DisableWidgetFramework bool           `mapstructure:"disable_widget_framework" yaml:"disable_widget_framework"`
	TemplatesDir           string         `mapstructure:"templates_dir" yaml:"templates_dir"`
	TemplateEngine         string         `mapstructure:"template_engine" yaml:"template_engine"`
	TemplateGlobals        map[string]any `mapstructure:"template_globals" yaml:"template_globals,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Backend: BackendConfig{
			URL:            "http://localhost:8000",
			APIBase:        api.DefaultBase,
			CSRFHeader:     transport.DefaultCSRFHeader,
			TimeoutSeconds: 10,
		},
		HTTP: HTTPConfig{
			Addr:      ":8080",
			BasePath:  "",
			RoutePath: "/widgets",
		},
		Render: RenderConfig{
			Loader:         "<p>Loading</p>",
			TemplateEngine: EnginePongo2,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "widgetlist", "config.yaml"), nil
}
