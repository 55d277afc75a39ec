package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigMissing means no config file was found and defaults were used.
	ErrConfigMissing = errors.New("configuration missing")
	// ErrConfigInvalid means the file exists but cannot be used.
	ErrConfigInvalid = errors.New("configuration invalid")
)

// InvalidError carries every problem found in a config file.
type InvalidError struct {
	Path     string
	Problems []string
	Err      error
}

func (e *InvalidError) Error() string {
	msg := fmt.Sprintf("config %s invalid", e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Problems) > 0 {
		msg += ":\n- " + strings.Join(e.Problems, "\n- ")
	}
	return msg
}

func (e *InvalidError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfigInvalid, e.Err}
	}
	return []error{ErrConfigInvalid}
}

// Loaded is the outcome of Load.
type Loaded struct {
	Config Config
	Path   string
	// Defaulted is set when the file was absent and DefaultSources were used.
	Defaulted  bool
	Validation Validation
}

// Load reads path (after .env files), applies defaults and env overrides,
// merges App.SourcesFile and validates. A missing file is not an error: the
// built-in default config is returned with Defaulted set. A file that cannot
// be parsed or fails validation yields an *InvalidError.
func Load(path string) (*Loaded, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, &InvalidError{Path: path, Err: err}
	}

	out := &Loaded{Path: path}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		out.Config = Default()
		out.Defaulted = true
	case err != nil:
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("read: %w", err)}
	default:
		var cfg Config
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, &InvalidError{Path: path, Err: fmt.Errorf("parse: %w", err)}
		}
		out.Config = cfg
	}

	applyEnvOverrides(&out.Config)
	SetDefaults(&out.Config)

	if f := out.Config.App.SourcesFile; f != "" {
		if err := OverlaySources(&out.Config, f); err != nil {
			return nil, &InvalidError{Path: f, Err: err}
		}
	}
	if !out.Defaulted && len(out.Config.Sources) == 0 {
		out.Config.Sources = DefaultSources()
		out.Validation.addWarn("no sources configured; using the built-in default list")
	}

	cfg, v := NormalizeAndValidate(out.Config)
	v.Warnings = append(out.Validation.Warnings, v.Warnings...)
	out.Config, out.Validation = cfg, v
	if !v.OK() {
		return nil, &InvalidError{Path: path, Problems: v.Errors}
	}
	return out, nil
}

// Path resolves the config location: explicit flag, then CONFIG_PATH, then
// config.yml inside dataDir.
func Path(flagValue, dataDir string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, "config.yml")
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are ignored; godotenv never overrides variables already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			applyEnvToStruct(field)
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		setFieldFromString(field, val)
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			field.SetFloat(f)
		}

	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			field.Set(reflect.ValueOf(out))
		}
	}
}
