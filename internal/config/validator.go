package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// custom rules with the message reported for each
var ruleMessages = map[string]string{
	"yaml_file":           "{0} must point to a readable YAML file",
	"required_for_driver": "{0} is required for the {1} driver",
	"required_for_cache":  "{0} is required for the {1} cache backend",
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	// Report config keys as they are written in the YAML file
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("yaml_file", isYAMLFile); err != nil {
		return nil, nil, fmt.Errorf("failed to register yaml_file validation: %w", err)
	}
	validate.RegisterStructValidation(validateDatabase, DatabaseConfig{})
	validate.RegisterStructValidation(validateCache, CacheConfig{})

	for tag, message := range ruleMessages {
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, translateRule); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}

	return validate, trans, nil
}

func translateRule(ut ut.Translator, fe validator.FieldError) string {
	t, _ := ut.T(fe.Tag(), strings.TrimPrefix(fe.Namespace(), "Config."), fe.Param())
	return t
}

// isYAMLFile accepts a readable regular file with a .yml or .yaml extension.
func isYAMLFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
	default:
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// validateDatabase requires the connection fields of network drivers.
func validateDatabase(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(DatabaseConfig)
	if cfg.Driver != "mysql" && cfg.Driver != "postgres" {
		return
	}
	if cfg.Host == "" {
		sl.ReportError(cfg.Host, "host", "Host", "required_for_driver", cfg.Driver)
	}
	if cfg.Database == "" {
		sl.ReportError(cfg.Database, "database", "Database", "required_for_driver", cfg.Driver)
	}
}

func validateCache(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(CacheConfig)
	if cfg.Backend == "redis" && cfg.Redis.Addr == "" {
		sl.ReportError(cfg.Redis.Addr, "redis.addr", "Addr", "required_for_cache", cfg.Backend)
	}
}
