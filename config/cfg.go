package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"storyexp/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	MarginsConfig struct {
		Top    float64 `yaml:"top" validate:"gte=0,lte=100"`
		Bottom float64 `yaml:"bottom" validate:"gte=0,lte=100"`
		Left   float64 `yaml:"left" validate:"gte=0,lte=100"`
		Right  float64 `yaml:"right" validate:"gte=0,lte=100"`
	}

	PDFConfig struct {
		PageSize    common.PageSize    `yaml:"page_size" validate:"gte=0"`
		Orientation common.Orientation `yaml:"orientation" validate:"gte=0"`
		TitlePage   bool               `yaml:"title_page"`
		Margins     MarginsConfig      `yaml:"margins"`
		DPI         int                `yaml:"dpi" validate:"min=72,max=600"`
		JPEGQuality int                `yaml:"jpeq_quality_level" validate:"min=40,max=100"`
		DividerPath string             `yaml:"divider_path" sanitize:"assure_file_access"`
	}

	DocumentConfig struct {
		Language              string    `yaml:"language" validate:"required,bcp47_language_tag"`
		FixZip                bool      `yaml:"fix_zip"`
		StylesheetPath        string    `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string    `yaml:"output_name_template"`
		FileNameTransliterate bool      `yaml:"file_name_transliterate"`
		PDF                   PDFConfig `yaml:"pdf"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
