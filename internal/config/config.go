package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	PDF      PDFConfig      `yaml:"pdf" mapstructure:"pdf"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the dataset files on disk.
type DataConfig struct {
	InputPath    string `yaml:"input_path" mapstructure:"input_path"`
	OutputPath   string `yaml:"output_path" mapstructure:"output_path"`
	PDFDir       string `yaml:"pdf_dir" mapstructure:"pdf_dir"`
	ManifestPath string `yaml:"manifest_path" mapstructure:"manifest_path"`
	SitePath     string `yaml:"site_path" mapstructure:"site_path"`
}

// FetchConfig configures the GOV.UK clients.
type FetchConfig struct {
	ContentAPI     string `yaml:"content_api" mapstructure:"content_api"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	ContentDelayMS int    `yaml:"content_delay_ms" mapstructure:"content_delay_ms"`
	PDFDelayMS     int    `yaml:"pdf_delay_ms" mapstructure:"pdf_delay_ms"`
}

// Timeout returns the request timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// RetryDelay returns the base backoff as a duration.
func (f FetchConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelaySecs) * time.Second
}

// ContentDelay returns the per-request courtesy delay for the content API.
func (f FetchConfig) ContentDelay() time.Duration {
	return time.Duration(f.ContentDelayMS) * time.Millisecond
}

// PDFDelay returns the per-request courtesy delay for attachment downloads.
func (f FetchConfig) PDFDelay() time.Duration {
	return time.Duration(f.PDFDelayMS) * time.Millisecond
}

// PipelineConfig configures the enrichment orchestrator.
type PipelineConfig struct {
	Concurrency   int `yaml:"concurrency" mapstructure:"concurrency"`
	SaveEveryText int `yaml:"save_every_text" mapstructure:"save_every_text"`
	SaveEveryPDF  int `yaml:"save_every_pdf" mapstructure:"save_every_pdf"`
	LogEveryText  int `yaml:"log_every_text" mapstructure:"log_every_text"`
	LogEveryPDF   int `yaml:"log_every_pdf" mapstructure:"log_every_pdf"`
}

// PDFConfig configures attachment text extraction.
type PDFConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	OCRThreshold  int    `yaml:"ocr_threshold" mapstructure:"ocr_threshold"`
}

// ServerConfig configures the read-only dataset API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIBUNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.input_path", "data/tribunal_decisions.json")
	v.SetDefault("data.output_path", "data/tribunal_decisions_full.json")
	v.SetDefault("data.pdf_dir", "data/pdfs")
	v.SetDefault("data.manifest_path", "data/pdf_manifest.json")
	v.SetDefault("data.site_path", "docs/data/decisions.json")
	v.SetDefault("fetch.content_api", "https://www.gov.uk/api/content")
	v.SetDefault("fetch.user_agent", "GrantleyGardens-TribunalResearch/1.0 (legal research)")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_delay_secs", 2)
	v.SetDefault("fetch.content_delay_ms", 150)
	v.SetDefault("fetch.pdf_delay_ms", 250)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.save_every_text", 100)
	v.SetDefault("pipeline.save_every_pdf", 25)
	v.SetDefault("pipeline.log_every_text", 25)
	v.SetDefault("pipeline.log_every_pdf", 10)
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("pdf.ocr_threshold", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
