package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/fetch"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"

	// DefaultTag is the criteria run when none is given: the whole theme 10.
	DefaultTag = "10.*"

	// DefaultTimeout is the timeout of each HTTP request, the page and
	// every linked stylesheet alike.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultBatchSize is the number of targets scanned concurrently.
	DefaultBatchSize = 4

	// DefaultFetchConcurrency is the number of stylesheets of one page
	// fetched concurrently.
	DefaultFetchConcurrency = dom.DefaultFetchConcurrency

	// DefaultUserAgent identifies a11yscan in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the size of a page or stylesheet.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize
)

// Config holds all configuration options of a scan.
// It is populated from CLI flags and the configuration file, then passed
// down explicitly; there is no global configuration.
type Config struct {
	// Targets are the documents to scan: file paths or http(s) URLs.
	Targets []string

	// Tag is the criteria tag to run, e.g. "10.5" or "10.*".
	Tag string

	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// BatchSize is the number of targets scanned concurrently.
	BatchSize int

	// FetchConcurrency is the number of stylesheets of one page fetched
	// concurrently. Zero uses DefaultFetchConcurrency.
	FetchConcurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum size in bytes of a fetched resource.
	// Zero uses DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// NoLog disables the console output of the criteria.
	NoLog bool

	// NoLogSet records whether --no-log was given explicitly, so that an
	// explicit false reaches the criteria as such.
	NoLogSet bool

	// NoReturn drops the criteria result from the scan report.
	NoReturn bool

	// CriteriaHelp prints the help of the criteria instead of running it.
	CriteriaHelp bool

	// NoColor disables colours in the console output.
	NoColor bool

	// JSONReport writes the scan reports as JSON. Exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes the scan reports as Markdown. Exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the file the reports are written to, stdout when empty.
	ReportFile string

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// SiteConfigs holds the per-host settings read from the configuration file.
	SiteConfigs *File

	// SaveToDB stores every scan report in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a Config with the default values.
func NewConfig() *Config {
	return &Config{
		Tag:              DefaultTag,
		Timeout:          DefaultTimeout,
		BatchSize:        DefaultBatchSize,
		FetchConcurrency: DefaultFetchConcurrency,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		SaveToDB:         true,
		DBDir:            XDGDataDir(),
		SiteConfigs:      NewFile(),
	}
}

// XDGDataDir returns the XDG data directory of a11yscan, where the history
// database lives. On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// Help requests need no target.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 && !c.CriteriaHelp {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.FetchConcurrency < 0 {
		return ErrInvalidFetchConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// SiteFor returns the settings applying to target, merged with the defaults.
func (c *Config) SiteFor(target string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(HostOf(target))
}
