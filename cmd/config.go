package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Static errors for configuration validation
var (
	ErrSourceARequired      = errors.New("first source is required")
	ErrSourceBRequired      = errors.New("second source is required")
	ErrOutputFormatInvalid  = errors.New("output format must be one of: text, json")
	ErrKeyEmpty             = errors.New("sort key column name must not be empty")
	ErrKeyDuplicate         = errors.New("duplicate sort key column")
	ErrS3RegionInvalid      = errors.New("S3 region contains invalid characters or is too long")
	ErrS3SecretKeyRequired  = errors.New("S3 secret key is required when an access key is set")
	ErrS3AccessKeyRequired  = errors.New("S3 access key is required when a secret key is set")
	ErrLogFormatInvalid     = errors.New("log format must be one of: text, logfmt, json")
	ErrExportPathInvalid    = errors.New("export path must end in .csv")
)

type Config struct {
	Debug      bool
	LogFormat  string
	NoCache    bool
	NoProgress bool

	SourceA string
	SourceB string
	Keys    []string

	OutputFormat string
	OutputFile   string
	ExportDiffs  string

	S3 S3Config
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

func isValidRegion(region string) bool {
	if region == "" || len(region) > 50 {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, region)
	return matched
}

func (c *Config) Validate() error {
	if c.SourceA == "" {
		return ErrSourceARequired
	}
	if c.SourceB == "" {
		return ErrSourceBRequired
	}

	switch c.LogFormat {
	case "", "text", "logfmt", "json":
	default:
		return fmt.Errorf("%w: '%s'", ErrLogFormatInvalid, c.LogFormat)
	}

	switch c.OutputFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: '%s'", ErrOutputFormatInvalid, c.OutputFormat)
	}

	seen := make(map[string]bool, len(c.Keys))
	for _, key := range c.Keys {
		if strings.TrimSpace(key) == "" {
			return ErrKeyEmpty
		}
		if seen[key] {
			return fmt.Errorf("%w: '%s'", ErrKeyDuplicate, key)
		}
		seen[key] = true
	}

	if c.S3.Region != "" && !isValidRegion(c.S3.Region) {
		return fmt.Errorf("%w: %s", ErrS3RegionInvalid, c.S3.Region)
	}
	if c.S3.AccessKey != "" && c.S3.SecretKey == "" {
		return ErrS3SecretKeyRequired
	}
	if c.S3.SecretKey != "" && c.S3.AccessKey == "" {
		return ErrS3AccessKeyRequired
	}

	if c.ExportDiffs != "" && !strings.HasSuffix(strings.ToLower(c.ExportDiffs), ".csv") {
		return fmt.Errorf("%w: '%s'", ErrExportPathInvalid, c.ExportDiffs)
	}

	return nil
}
