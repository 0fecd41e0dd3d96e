package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRaster()
	c.normalizeManifest()
	c.normalizeEmail()
	c.normalizeStorage()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InputFile) == "" {
		c.Paths.InputFile = defaultInputFile
	}
	if c.Paths.InputFile, err = expandPath(c.Paths.InputFile); err != nil {
		return fmt.Errorf("paths.input_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.TemplateFile) == "" {
		c.Paths.TemplateFile = defaultTemplateFile
	}
	if c.Paths.TemplateFile, err = expandPath(c.Paths.TemplateFile); err != nil {
		return fmt.Errorf("paths.template_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRaster() {
	c.Raster.Binary = strings.TrimSpace(c.Raster.Binary)
	if c.Raster.Binary == "" {
		c.Raster.Binary = defaultRasterBinary
	}
	if len(c.Raster.Args) == 0 {
		c.Raster.Args = DefaultRasterArgs()
	}
	c.Raster.Extension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Raster.Extension)), ".")
	if c.Raster.Extension == "" {
		c.Raster.Extension = defaultRasterExt
	}
	if c.Raster.TimeoutSeconds < 0 {
		c.Raster.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeManifest() {
	fallback := func(value *string, def string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = def
		}
	}
	fallback(&c.Manifest.NoEmailFile, defaultNoEmailFile)
	fallback(&c.Manifest.WithEmailFile, defaultWithEmailFile)
	fallback(&c.Manifest.AllFile, defaultAllFile)
	fallback(&c.Manifest.SummaryFile, defaultSummaryFile)
	fallback(&c.Manifest.XLSXFile, defaultXLSXFile)
}

func (c *Config) normalizeEmail() {
	c.Email.FromAddress = strings.TrimSpace(c.Email.FromAddress)
	if c.Email.FromAddress == "" {
		if value, ok := os.LookupEnv("QSLGEN_EMAIL_FROM"); ok {
			c.Email.FromAddress = strings.TrimSpace(value)
		}
	}
	c.Email.Region = strings.TrimSpace(c.Email.Region)
	if c.Email.Region == "" {
		c.Email.Region = envRegion()
	}
	c.Email.FromName = strings.TrimSpace(c.Email.FromName)
	if strings.TrimSpace(c.Email.Subject) == "" {
		c.Email.Subject = defaultEmailSubject
	}
	if strings.TrimSpace(c.Email.Body) == "" {
		c.Email.Body = defaultEmailBody
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	if c.Storage.Bucket == "" {
		if value, ok := os.LookupEnv("QSLGEN_S3_BUCKET"); ok {
			c.Storage.Bucket = strings.TrimSpace(value)
		}
	}
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = envRegion()
	}
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.AccessKey = strings.TrimSpace(c.Storage.AccessKey)
	c.Storage.SecretKey = strings.TrimSpace(c.Storage.SecretKey)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("QSLGEN_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File == "" {
		c.Logging.File = defaultLogFile
	}
}

func envRegion() string {
	for _, key := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
