package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRaster(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.History.Enabled && c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateRaster() error {
	if !c.Raster.Enabled {
		return nil
	}
	if c.Raster.Binary == "" {
		return errors.New("raster.binary must be set when raster.enabled is true")
	}
	var hasInput, hasOutput bool
	for _, arg := range c.Raster.Args {
		hasInput = hasInput || strings.Contains(arg, "{input}")
		hasOutput = hasOutput || strings.Contains(arg, "{output}")
	}
	if !hasInput || !hasOutput {
		return errors.New("raster.args must reference both {input} and {output}")
	}
	return nil
}

func (c *Config) validateManifest() error {
	names := map[string]string{
		"manifest.no_email_file":   c.Manifest.NoEmailFile,
		"manifest.with_email_file": c.Manifest.WithEmailFile,
		"manifest.all_file":        c.Manifest.AllFile,
	}
	seen := make(map[string]string, len(names))
	for key, value := range names {
		folded := strings.ToLower(value)
		if other, ok := seen[folded]; ok {
			return fmt.Errorf("%s and %s must name different files", other, key)
		}
		seen[folded] = key
	}
	return nil
}

func (c *Config) validateEmail() error {
	if !c.Email.Enabled {
		return nil
	}
	if c.Email.FromAddress == "" {
		return errors.New("email.from_address must be set when email.enabled is true (or set QSLGEN_EMAIL_FROM)")
	}
	if !strings.Contains(c.Email.FromAddress, "@") {
		return fmt.Errorf("email.from_address %q is not an email address", c.Email.FromAddress)
	}
	if c.Email.Region == "" {
		return errors.New("email.region must be set when email.enabled is true (or set AWS_REGION)")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true (or set QSLGEN_S3_BUCKET)")
	}
	if c.Storage.Region == "" {
		return errors.New("storage.region must be set when storage.enabled is true (or set AWS_REGION)")
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return errors.New("storage.access_key and storage.secret_key must be set together")
	}
	return nil
}
