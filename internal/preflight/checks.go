package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"qslgen/internal/adif"
	"qslgen/internal/config"
	"qslgen/internal/deps"
	"qslgen/internal/fieldmap"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or when
// its nearest existing ancestor is writable, so the directory can be created.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckADIF verifies the input file is readable and reports its record count.
func CheckADIF(path string) Result {
	const name = "ADIF input"
	file, err := os.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer file.Close()

	doc, err := adif.Read(file)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(doc.Records) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no records)", path)}
	}
	detail := fmt.Sprintf("%s (%d records", path, len(doc.Records))
	if len(doc.Skipped) > 0 {
		detail += fmt.Sprintf(", %d malformed fields", len(doc.Skipped))
	}
	return Result{Name: name, Passed: true, Detail: detail + ")"}
}

// CheckTemplate verifies the template is readable and lists its placeholders.
func CheckTemplate(path string) Result {
	const name = "SVG template"
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	fields := fieldmap.Placeholders(string(data))
	if len(fields) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (no placeholders)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, strings.Join(fields, ", "))}
}

// CheckSystemDeps evaluates the external binaries required by the config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	var requirements []deps.Requirement
	if cfg.Raster.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "Converter",
			Command:     cfg.Raster.Binary,
			Description: "Required to rasterize SVG cards",
		})
	}
	return deps.CheckBinaries(requirements)
}

// CheckEmail verifies the delivery settings are complete.
func CheckEmail(cfg config.Email) Result {
	const name = "Email delivery"
	if strings.TrimSpace(cfg.FromAddress) == "" {
		return Result{Name: name, Detail: "missing from_address"}
	}
	if strings.TrimSpace(cfg.Region) == "" {
		return Result{Name: name, Detail: "missing region"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("SES %s as %s", cfg.Region, cfg.FromAddress)}
}

// CheckStorage verifies the archive settings are complete.
func CheckStorage(cfg config.Storage) Result {
	const name = "Card archive"
	if strings.TrimSpace(cfg.Bucket) == "" {
		return Result{Name: name, Detail: "missing bucket"}
	}
	target := "s3://" + cfg.Bucket
	if cfg.Prefix != "" {
		target += "/" + strings.Trim(cfg.Prefix, "/")
	}
	if cfg.Endpoint != "" {
		target += " via " + cfg.Endpoint
	}
	return Result{Name: name, Passed: true, Detail: target}
}
