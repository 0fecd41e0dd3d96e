package preflight

import (
	"fmt"

	"qslgen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckADIF(cfg.Paths.InputFile),
		CheckTemplate(cfg.Paths.TemplateFile),
		CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir),
	}

	if cfg.History.Enabled {
		results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	}

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = fmt.Sprintf("%s (%s)", status.Command, status.Path)
		}
		results = append(results, result)
	}

	if cfg.Email.Enabled {
		results = append(results, CheckEmail(cfg.Email))
	}
	if cfg.Storage.Enabled {
		results = append(results, CheckStorage(cfg.Storage))
	}

	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, r := range results {
		if !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
