// Package doctor validates powermcp configuration and the engine runtime
// environment before the gateway starts serving.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/config"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a loaded configuration against the host environment.
type Doctor struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateStore(r)
	d.validateEngines(r)
	d.warnNoEngines(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateStore checks that the workspace store is usable.
func (d *Doctor) validateStore(r *Result) {
	dir := d.cfg.Store.Dir
	if dir == "" {
		d.addError(r, "store", "store.dir", "store.dir is required")
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.addError(r, "store", "store.dir", fmt.Sprintf("cannot create store directory: %v", err))
		return
	}

	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		d.addError(r, "store", "store.dir", fmt.Sprintf("store directory is not writable: %v", err))
		return
	}
	_ = os.Remove(probe)

	if dbDir := filepath.Dir(d.cfg.Store.DBPath); dbDir != "." {
		if _, err := os.Stat(dbDir); err != nil {
			d.addWarning(r, "store", "store.db_path",
				fmt.Sprintf("run-log directory %s does not exist yet", dbDir))
		}
	}
}

// validateEngines checks every enabled engine's bridge runtime.
func (d *Doctor) validateEngines(r *Result) {
	for name, ec := range d.cfg.Engines {
		if !ec.Enabled {
			continue
		}
		field := fmt.Sprintf("engines.%s", name)

		if ec.Bridge == nil {
			d.addError(r, "engines", field, "enabled engine has no bridge section")
			continue
		}

		if ec.Bridge.Entrypoint == "" {
			d.addError(r, "engines", field+".bridge.entrypoint", "entrypoint is required")
		} else if _, err := os.Stat(ec.Bridge.Entrypoint); err != nil {
			d.addError(r, "engines", field+".bridge.entrypoint",
				fmt.Sprintf("entrypoint not found: %s", ec.Bridge.Entrypoint))
		}

		if ec.Bridge.Interpreter != "" {
			if _, err := exec.LookPath(ec.Bridge.Interpreter); err != nil {
				d.addError(r, "engines", field+".bridge.interpreter",
					fmt.Sprintf("interpreter not found: %s", ec.Bridge.Interpreter))
			}
		}

		if ec.Bridge.Timeout < 0 {
			d.addError(r, "engines", field+".bridge.timeout", "timeout must not be negative")
		}
	}
}

func (d *Doctor) warnNoEngines(r *Result) {
	for _, ec := range d.cfg.Engines {
		if ec.Enabled {
			return
		}
	}
	d.addWarning(r, "engines", "engines", "no engines are enabled; the server will expose no tools")
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}
