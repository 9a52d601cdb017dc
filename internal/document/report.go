package document

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Diagnostic describes a unit that reconstruction skipped.
type Diagnostic struct {
	SourceFile string `json:"source_file"`
	RecordID   uint32 `json:"record_id"`
	Path       string `json:"path"`
	Reason     string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s record %d %q: %s", d.SourceFile, d.RecordID, d.Path, d.Reason)
}

// Report accumulates the non-fatal outcome of a reconstruction.
type Report struct {
	SourceFile  string       `json:"source_file"`
	Applied     int          `json:"applied"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewReport creates an empty report for one document.
func NewReport(sourceFile string) *Report {
	return &Report{SourceFile: sourceFile}
}

// Skip records that u was not applied and logs why.
func (r *Report) Skip(u TranslatedUnit, reason string) {
	d := Diagnostic{
		SourceFile: r.SourceFile,
		RecordID:   u.RecordID,
		Path:       u.Path,
		Reason:     reason,
	}
	r.Diagnostics = append(r.Diagnostics, d)

	log.Warn().
		Str("file", d.SourceFile).
		Uint32("record_id", d.RecordID).
		Str("path", d.Path).
		Str("reason", reason).
		Msg("Skipped translation unit")
}

// Skipped returns the number of units that were not applied.
func (r *Report) Skipped() int { return len(r.Diagnostics) }

// Clean reports whether every unit was applied.
func (r *Report) Clean() bool { return len(r.Diagnostics) == 0 }
