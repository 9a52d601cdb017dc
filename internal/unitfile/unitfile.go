// Package unitfile reads and writes unit sets on disk.
package unitfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rpgm-translator/internal/document"

	"github.com/rs/zerolog/log"
)

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON without HTML escaping.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return WriteFileAtomic(path, buf.Bytes(), 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ReadExtracted loads a unit set written by the extract command.
func ReadExtracted(path string) ([]document.ExtractedUnit, error) {
	var units []document.ExtractedUnit
	if err := readJSON(path, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// ReadTranslated loads a unit set written by the translate command.
func ReadTranslated(path string) ([]document.TranslatedUnit, error) {
	var units []document.TranslatedUnit
	if err := readJSON(path, &units); err != nil {
		return nil, err
	}
	return units, nil
}

const tsvHeader = "source_file\trecord_id\tpath\tfield_type\torigin\toriginal_text\ttranslated_text\terror"

// ExportTSV writes translated units as a tab-separated review sheet.
func ExportTSV(path string, units []document.TranslatedUnit) error {
	var sb strings.Builder
	sb.WriteString(tsvHeader)
	sb.WriteByte('\n')

	for _, u := range units {
		fields := []string{
			u.SourceFile,
			strconv.FormatUint(uint64(u.RecordID), 10),
			u.Path,
			u.FieldType,
			u.Origin,
			escapeTSV(u.OriginalText),
			escapeTSV(u.TranslatedText),
			escapeTSV(u.Error),
		}
		sb.WriteString(strings.Join(fields, "\t"))
		sb.WriteByte('\n')
	}

	if err := WriteFileAtomic(path, []byte(sb.String()), 0o644); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("units", len(units)).Msg("Exported translations to TSV")
	return nil
}

// escapeTSV escapes backslashes, tabs and newlines. Backslashes come first
// because RPG Maker control codes contain them.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
