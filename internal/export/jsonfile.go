package export

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/deliberate/internal/record"
)

// #endregion

// #region json-exporter

// JSONFile writes the record as an indented JSON document. Its output
// doubles as a replay fixture.
type JSONFile struct {
	Path string
}

// Export implements record.Exporter.
func (j JSONFile) Export(_ context.Context, rec *record.ExperimentRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(j.Path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// #endregion

// #region multi

// Multi fans one record out to several exporters, returning the first error.
type Multi []record.Exporter

// Export implements record.Exporter.
func (m Multi) Export(ctx context.Context, rec *record.ExperimentRecord) error {
	for _, e := range m {
		if err := e.Export(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// #endregion
