package reporting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/enricoisidori/threadscape/api/schemas"
)

// WriteRunJSON writes the complete run record, the contract renderers and
// the archive share.
func WriteRunJSON(w io.Writer, run *schemas.RunResult) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run %s: %w", run.RunID, err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing run %s: %w", run.RunID, err)
	}
	return nil
}
