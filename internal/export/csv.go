package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
)

// CSV renders submissions as RFC 4180 text. Columns are the keys of the first
// submission, in order; later submissions contribute one row each with
// missing keys left empty. No submissions yields "".
func CSV(subs []application.Submission) (string, error) {
	if len(subs) == 0 {
		return "", nil
	}
	headers := subs[0].Keys()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(headers))
	for i, s := range subs {
		for j, h := range headers {
			row[j] = s.Text(h)
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
