package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders a header row plus records into CSV bytes. Every record must
// have the same width as the header.
func CSV(headers []string, records [][]string) ([]byte, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, record := range records {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv record width %d does not match header width %d", len(record), len(headers))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
