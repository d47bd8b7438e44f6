package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/willfong/fund-playground/internal/models"
)

// LoadExternal reads an external statement from a CSV file. The first row
// is a header. Each following row is external_id, amount, type, reference.
func LoadExternal(path string, log zerolog.Logger) ([]models.ExternalTransaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ReadExternal(file, log)
}

// ReadExternal parses statement rows from r. Rows with fewer than four
// fields or an unparsable amount are skipped with a warning.
func ReadExternal(r io.Reader, log zerolog.Logger) ([]models.ExternalTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.ExternalTransaction{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	transactions := []models.ExternalTransaction{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < 4 {
			log.Warn().Int("line", line).Strs("record", record).Msg("skipping malformed statement row")
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			log.Warn().Int("line", line).Str("amount", record[1]).Err(err).Msg("skipping row with invalid amount")
			continue
		}

		transactions = append(transactions, models.ExternalTransaction{
			ExternalID: strings.TrimSpace(record[0]),
			Amount:     amount,
			Type:       strings.ToUpper(strings.TrimSpace(record[2])),
			Reference:  strings.TrimSpace(record[3]),
		})
	}
	return transactions, nil
}
