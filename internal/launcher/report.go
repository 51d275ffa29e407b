package launcher

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var reportHeaders = []string{"time", "index", "symbol", "mint", "outcome", "signature", "error"}

// WriteReport appends one row per attempt to a CSV file, writing the header when
// the file is new.
func WriteReport(filename string, at time.Time, attempts []Attempt) error {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open report")
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	stat, err := file.Stat()
	if err != nil {
		return errors.Wrap(err, "stat report")
	}
	if stat.Size() == 0 {
		if err := writer.Write(reportHeaders); err != nil {
			return err
		}
	}

	stamp := at.Format(time.RFC3339)
	batch := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		row := []string{stamp, strconv.Itoa(a.Index), a.Token.Symbol, a.Mint.String(), string(a.Outcome), "", ""}
		if a.Outcome == OutcomeCreated {
			row[5] = a.Signature.String()
		}
		if a.Err != nil {
			row[6] = a.Err.Error()
		}
		batch = append(batch, row)
	}
	if err := writer.WriteAll(batch); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}
