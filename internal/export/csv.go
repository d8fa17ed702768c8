package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

func ToCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.User, r.Date, strconv.Itoa(r.Position), r.Text, strconv.FormatBool(r.Completed)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
