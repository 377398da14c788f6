package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/episim/internal/experiment"
)

// WriteCSV writes one row per day: the day followed by the three
// compartments under the model's own labels.
func WriteCSV(w io.Writer, res *experiment.Result) error {
	cw := csv.NewWriter(w)

	header := []string{"day", res.Labels[0], res.Labels[1], res.Labels[2]}
	if err := cw.Write(header); err != nil {
		return err
	}

	tr := res.Trajectory
	for i, x := range tr.States {
		row := []string{strconv.FormatFloat(tr.Times[i], 'f', -1, 64)}
		for _, val := range x {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
