package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/scuc/core/mip"
	"github.com/kilianp07/scuc/core/model"
)

// ScheduleEntry is one unit-period of a solved commitment schedule.
type ScheduleEntry struct {
	Scenario     string  `json:"scenario"`
	Unit         string  `json:"unit"`
	Period       int     `json:"period"`
	Committed    bool    `json:"committed"`
	ProductionMW float64 `json:"production_mw"`
	ReserveMW    float64 `json:"reserve_mw"`
}

// WriteLP writes the model to w in CPLEX LP format.
func WriteLP(w io.Writer, m *mip.Model) error {
	return m.WriteLP(w)
}

// ExtractSchedule assembles the commitment schedule from solved variable
// values. The value function maps each variable to its solution value.
func ExtractSchedule(m *mip.Model, in *model.Instance, value func(*mip.Var) float64) []ScheduleEntry {
	var entries []ScheduleEntry
	for _, sc := range in.Scenarios {
		for _, u := range sc.Units {
			for t := 1; t <= in.Time; t++ {
				isOn := m.Var("is_on", mip.K(u.Name, t))
				above := m.Var("prod_above", mip.SK(sc.Name, u.Name, t))
				reserve := m.Var("reserve", mip.SK(sc.Name, u.Name, t))
				on := value(isOn) > 0.5
				prod := value(above)
				if on {
					prod += u.MinPower[t-1]
				}
				entries = append(entries, ScheduleEntry{
					Scenario:     sc.Name,
					Unit:         u.Name,
					Period:       t,
					Committed:    on,
					ProductionMW: prod,
					ReserveMW:    value(reserve),
				})
			}
		}
	}
	return entries
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, entries []ScheduleEntry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the schedule to w in CSV format.
func WriteCSV(w io.Writer, entries []ScheduleEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "unit", "period", "committed", "production_mw", "reserve_mw"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Scenario,
			e.Unit,
			strconv.Itoa(e.Period),
			strconv.FormatBool(e.Committed),
			strconv.FormatFloat(e.ProductionMW, 'f', -1, 64),
			strconv.FormatFloat(e.ReserveMW, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
