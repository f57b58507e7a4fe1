package config

import (
	"fmt"
	"time"
)

// Event indicates an ad-hoc dated cash flow: a roof replacement, a furnace,
// an insurance payout. Negative amounts are costs. Amounts land in their
// month's nominal flow as entered, with no inflation scaling.
type Event struct {
	Name      string
	Amount    float64
	StartDate string
	EndDate   string
	Frequency int // months between occurrences; 0 means a single occurrence
	DateList  []time.Time
}

// FormDateList expands the event's window into the concrete dates it fires
// on. An empty start falls back to the analysis start, an empty end to the
// analysis end; frequency 0 yields the start date only.
func (event *Event) FormDateList(analysisStart, analysisEnd string) error {
	if event.Frequency < 0 {
		return fmt.Errorf("frequency %d cannot be negative", event.Frequency)
	}

	startRaw := event.StartDate
	if startRaw == "" {
		startRaw = analysisStart
	}
	startDateT, err := time.Parse(DateTimeLayout, startRaw)
	if err != nil {
		return err
	}

	if event.EndDate == "" {
		event.EndDate = analysisEnd
	}
	endDateT, err := time.Parse(DateTimeLayout, event.EndDate)
	if err != nil {
		return err
	}

	// Identify all dates where the event takes place and aggregate them in
	// dateList.
	dateList := []time.Time{startDateT}
	if event.Frequency > 0 {
		for {
			nextDate := dateList[len(dateList)-1].AddDate(0, event.Frequency, 0)

			if nextDate.Equal(endDateT) {
				dateList = append(dateList, nextDate)
				break
			} else if nextDate.After(endDateT) {
				break
			} else {
				dateList = append(dateList, nextDate)
			}
		}
	}

	event.DateList = dateList
	return nil
}

// ExpandEventDates fills the DateList of every event from the deal's own
// analysis window. Called on resolved deals, after overrides are applied, so
// a scenario that moves the start or the horizon moves its events' windows
// with it.
func (d *Deal) ExpandEventDates() error {
	end := d.AnalysisEnd()
	for i := range d.Events {
		if err := d.Events[i].FormDateList(d.StartDate, end); err != nil {
			return fmt.Errorf("event %s: %w", d.Events[i].Name, err)
		}
	}
	return nil
}
