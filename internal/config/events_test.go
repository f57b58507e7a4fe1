package config

import (
	"strings"
	"testing"
)

func TestFormDateList(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantDates []string
	}{
		{
			name:      "One-off fires once",
			event:     Event{Name: "roof", Amount: -12000, StartDate: "2027-06", Frequency: 0},
			wantDates: []string{"2027-06"},
		},
		{
			name:      "Monthly over a quarter",
			event:     Event{Name: "special assessment", Amount: -200, StartDate: "2026-02", EndDate: "2026-04", Frequency: 1},
			wantDates: []string{"2026-02", "2026-03", "2026-04"},
		},
		{
			name:      "Semiannual includes an exact end hit",
			event:     Event{Name: "pest treatment", Amount: -150, StartDate: "2026-01", EndDate: "2027-01", Frequency: 6},
			wantDates: []string{"2026-01", "2026-07", "2027-01"},
		},
		{
			name:      "Steps past the end are dropped",
			event:     Event{Name: "gutter cleaning", Amount: -90, StartDate: "2026-01", EndDate: "2026-12", Frequency: 5},
			wantDates: []string{"2026-01", "2026-06", "2026-11"},
		},
		{
			name:      "Empty window inherits the analysis window",
			event:     Event{Name: "lawn service", Amount: -80, Frequency: 12},
			wantDates: []string{"2026-01", "2027-01", "2028-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			if err := event.FormDateList("2026-01", "2028-01"); err != nil {
				t.Fatalf("FormDateList() error = %v", err)
			}
			if len(event.DateList) != len(tt.wantDates) {
				t.Fatalf("len(DateList) = %d, expected %d (%v)", len(event.DateList), len(tt.wantDates), event.DateList)
			}
			for i, want := range tt.wantDates {
				if got := event.DateList[i].Format(DateTimeLayout); got != want {
					t.Errorf("DateList[%d] = %s, expected %s", i, got, want)
				}
			}
		})
	}
}

func TestFormDateListErrors(t *testing.T) {
	negative := Event{Name: "bad", Frequency: -1, StartDate: "2026-01"}
	if err := negative.FormDateList("2026-01", "2027-01"); err == nil {
		t.Error("expected error for negative frequency")
	}

	badStart := Event{Name: "bad", StartDate: "June 2026"}
	if err := badStart.FormDateList("2026-01", "2027-01"); err == nil {
		t.Error("expected error for unparseable start date")
	}

	badEnd := Event{Name: "bad", StartDate: "2026-01", EndDate: "soon"}
	if err := badEnd.FormDateList("2026-01", "2027-01"); err == nil {
		t.Error("expected error for unparseable end date")
	}
}

func TestExpandEventDates(t *testing.T) {
	deal := validDeal()
	deal.TimelineYears = 2
	deal.Events = []Event{
		{Name: "roof", Amount: -12000, StartDate: "2027-06"},
		{Name: "hoa special", Amount: -300, Frequency: 6},
	}

	if err := deal.ExpandEventDates(); err != nil {
		t.Fatalf("ExpandEventDates() error = %v", err)
	}

	if len(deal.Events[0].DateList) != 1 {
		t.Errorf("one-off DateList length = %d, expected 1", len(deal.Events[0].DateList))
	}

	// The open window defaulted to the analysis window, 2026-01 through 2028-01.
	if deal.Events[1].EndDate != "2028-01" {
		t.Errorf("EndDate = %q, expected 2028-01", deal.Events[1].EndDate)
	}
	if len(deal.Events[1].DateList) != 5 {
		t.Errorf("semiannual DateList length = %d, expected 5", len(deal.Events[1].DateList))
	}
}

func TestExpandEventDatesNamesBrokenEvent(t *testing.T) {
	deal := validDeal()
	deal.Events = []Event{{Name: "typo", StartDate: "not a date"}}

	err := deal.ExpandEventDates()
	if err == nil || !strings.Contains(err.Error(), "typo") {
		t.Errorf("expected error naming the event, got %v", err)
	}
}
