package dataset

import (
	"fmt"
	"time"
)

// Period is a half-open date interval [Start, End). Left-inclusive filtering
// is the convention for every interval filter in the pipeline: a sample
// exactly at End is excluded.
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodForYear returns [Jan 1 of year, Jan 1 of year+1) in UTC.
func PeriodForYear(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
