package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/inodb/gtload/internal/alo"
	"github.com/inodb/gtload/internal/seqevent"
)

// Summary tallies a run for the end-of-run report.
type Summary struct {
	Records      int
	Outcomes     map[alo.Kind]int
	Events       map[seqevent.Kind]int
	RecordErrors int
	Notes        int
	Merges       int
	Splits       int
	Elapsed      time.Duration
}

// NewSummary creates an empty Summary.
func NewSummary() *Summary {
	return &Summary{
		Outcomes: make(map[alo.Kind]int),
		Events:   make(map[seqevent.Kind]int),
	}
}

// AddOutcome counts one reconciled record.
func (s *Summary) AddOutcome(o alo.Outcome) {
	s.Records++
	s.Outcomes[o.Kind]++
	s.Notes += len(o.Notes)
}

// AddRecordError counts one record skipped for a data-quality error.
func (s *Summary) AddRecordError() {
	s.Records++
	s.RecordErrors++
}

// AddMergeSplit counts the detected merge and split events.
func (s *Summary) AddMergeSplit(events []seqevent.MergeSplitEvent) {
	for _, ev := range events {
		if ev.Kind == seqevent.Split {
			s.Splits++
		} else {
			s.Merges++
		}
	}
}

// Skipped is the number of records not written to the store.
func (s *Summary) Skipped() int {
	return s.Records - s.Outcomes[alo.Created] - s.Outcomes[alo.Updated]
}

// WriteSummary writes the run report. Colors are used when colored is true.
func (s *Summary) WriteSummary(w io.Writer, colored bool) error {
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{good, warn, bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	paint := func(c *color.Color, n int) string {
		if n == 0 {
			return "0"
		}
		return c.Sprint(n)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nLoad Summary:\n")
	fmt.Fprintf(tw, "  Records:\t%d\n", s.Records)
	fmt.Fprintf(tw, "  Created:\t%s\n", paint(good, s.Outcomes[alo.Created]))
	fmt.Fprintf(tw, "  Updated:\t%s\n", paint(good, s.Outcomes[alo.Updated]))
	fmt.Fprintf(tw, "  Skipped:\t%d\n", s.Outcomes[alo.Skipped])
	fmt.Fprintf(tw, "  Repeats:\t%s\n", paint(warn, s.Outcomes[alo.Repeat]))
	fmt.Fprintf(tw, "  Conflicts:\t%s\n", paint(bad, s.Outcomes[alo.Conflict]))
	fmt.Fprintf(tw, "  Record errors:\t%s\n", paint(bad, s.RecordErrors))
	fmt.Fprintf(tw, "  Discrepancy notes:\t%s\n", paint(warn, s.Notes))
	fmt.Fprintf(tw, "  Sequence events:\tADD %d, UPDATE %d, ALREADY_ADDED %d, DUMMY %d, NON_EVENT %d\n",
		s.Events[seqevent.Add], s.Events[seqevent.Update], s.Events[seqevent.AlreadyAdded],
		s.Events[seqevent.Dummy], s.Events[seqevent.NonEvent])
	fmt.Fprintf(tw, "  Merges/splits:\t%d/%d\n", s.Merges, s.Splits)
	if s.Elapsed > 0 {
		fmt.Fprintf(tw, "  Elapsed:\t%s\n", s.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}
