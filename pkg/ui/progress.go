package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	ruleWidth     = 20
	barWidth      = 20
)

// BatchProgress prints one line per batch:
//
//	____________________	Tweets: 40-60 [12.50%] ██░░░░░░░░░░░░░░░░░░	____________________
type BatchProgress struct {
	out       io.Writer
	startTime time.Time
	batches   int
	mu        sync.Mutex
}

// NewBatchProgress creates a progress printer writing to out
func NewBatchProgress(out io.Writer) *BatchProgress {
	if out == nil {
		out = Output
	}
	return &BatchProgress{out: out, startTime: time.Now()}
}

// BatchStarted prints the batch range and how far through the input it is
func (p *BatchProgress) BatchStarted(start, end, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.batches++
	percentage := 0.0
	if total > 0 {
		percentage = float64(start) / float64(total) * 100
	}

	rule := strings.Repeat("_", ruleWidth)
	fmt.Fprintf(p.out, "%s\tTweets: %d-%d [%.2f%%] %s\t%s\n",
		rule, start, end, percentage, Bar(percentage), rule)
}

// Batches returns how many batches were reported
func (p *BatchProgress) Batches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}

// Elapsed returns the time since the printer was created
func (p *BatchProgress) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// Bar renders a percentage as a fixed-width bar
func Bar(percentage float64) string {
	filled := int(percentage / 100 * barWidth)
	filled = max(0, min(filled, barWidth))
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
}

// Summary holds the figures printed at the end of a run
type Summary struct {
	Title    string
	Lines    [][2]string
	Duration time.Duration
}

// PrintSummary prints a run summary
func PrintSummary(out io.Writer, s Summary) {
	if out == nil {
		out = Output
	}
	fmt.Fprintf(out, "\n%s\n", Green(s.Title))
	for _, line := range s.Lines {
		fmt.Fprintf(out, "  %s: %s\n", Cyan(line[0]), Yellow(line[1]))
	}
	if s.Duration > 0 {
		fmt.Fprintf(out, "  %s: %s\n", Cyan("Duration"), Yellow(s.Duration.Round(time.Second).String()))
	}
}
