package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/maven"
)

// Record is one line of the batch input document.
type Record struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Date       int64  `json:"date"`
}

// Coordinate converts the record to a Maven coordinate.
func (r Record) Coordinate() maven.Coordinate {
	return maven.NewCoordinate(r.GroupID, r.ArtifactID, r.Version)
}

// unknownCoordinate labels failures on lines that never parsed far enough
// to name an artifact.
const unknownCoordinate = "UNKNOWN COORDINATE"

// Outcome is the result of processing one artifact.
type Outcome struct {
	Coordinate string
	Calls      int
	Kind       FailureKind // empty on success
}

// Summary tallies a whole batch run.
type Summary struct {
	Succeeded   []Outcome
	Failed      []Outcome
	Occurrences map[FailureKind]int
}

func newSummary() *Summary {
	return &Summary{Occurrences: make(map[FailureKind]int)}
}

func (s *Summary) addSuccess(coordinate string, calls int) {
	s.Succeeded = append(s.Succeeded, Outcome{Coordinate: coordinate, Calls: calls})
}

func (s *Summary) addFailure(coordinate string, kind FailureKind) {
	s.Failed = append(s.Failed, Outcome{Coordinate: coordinate, Kind: kind})
	s.Occurrences[kind]++
}

// Total is the number of processed artifacts.
func (s *Summary) Total() int {
	return len(s.Succeeded) + len(s.Failed)
}

// SuccessRate is the percentage of successful artifacts, truncated.
func (s *Summary) SuccessRate() int {
	if s.Total() == 0 {
		return 0
	}
	return 100 * len(s.Succeeded) / s.Total()
}

// Print writes per-artifact outcome lines followed by the batch summary.
func (s *Summary) Print(w io.Writer) {
	for _, rec := range s.Succeeded {
		fmt.Fprintf(w, "Number of calls: %d COORDINATE: %s\n", rec.Calls, rec.Coordinate)
	}
	for _, rec := range s.Failed {
		fmt.Fprintf(w, "%s ERROR: %s\n", rec.Coordinate, rec.Kind)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "===================SUMMARY=================")
	fmt.Fprintf(w, "Total number of analyzed coordinates: %d\n", s.Total())
	fmt.Fprintf(w, "Total number of successful: %d\n", len(s.Succeeded))
	fmt.Fprintf(w, "Total number of failed: %d\n", len(s.Failed))
	fmt.Fprintln(w, "Most common failures:")

	kinds := make([]FailureKind, 0, len(s.Occurrences))
	for kind := range s.Occurrences {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if s.Occurrences[kinds[i]] != s.Occurrences[kinds[j]] {
			return s.Occurrences[kinds[i]] > s.Occurrences[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	for _, kind := range kinds {
		fmt.Fprintf(w, "\t[%s - %d]\n", kind, s.Occurrences[kind])
	}

	if s.Total() > 0 {
		fmt.Fprintf(w, "Success rate: %d%%\n", s.SuccessRate())
	}
}

// Batch processes coordinates strictly one at a time, in input order. One
// artifact's failure never aborts the run or touches another artifact's
// state.
type Batch struct {
	Builder *Builder

	// Repos overrides each coordinate's repository list when non-empty.
	Repos []string

	// OutputDir receives one JSON document per successful artifact. Empty
	// disables file output.
	OutputDir string
}

// Run consumes the JSON-lines input and returns the tally.
func (b *Batch) Run(ctx context.Context, input io.Reader) (*Summary, error) {
	summary := newSummary()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Error().Err(err).Msg("could not parse input coordinate")
			summary.addFailure(unknownCoordinate, FailureMalformedInput)
			continue
		}

		coord := rec.Coordinate()
		coord.SetRepos(b.Repos)
		b.processOne(ctx, coord, rec.Date, summary)
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read batch input: %w", err)
	}

	return summary, nil
}

func (b *Batch) processOne(ctx context.Context, coord maven.Coordinate, date int64, summary *Summary) {
	rcg, err := b.Builder.FromCoordinate(ctx, coord, date)
	if err != nil {
		log.Info().Err(err).Str("coordinate", coord.String()).Msg("failed to generate a call graph")
		summary.addFailure(coord.String(), Classify(err))
		return
	}

	calls := len(rcg.Graph.InternalCalls()) + len(rcg.Graph.ExternalCalls())
	summary.addSuccess(coord.String(), calls)
	log.Info().Str("coordinate", coord.String()).Int("calls", calls).Msg("call graph generated")

	if b.OutputDir != "" {
		if _, err := WriteRevision(rcg, b.OutputDir); err != nil {
			log.Error().Err(err).Str("coordinate", coord.String()).Msg("could not write call graph")
		}
	}
}
