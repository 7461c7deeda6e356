// Package pipeline assembles revision call graphs: resolve the coordinate,
// fetch the JAR, run the external analyzer, translate, and hand back the
// completed document or a typed failure. Batch processing collects
// per-artifact outcomes without ever aborting the run.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/fastenhq/javacg/internal/analyzer"
	"github.com/fastenhq/javacg/internal/maven"
)

// FailureKind tags an artifact-level failure for tallying and reporting.
type FailureKind string

const (
	// FailureNotFound: POM or JAR absent from every configured repository.
	FailureNotFound FailureKind = "NotFound"
	// FailureMalformedInput: unparseable coordinate, batch line, or POM.
	FailureMalformedInput FailureKind = "MalformedInput"
	// FailureAnalysis: the external analyzer reported an unrecoverable
	// construction error.
	FailureAnalysis FailureKind = "AnalysisFailure"
	// FailureInternal: anything else (I/O, transport, filesystem).
	FailureInternal FailureKind = "Internal"
)

// Failure is the typed error returned for one artifact. The batch boundary
// records it and moves on; single-artifact callers surface it directly.
type Failure struct {
	Kind       FailureKind
	Coordinate string
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Coordinate, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failure(kind FailureKind, coordinate string, err error) *Failure {
	return &Failure{Kind: kind, Coordinate: coordinate, Err: err}
}

// Classify maps an error to its failure kind.
func Classify(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	if errors.Is(err, maven.ErrNotFound) {
		return FailureNotFound
	}
	var aerr *analyzer.Error
	if errors.As(err, &aerr) {
		return FailureAnalysis
	}
	return FailureInternal
}
