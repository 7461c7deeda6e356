package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastenhq/javacg/internal/maven"
)

const batchInput = `{"groupId":"com.example","artifactId":"demo","version":"1.0.0","date":1574072773}
not json at all

{"groupId":"org.gone","artifactId":"missing","version":"0.1.0","date":1574072774}
`

// batchServer resolves the demo artifact and 404s everything else.
func batchServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/demo/") {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".pom") {
			w.Write([]byte(testPom))
			return
		}
		w.Write([]byte("PK\x03\x04"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBatchRun(t *testing.T) {
	srv := batchServer(t)
	dir := t.TempDir()
	batch := &Batch{
		Builder:   NewBuilder(maven.NewResolver(), fixedAnalyzer(sampleRawGraph())),
		Repos:     []string{srv.URL + "/"},
		OutputDir: dir,
	}

	summary, err := batch.Run(context.Background(), strings.NewReader(batchInput))
	require.NoError(t, err)

	require.Len(t, summary.Succeeded, 1)
	assert.Equal(t, "com.example:demo:1.0.0", summary.Succeeded[0].Coordinate)
	assert.Equal(t, 2, summary.Succeeded[0].Calls)

	require.Len(t, summary.Failed, 2)
	assert.Equal(t, unknownCoordinate, summary.Failed[0].Coordinate)
	assert.Equal(t, FailureMalformedInput, summary.Failed[0].Kind)
	assert.Equal(t, "org.gone:missing:0.1.0", summary.Failed[1].Coordinate)
	assert.Equal(t, FailureNotFound, summary.Failed[1].Kind)

	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 33, summary.SuccessRate())
	assert.FileExists(t, dir+"/demo_com.example_1.0.0.json")
}

func TestBatchRun_FailureNeverWritesOutput(t *testing.T) {
	srv := batchServer(t)
	dir := t.TempDir()
	batch := &Batch{
		Builder:   NewBuilder(maven.NewResolver(), fixedAnalyzer(sampleRawGraph())),
		Repos:     []string{srv.URL + "/"},
		OutputDir: dir,
	}

	input := `{"groupId":"org.gone","artifactId":"missing","version":"0.1.0","date":0}` + "\n"
	summary, err := batch.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, summary.Succeeded)

	assert.NoFileExists(t, dir+"/missing_org.gone_0.1.0.json")
}

func TestSummaryPrint(t *testing.T) {
	s := newSummary()
	s.addSuccess("com.example:demo:1.0.0", 7)
	s.addFailure("org.gone:missing:0.1.0", FailureNotFound)
	s.addFailure("org.gone:missing:0.2.0", FailureNotFound)
	s.addFailure(unknownCoordinate, FailureMalformedInput)

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Number of calls: 7 COORDINATE: com.example:demo:1.0.0")
	assert.Contains(t, out, "org.gone:missing:0.1.0 ERROR: NotFound")
	assert.Contains(t, out, "Total number of analyzed coordinates: 4")
	assert.Contains(t, out, "Total number of successful: 1")
	assert.Contains(t, out, "Total number of failed: 3")
	assert.Contains(t, out, "Success rate: 25%")

	// Kinds are ordered by frequency.
	assert.Less(t, strings.Index(out, "[NotFound - 2]"), strings.Index(out, "[MalformedInput - 1]"))
}

func TestSummary_Empty(t *testing.T) {
	s := newSummary()
	assert.Equal(t, 0, s.Total())
	assert.Equal(t, 0, s.SuccessRate())
}
