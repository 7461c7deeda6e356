package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastenhq/javacg/internal/callgraph"
	"github.com/fastenhq/javacg/internal/maven"
	"github.com/fastenhq/javacg/internal/pipeline"
	"github.com/fastenhq/javacg/internal/uri"
)

type analyzeFunc func(ctx context.Context, classpath string) (*callgraph.RawGraph, error)

func (f analyzeFunc) Analyze(ctx context.Context, classpath string) (*callgraph.RawGraph, error) {
	return f(ctx, classpath)
}

func rawGraph() *callgraph.RawGraph {
	sig := func(typeName, name string) uri.MethodURI {
		return uri.MethodURI{Namespace: "name.space", TypeName: typeName, Method: name, Return: uri.Primitive(uri.Void)}
	}
	return &callgraph.RawGraph{
		Nodes: []callgraph.Node{
			{Signature: sig("Source", "source"), Internal: true},
			{Signature: sig("Source", "target"), Internal: true},
		},
		Edges: []callgraph.Edge{{Caller: 0, Callee: 1, Kind: callgraph.KindVirtual}},
	}
}

// repoServer serves a minimal POM and JAR for the demo artifact only.
func repoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/demo/") {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".pom") {
			w.Write([]byte("<project></project>"))
			return
		}
		w.Write([]byte("PK\x03\x04"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testWorker(t *testing.T, graph *callgraph.RawGraph, outputDir string) *Worker {
	t.Helper()
	srv := repoServer(t)
	builder := pipeline.NewBuilder(maven.NewResolver(), analyzeFunc(func(ctx context.Context, classpath string) (*callgraph.RawGraph, error) {
		return graph, nil
	}))
	return New(Config{
		Builder:   builder,
		Repos:     []string{srv.URL + "/"},
		OutputDir: outputDir,
	})
}

func TestNew_GeneratesWorkerID(t *testing.T) {
	w := New(Config{})
	assert.True(t, strings.HasPrefix(w.Name(), "maven-"), "worker ID %q should carry the maven prefix", w.Name())
	assert.NotEqual(t, w.Name(), New(Config{}).Name())
}

func TestNew_KeepsExplicitWorkerID(t *testing.T) {
	w := New(Config{WorkerID: "maven-fixed"})
	assert.Equal(t, "maven-fixed", w.Name())
}

func TestArtifactDir(t *testing.T) {
	w := New(Config{OutputDir: "/data"})

	assert.Equal(t, filepath.Join("/data", "mvn", "s", "slf4j-api"), w.artifactDir("slf4j-api"))
	assert.Equal(t, filepath.Join("/data", "mvn", "d", "demo"), w.artifactDir("demo"))
	assert.Equal(t, filepath.Join("/data", "mvn", "a", "a"), w.artifactDir("a"))
}

func TestProcessRecord_WritesShardedOutput(t *testing.T) {
	dir := t.TempDir()
	w := testWorker(t, rawGraph(), dir)

	w.ProcessRecord(context.Background(), pipeline.Record{
		GroupID:    "com.example",
		ArtifactID: "demo",
		Version:    "1.0.0",
		Date:       1574072773,
	})

	assert.FileExists(t, filepath.Join(dir, "mvn", "d", "demo", "demo_com.example_1.0.0.json"))
}

func TestProcessRecord_EmptyGraphSkipsOutput(t *testing.T) {
	dir := t.TempDir()
	w := testWorker(t, &callgraph.RawGraph{}, dir)

	w.ProcessRecord(context.Background(), pipeline.Record{
		GroupID:    "com.example",
		ArtifactID: "demo",
		Version:    "1.0.0",
	})

	assert.NoFileExists(t, filepath.Join(dir, "mvn", "d", "demo", "demo_com.example_1.0.0.json"))
}

func TestProcessRecord_UnresolvableCoordinate(t *testing.T) {
	dir := t.TempDir()
	w := testWorker(t, rawGraph(), dir)

	// Must not panic with a nil store and must write nothing
	w.ProcessRecord(context.Background(), pipeline.Record{
		GroupID:    "org.gone",
		ArtifactID: "missing",
		Version:    "0.1.0",
	})

	assert.NoFileExists(t, filepath.Join(dir, "mvn", "m", "missing", "missing_org.gone_0.1.0.json"))
}

func TestRun_RequiresNATS(t *testing.T) {
	w := New(Config{})

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}
