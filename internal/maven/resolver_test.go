package maven

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastenhq/javacg/internal/callgraph"
)

const pomWithProperties = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>demo</artifactId>
  <version>1.0.0</version>
  <properties>
    <javaVersion>1.8</javaVersion>
    <junit.version>4.12</junit.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.apache.commons</groupId>
      <artifactId>commons-lang3</artifactId>
      <version>${javaVersion}</version>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>1.7.29</version>
    </dependency>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
    </dependency>
  </dependencies>
</project>`

const pomWithProfiles = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <dependencies>
    <dependency>
      <groupId>g0</groupId>
      <artifactId>a0</artifactId>
      <version>0.1</version>
    </dependency>
  </dependencies>
  <profiles>
    <profile>
      <id>one</id>
      <dependencies>
        <dependency>
          <groupId>g1</groupId>
          <artifactId>a1</artifactId>
          <version>1.1</version>
        </dependency>
      </dependencies>
    </profile>
    <profile>
      <id>empty</id>
    </profile>
    <profile>
      <id>two</id>
      <dependencies>
        <dependency>
          <groupId>g2</groupId>
          <artifactId>a2</artifactId>
          <version>2.2</version>
        </dependency>
      </dependencies>
    </profile>
  </profiles>
</project>`

// pomServer serves the given POM for every .pom request.
func pomServer(t *testing.T, pom string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".pom") {
			w.Write([]byte(pom))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testCoordinate(repos ...string) Coordinate {
	coord := NewCoordinate("com.example", "demo", "1.0.0")
	coord.SetRepos(repos)
	return coord
}

func TestDependencies_PropertySubstitution(t *testing.T) {
	srv := pomServer(t, pomWithProperties)
	resolver := NewResolver()

	depset, err := resolver.Dependencies(context.Background(), testCoordinate(srv.URL+"/"))
	require.NoError(t, err)
	require.Len(t, depset, 1)
	require.Len(t, depset[0], 3)

	assert.Equal(t, callgraph.Dependency{
		Forge:       "mvn",
		Product:     "org.apache.commons:commons-lang3",
		Constraints: []callgraph.Constraint{{LowerBound: "1.8", UpperBound: "1.8"}},
	}, depset[0][0])

	assert.Equal(t, "org.slf4j:slf4j-api", depset[0][1].Product)
	assert.Equal(t, callgraph.Exact("1.7.29"), depset[0][1].Constraints[0])

	// No version element resolves to the wildcard sentinel.
	assert.Equal(t, callgraph.Exact("*"), depset[0][2].Constraints[0])
}

func TestDependencies_ProfilesContributeInOrder(t *testing.T) {
	srv := pomServer(t, pomWithProfiles)
	resolver := NewResolver()

	depset, err := resolver.Dependencies(context.Background(), testCoordinate(srv.URL+"/"))
	require.NoError(t, err)

	// Root block, then the two non-empty profiles; the empty profile is
	// omitted entirely.
	require.Len(t, depset, 3)
	assert.Equal(t, "g0:a0", depset[0][0].Product)
	assert.Equal(t, "g1:a1", depset[1][0].Product)
	assert.Equal(t, "g2:a2", depset[2][0].Product)
}

func TestDependencies_UnknownPropertyYieldsEmptyVersion(t *testing.T) {
	pom := strings.Replace(pomWithProperties, "${javaVersion}", "${no.such.property}", 1)
	srv := pomServer(t, pom)
	resolver := NewResolver()

	depset, err := resolver.Dependencies(context.Background(), testCoordinate(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, callgraph.Exact(""), depset[0][0].Constraints[0])
}

func TestDependencies_MalformedPom(t *testing.T) {
	srv := pomServer(t, "<project><dependencies>")
	resolver := NewResolver()

	_, err := resolver.Dependencies(context.Background(), testCoordinate(srv.URL+"/"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDownloadPom_FallsBackAcrossRepos(t *testing.T) {
	missing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(missing.Close)
	serving := pomServer(t, pomWithProperties)

	resolver := NewResolver()
	body, err := resolver.DownloadPom(context.Background(),
		testCoordinate(missing.URL+"/", serving.URL+"/"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "<javaVersion>1.8</javaVersion>")
}

func TestDownloadPom_NotFoundInAnyRepo(t *testing.T) {
	missing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(missing.Close)

	resolver := NewResolver()
	_, err := resolver.DownloadPom(context.Background(),
		testCoordinate(missing.URL+"/", missing.URL+"/"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadPom_TransportErrorAbortsFallback(t *testing.T) {
	var secondTried bool
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondTried = true
	}))
	t.Cleanup(second.Close)

	resolver := NewResolver()
	_, err := resolver.DownloadPom(context.Background(),
		testCoordinate(failing.URL+"/", second.URL+"/"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.False(t, secondTried, "a non-404 failure must not try the remaining repositories")
}

func TestDownloadJar(t *testing.T) {
	content := []byte("PK\x03\x04 not really a jar")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".jar") {
			w.Write(content)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	resolver := NewResolver()
	path, err := resolver.DownloadJar(context.Background(), testCoordinate(srv.URL+"/"))
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownloadJar_NotFound(t *testing.T) {
	missing := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(missing.Close)

	resolver := NewResolver()
	_, err := resolver.DownloadJar(context.Background(), testCoordinate(missing.URL+"/"))
	assert.ErrorIs(t, err, ErrNotFound)
}
