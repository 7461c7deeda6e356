package maven

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	coord, err := FromString("org.slf4j:slf4j-api:1.7.29")
	require.NoError(t, err)

	assert.Equal(t, "org.slf4j", coord.GroupID)
	assert.Equal(t, "slf4j-api", coord.ArtifactID)
	assert.Equal(t, "1.7.29", coord.Version)
	assert.Equal(t, "org.slf4j:slf4j-api", coord.Product())
	assert.Equal(t, "org.slf4j:slf4j-api:1.7.29", coord.String())
	assert.Equal(t, []string{MavenCentral}, coord.Repos())
}

func TestFromString_Malformed(t *testing.T) {
	for _, input := range []string{"", "org.slf4j", "org.slf4j:slf4j-api", "a:b:c:d", "::1.0"} {
		t.Run(input, func(t *testing.T) {
			_, err := FromString(input)
			assert.Error(t, err)
		})
	}
}

func TestURLs(t *testing.T) {
	coord := NewCoordinate("org.slf4j", "slf4j-api", "1.7.29")

	assert.Equal(t,
		"https://repo.maven.apache.org/maven2/org/slf4j/slf4j-api/1.7.29/slf4j-api-1.7.29.pom",
		coord.PomURL(MavenCentral))
	assert.Equal(t,
		"https://repo.maven.apache.org/maven2/org/slf4j/slf4j-api/1.7.29/slf4j-api-1.7.29.jar",
		coord.JarURL(MavenCentral))

	// Missing trailing slash on the repository is tolerated.
	assert.Equal(t,
		"http://mirror.local/org/slf4j/slf4j-api/1.7.29/slf4j-api-1.7.29.pom",
		coord.PomURL("http://mirror.local"))
}

func TestSetRepos(t *testing.T) {
	coord := NewCoordinate("g", "a", "1.0")
	coord.SetRepos([]string{"http://one/", "http://two/"})
	assert.Equal(t, []string{"http://one/", "http://two/"}, coord.Repos())

	// An empty list keeps the previous repositories.
	coord.SetRepos(nil)
	assert.Equal(t, []string{"http://one/", "http://two/"}, coord.Repos())
}
