// Package maven resolves Maven coordinates: POM and JAR retrieval with
// repository fallback, and direct dependency extraction from a single POM
// document.
package maven

import (
	"fmt"
	"strings"
)

// MavenCentral is the default repository.
const MavenCentral = "https://repo.maven.apache.org/maven2/"

// Coordinate identifies one artifact revision as groupId:artifactId:version.
// The repository list may be replaced before resolution begins; resolvers
// only read it.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string

	repos []string
}

// NewCoordinate builds a coordinate with the default repository list.
func NewCoordinate(groupID, artifactID, version string) Coordinate {
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Version:    version,
		repos:      []string{MavenCentral},
	}
}

// FromString parses a "groupId:artifactId:version" coordinate.
func FromString(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinate{}, fmt.Errorf("malformed coordinate %q: want groupId:artifactId:version", s)
	}
	return NewCoordinate(parts[0], parts[1], parts[2]), nil
}

// SetRepos replaces the candidate repository list. Call before resolution;
// the default is Maven Central.
func (c *Coordinate) SetRepos(repos []string) {
	if len(repos) == 0 {
		return
	}
	c.repos = repos
}

// Repos returns the candidate repository base URLs in fallback order.
func (c Coordinate) Repos() []string {
	return c.repos
}

// Product returns "groupId:artifactId".
func (c Coordinate) Product() string {
	return c.GroupID + ":" + c.ArtifactID
}

// String returns "groupId:artifactId:version".
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

func (c Coordinate) baseURL(repo string) string {
	if repo != "" && !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	return repo + strings.ReplaceAll(c.GroupID, ".", "/") + "/" + c.ArtifactID + "/" + c.Version
}

// PomURL returns the POM location relative to one repository.
func (c Coordinate) PomURL(repo string) string {
	return c.baseURL(repo) + "/" + c.ArtifactID + "-" + c.Version + ".pom"
}

// JarURL returns the JAR location relative to one repository.
func (c Coordinate) JarURL(repo string) string {
	return c.baseURL(repo) + "/" + c.ArtifactID + "-" + c.Version + ".jar"
}
