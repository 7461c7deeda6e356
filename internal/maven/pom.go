package maven

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/fastenhq/javacg/internal/callgraph"
)

type pomProject struct {
	XMLName      xml.Name        `xml:"project"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Profiles     []pomProfile    `xml:"profiles>profile"`
}

type pomProfile struct {
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	// Version is nil when the POM omits the element entirely.
	Version    *string `xml:"version"`
}

// pomProperties collects every child of the root <properties> block into a
// name/value table. Parent POM inheritance is out of scope.
type pomProperties struct {
	values map[string]string
}

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.values = make(map[string]string)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			p.values[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}

func parsePom(data []byte) (*pomProject, error) {
	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("unparseable POM: %w", err)
	}
	return &pom, nil
}

// resolveVersion applies the single-document version policy: a missing
// element is the wildcard, a ${property} reference substitutes from the
// property table (a miss leaves the version empty rather than failing), and
// anything else is taken literally.
func resolveVersion(version *string, properties map[string]string) string {
	if version == nil {
		return callgraph.WildcardVersion
	}
	v := strings.TrimSpace(*version)
	if strings.HasPrefix(v, "${") {
		name := strings.TrimSuffix(v[2:], "}")
		return properties[name]
	}
	return v
}

func extractDependencies(deps []pomDependency, properties map[string]string) []callgraph.Dependency {
	var out []callgraph.Dependency
	for _, d := range deps {
		version := resolveVersion(d.Version, properties)
		out = append(out, callgraph.Dependency{
			Forge:       callgraph.Forge,
			Product:     d.GroupID + ":" + d.ArtifactID,
			Constraints: []callgraph.Constraint{callgraph.Exact(version)},
		})
	}
	return out
}

// dependencySet assembles the depset in resolution order: the root
// dependencies block first, then each profile that declares any. Blocks
// yielding no dependencies are omitted.
func (p *pomProject) dependencySet() callgraph.DependencySet {
	var set callgraph.DependencySet
	if deps := extractDependencies(p.Dependencies, p.Properties.values); len(deps) > 0 {
		set = append(set, deps)
	}
	for _, profile := range p.Profiles {
		if deps := extractDependencies(profile.Dependencies, p.Properties.values); len(deps) > 0 {
			set = append(set, deps)
		}
	}
	return set
}
