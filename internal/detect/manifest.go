package detect

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFormat tells how to pull dependency names out of a manifest file.
// It is resolved once per file name by FormatFor.
type ManifestFormat int

const (
	FormatUnknown ManifestFormat = iota
	FormatPackageJSON
	FormatComposerJSON
	FormatRequirements
	FormatPyproject
	FormatPipfile
	FormatGemfile
	FormatMaven
	FormatGradle
)

var formatNames = map[ManifestFormat]string{
	FormatUnknown:      "unknown",
	FormatPackageJSON:  "package.json",
	FormatComposerJSON: "composer.json",
	FormatRequirements: "requirements",
	FormatPyproject:    "pyproject",
	FormatPipfile:      "pipfile",
	FormatGemfile:      "gemfile",
	FormatMaven:        "maven",
	FormatGradle:       "gradle",
}

func (f ManifestFormat) String() string {
	return formatNames[f]
}

// FormatFor maps a manifest path to its format by base name.
func FormatFor(p string) ManifestFormat {
	base := path.Base(p)
	switch {
	case base == "package.json":
		return FormatPackageJSON
	case base == "composer.json":
		return FormatComposerJSON
	case base == "pyproject.toml":
		return FormatPyproject
	case base == "Pipfile":
		return FormatPipfile
	case base == "Gemfile":
		return FormatGemfile
	case base == "pom.xml":
		return FormatMaven
	case base == "build.gradle" || base == "build.gradle.kts":
		return FormatGradle
	case strings.HasSuffix(base, ".txt") && strings.Contains(base, "requirements"):
		return FormatRequirements
	default:
		return FormatUnknown
	}
}

// DefaultManifests are probed in this order.
var DefaultManifests = []string{
	"package.json",
	"composer.json",
	"requirements.txt",
	"requirements-dev.txt",
	"dev-requirements.txt",
	"pyproject.toml",
	"Pipfile",
	"Gemfile",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
}

// Dependencies extracts declared dependency names from content.
func (f ManifestFormat) Dependencies(content string) ([]string, error) {
	switch f {
	case FormatPackageJSON:
		return jsonSections(content, "dependencies", "devDependencies", "peerDependencies", "optionalDependencies")
	case FormatComposerJSON:
		return jsonSections(content, "require", "require-dev")
	case FormatRequirements:
		return requirementNames(content), nil
	case FormatPyproject:
		return pyprojectNames(content)
	case FormatPipfile:
		return pipfileNames(content)
	case FormatGemfile:
		return submatches(gemPattern, content, 1), nil
	case FormatMaven:
		return append(submatches(mavenGroupPattern, content, 1), submatches(mavenArtifactPattern, content, 1)...), nil
	case FormatGradle:
		return gradleNames(content), nil
	default:
		return nil, fmt.Errorf("no dependency extractor for format %s", f)
	}
}

func jsonSections(content string, sections ...string) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse json manifest: %w", err)
	}
	var names []string
	for _, s := range sections {
		raw, ok := doc[s]
		if !ok {
			continue
		}
		var deps map[string]json.RawMessage
		if err := json.Unmarshal(raw, &deps); err != nil {
			// e.g. "dependencies": [] in malformed manifests
			continue
		}
		for name := range deps {
			names = append(names, name)
		}
	}
	return names, nil
}

// requirementNames keeps the name prefix of each requirement line.
func requirementNames(content string) []string {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func requirementName(req string) string {
	if i := strings.IndexAny(req, "=<>!~[;@ \t#,"); i >= 0 {
		req = req[:i]
	}
	return strings.TrimSpace(req)
}

func pyprojectNames(content string) ([]string, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse pyproject.toml: %w", err)
	}
	var names []string

	if project, ok := doc["project"].(map[string]interface{}); ok {
		names = append(names, pep508List(project["dependencies"])...)
		if optional, ok := project["optional-dependencies"].(map[string]interface{}); ok {
			for _, group := range optional {
				names = append(names, pep508List(group)...)
			}
		}
	}

	tool, _ := doc["tool"].(map[string]interface{})
	poetry, _ := tool["poetry"].(map[string]interface{})
	names = append(names, tableKeys(poetry["dependencies"])...)
	names = append(names, tableKeys(poetry["dev-dependencies"])...)
	if groups, ok := poetry["group"].(map[string]interface{}); ok {
		for _, g := range groups {
			if gt, ok := g.(map[string]interface{}); ok {
				names = append(names, tableKeys(gt["dependencies"])...)
			}
		}
	}
	return names, nil
}

func pipfileNames(content string) ([]string, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse Pipfile: %w", err)
	}
	return append(tableKeys(doc["packages"]), tableKeys(doc["dev-packages"])...), nil
}

func pep508List(v interface{}) []string {
	items, _ := v.([]interface{})
	var names []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			if name := requirementName(strings.TrimSpace(s)); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func tableKeys(v interface{}) []string {
	table, _ := v.(map[string]interface{})
	names := make([]string, 0, len(table))
	for k := range table {
		if k != "python" {
			names = append(names, k)
		}
	}
	return names
}

var (
	gemPattern           = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"]`)
	mavenGroupPattern    = regexp.MustCompile(`<groupId>\s*([^<\s]+)\s*</groupId>`)
	mavenArtifactPattern = regexp.MustCompile(`<artifactId>\s*([^<\s]+)\s*</artifactId>`)
	gradlePattern        = regexp.MustCompile(`['"]([\w.\-]+):([\w.\-]+)(?::[^'"]*)?['"]`)
)

func submatches(re *regexp.Regexp, content string, group int) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		out = append(out, m[group])
	}
	return out
}

// gradleNames returns "group:artifact" coordinates plus each half on its own.
func gradleNames(content string) []string {
	var out []string
	for _, m := range gradlePattern.FindAllStringSubmatch(content, -1) {
		out = append(out, m[1]+":"+m[2], m[1], m[2])
	}
	return out
}
