package classify

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
)

// readmeHeadLines is how much of a README is read for library/app phrasing.
const readmeHeadLines = 10

var libraryNamePatterns = compileGlobs(
	"awesome-*",
	"awesome",
	"*-template",
	"*-templates",
	"*-boilerplate",
	"*-starter",
	"*-starter-kit",
	"*-sdk",
	"*-cli",
	"*-util",
	"*-utils",
	"*-lib",
	"*-library",
	"*-plugin",
	"*-components",
	"*-hooks",
	"*-loader",
	"*-polyfill",
	"eslint-config-*",
	"eslint-plugin-*",
	"babel-plugin-*",
	"vite-plugin-*",
	"webpack-plugin-*",
	"gatsby-plugin-*",
	"*.js",
)

var appPhrases = phrases(
	"dashboard",
	"marketplace",
	"todo app",
	"to do app",
	"e-commerce",
	"ecommerce",
	"online store",
	"web app",
	"webapp",
	"web application",
	"portfolio",
	"admin panel",
	"booking system",
	"social network",
	"blog platform",
	"landing page",
	"chat app",
)

var (
	readmeLibraryPhrases = phrases(
		"npm install --save",
		"npm i --save",
		"yarn add",
		"pnpm add",
		"pip install",
		"composer require",
		"gem install",
		"go get",
		"a library",
		"this library",
		"this package",
		"component library",
		"ui library",
		"sdk for",
		"plugin for",
		"wrapper for",
		"bindings for",
		"api client",
	)
	readmeAppPhrases = phrases(
		"live demo",
		"live site",
		"deployed at",
		"visit the site",
		"visit the website",
		"this app",
		"this application",
		"this website",
		"web app",
		"web application",
		"screenshots",
	)
)

var libraryTopics = map[string]bool{
	"library":           true,
	"sdk":               true,
	"framework":         true,
	"npm-package":       true,
	"npm":               true,
	"package":           true,
	"plugin":            true,
	"component-library": true,
	"ui-components":     true,
	"ui-library":        true,
	"react-components":  true,
	"vue-components":    true,
	"web-components":    true,
	"design-system":     true,
	"cli":               true,
	"command-line-tool": true,
	"api-client":        true,
	"wrapper":           true,
	"boilerplate":       true,
	"template":          true,
	"starter-kit":       true,
	"eslint-plugin":     true,
	"babel-plugin":      true,
	"webpack-plugin":    true,
	"vite-plugin":       true,
	"hooks":             true,
	"react-hooks":       true,
	"utility":           true,
	"utils":             true,
	"awesome":           true,
	"awesome-list":      true,
}

var libraryDescriptionPhrases = phrases(
	"component library for",
	"ui library for",
	"library for",
	"a library",
	"javascript library",
	"typescript library",
	"sdk for",
	"plugin for",
	"wrapper for",
	"bindings for",
	"client library",
	"npm package",
	"design system",
	"a curated list",
	"collection of components",
	"hooks for",
)

var nonWebPlatformPhrases = phrases(
	"android",
	"ios app",
	"iphone",
	"react native",
	"flutter",
	"xamarin",
	"swiftui",
	"mobile app",
	"mobile application",
	"desktop app",
	"desktop application",
	"electron",
	"tauri",
	"native app",
)

// LibraryRules returns the isLibrary cascade. The last rule always decides.
func LibraryRules() []Rule {
	return []Rule{
		static("library-name", func(in *Input) Verdict {
			return verdictIf(matchAny(libraryNamePatterns, in.name, in.fullName), Yes)
		}),
		static("app-phrase", func(in *Input) Verdict {
			return verdictIf(appPhrases.Any(in.text), No)
		}),
		{Name: "readme", Eval: readmeVerdict},
		static("library-topic", func(in *Input) Verdict {
			for _, t := range in.topics {
				if libraryTopics[t] {
					return Yes
				}
			}
			return Undecided
		}),
		static("library-description", func(in *Input) Verdict {
			return verdictIf(libraryDescriptionPhrases.Any(in.description), Yes)
		}),
		static("non-web-platform", func(in *Input) Verdict {
			return verdictIf(nonWebPlatformPhrases.Any(in.text), Yes)
		}),
		static("default", func(*Input) Verdict { return No }),
	}
}

// readmeVerdict reads the README head. No README means "application".
func readmeVerdict(ctx context.Context, in *Input) (Verdict, error) {
	if in.Probe == nil {
		return No, nil
	}
	content, found, err := in.Probe.Readme(ctx)
	if err != nil {
		return Undecided, err
	}
	if !found {
		return No, nil
	}
	head := normalize(headLines(content, readmeHeadLines))
	lib := readmeLibraryPhrases.Any(head)
	app := readmeAppPhrases.Any(head)
	switch {
	case lib && !app:
		return Yes, nil
	case app && !lib:
		return No, nil
	default:
		return Undecided, nil
	}
}

func headLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func compileGlobs(patterns ...string) []glob.Glob {
	out := make([]glob.Glob, len(patterns))
	for i, p := range patterns {
		out[i] = glob.MustCompile(p)
	}
	return out
}

func matchAny(globs []glob.Glob, values ...string) bool {
	for _, g := range globs {
		for _, v := range values {
			if g.Match(v) {
				return true
			}
		}
	}
	return false
}
