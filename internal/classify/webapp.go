package classify

import (
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/thep200/a11y-miner/internal/detect"
)

var nonWebKeywords = phrases(
	"android",
	"ios app",
	"react native",
	"flutter",
	"xamarin",
	"swiftui",
	"mobile app",
	"desktop app",
	"desktop application",
	"electron app",
	"cli",
	"command line",
	"command-line",
	"terminal app",
	"tui",
	"game engine",
	"unity",
	"godot",
	"unreal engine",
	"firmware",
	"arduino",
	"embedded",
)

var webKeywords = phrases(
	"web app",
	"webapp",
	"web application",
	"web platform",
	"web portal",
	"single page application",
	"spa",
	"saas",
	"landing page",
	"e-commerce site",
	"online store",
	"admin panel",
	"frontend",
	"front end",
	"full stack",
	"fullstack",
)

// webLanguages are primary languages a web application is plausibly written in.
var webLanguages = map[string]bool{
	"javascript": true,
	"typescript": true,
	"html":       true,
	"css":        true,
	"scss":       true,
	"vue":        true,
	"svelte":     true,
	"astro":      true,
	"php":        true,
	"ruby":       true,
	"python":     true,
	"java":       true,
	"c#":         true,
	"go":         true,
	"elixir":     true,
}

// criticalFiles are probed in order. Manifests among them only count once
// their dependencies are checked.
var criticalFiles = []string{
	"index.html",
	"public/index.html",
	"next.config.js",
	"vite.config.js",
	"vite.config.ts",
	"angular.json",
	"nuxt.config.ts",
	"svelte.config.js",
	"manage.py",
	"artisan",
	"config/routes.rb",
	"package.json",
	"composer.json",
	"requirements.txt",
	"pyproject.toml",
	"Gemfile",
}

var webDependencies = map[string]bool{
	"react":                       true,
	"react-dom":                   true,
	"next":                        true,
	"vue":                         true,
	"nuxt":                        true,
	"@angular/core":               true,
	"svelte":                      true,
	"@sveltejs/kit":               true,
	"astro":                       true,
	"gatsby":                      true,
	"@remix-run/react":            true,
	"solid-js":                    true,
	"preact":                      true,
	"express":                     true,
	"koa":                         true,
	"fastify":                     true,
	"@nestjs/core":                true,
	"vite":                        true,
	"webpack":                     true,
	"parcel":                      true,
	"react-scripts":               true,
	"@vue/cli-service":            true,
	"django":                      true,
	"flask":                       true,
	"fastapi":                     true,
	"rails":                       true,
	"sinatra":                     true,
	"laravel/framework":           true,
	"symfony/framework-bundle":    true,
	"slim/slim":                   true,
	"spring-boot-starter-web":     true,
	"spring-boot-starter-webflux": true,
}

var webScripts = []string{"build", "start", "dev", "serve", "preview"}

var webDirNames = map[string]bool{
	"public":     true,
	"static":     true,
	"assets":     true,
	"pages":      true,
	"views":      true,
	"templates":  true,
	"components": true,
	"www":        true,
	"wwwroot":    true,
	"frontend":   true,
	"client":     true,
	"web":        true,
	"layouts":    true,
}

var webConfigFragments = []string{
	"webpack",
	"vite.config",
	"next.config",
	"nuxt.config",
	"tailwind.config",
	"postcss.config",
	"svelte.config",
	"astro.config",
	"gatsby-",
	"angular.json",
	"vercel.json",
	"netlify.toml",
	"firebase.json",
	".htaccess",
}

// WebAppRules returns the isWebApplication cascade. The last rule always decides.
func WebAppRules() []Rule {
	return []Rule{
		static("non-web-keyword", func(in *Input) Verdict {
			return verdictIf(nonWebKeywords.Any(in.text), No)
		}),
		static("web-keyword", func(in *Input) Verdict {
			return verdictIf(webKeywords.Any(in.text), Yes)
		}),
		static("language", func(in *Input) Verdict {
			lang := fold(in.Repo.Language)
			return verdictIf(lang != "" && !webLanguages[lang], No)
		}),
		{Name: "critical-file", Eval: criticalFileVerdict},
		{Name: "manifest", Eval: manifestVerdict},
		{Name: "structure", Eval: structureVerdict},
		static("language-fallback", func(in *Input) Verdict {
			if webLanguages[fold(in.Repo.Language)] {
				return Yes
			}
			return No
		}),
	}
}

func criticalFileVerdict(ctx context.Context, in *Input) (Verdict, error) {
	for _, f := range criticalFiles {
		_, found, err := in.file(ctx, f)
		if err != nil {
			return Undecided, err
		}
		// manifest: step tiếp theo sẽ xét dependencies
		if found && detect.FormatFor(f) == detect.FormatUnknown {
			return Yes, nil
		}
	}
	return Undecided, nil
}

// manifestVerdict re-reads the manifests from criticalFiles; the probe has
// them cached.
func manifestVerdict(ctx context.Context, in *Input) (Verdict, error) {
	for _, f := range criticalFiles {
		format := detect.FormatFor(f)
		if format == detect.FormatUnknown {
			continue
		}
		content, found, err := in.file(ctx, f)
		if err != nil {
			return Undecided, err
		}
		if !found {
			continue
		}
		if format == detect.FormatPackageJSON && countScripts(content) >= 2 {
			return Yes, nil
		}
		deps, err := format.Dependencies(content)
		if err != nil {
			continue
		}
		for _, d := range deps {
			if webDependencies[fold(d)] {
				return Yes, nil
			}
		}
	}
	return Undecided, nil
}

func countScripts(packageJSON string) int {
	var doc struct {
		Scripts map[string]json.RawMessage `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(packageJSON), &doc); err != nil {
		return 0
	}
	n := 0
	for _, s := range webScripts {
		if _, ok := doc.Scripts[s]; ok {
			n++
		}
	}
	return n
}

func structureVerdict(ctx context.Context, in *Input) (Verdict, error) {
	if in.Probe == nil {
		return Undecided, nil
	}
	entries, found, err := in.Probe.Dir(ctx, "")
	if err != nil || !found {
		return Undecided, err
	}
	for _, e := range entries {
		name := fold(path.Base(e.Name))
		if e.Type == "dir" && webDirNames[name] {
			return Yes, nil
		}
		for _, frag := range webConfigFragments {
			if strings.Contains(name, frag) {
				return Yes, nil
			}
		}
	}
	return Undecided, nil
}
