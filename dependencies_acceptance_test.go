package catalog_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestModuleDependencies_Present(t *testing.T) {
	for _, module := range []string{
		"github.com/prometheus/client_golang",
		"github.com/shopspring/decimal",
		"github.com/google/uuid",
		"github.com/joho/godotenv",
		"github.com/knadh/koanf/v2",
	} {
		t.Run(module, func(t *testing.T) {
			testModulePresence(t, module)
		})
	}
}

func TestMetrics_NoGlobalRegistry(t *testing.T) {
	t.Run("happy_repo_uses_private_registry", func(t *testing.T) {
		matches, err := findGlobalRegistryUsages(".")
		if err != nil {
			t.Fatalf("scan repository: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no default-registry metric registration, found in: %v", matches)
		}
	})

	t.Run("error_fixture_with_promauto_is_detected", func(t *testing.T) {
		fixture := `package metrics
var requests = promauto.NewCounter(prometheus.CounterOpts{Name: "requests_total"})`
		if !usesGlobalRegistry(fixture) {
			t.Fatal("expected global registration to be detected in fixture")
		}
	})
}

func testModulePresence(t *testing.T, module string) {
	t.Helper()

	t.Run("happy_present_in_real_go_mod", func(t *testing.T) {
		goMod, err := os.ReadFile("go.mod")
		if err != nil {
			t.Fatalf("read go.mod: %v", err)
		}
		if !moduleRequired(string(goMod), module) {
			t.Fatalf("expected module %q to be present in go.mod", module)
		}
	})

	t.Run("error_missing_module_in_fixture", func(t *testing.T) {
		fixture := `module example.com/demo

go 1.25.0

require (
	github.com/gin-gonic/gin v1.11.0
)`
		if moduleRequired(fixture, module) {
			t.Fatalf("expected fixture to not contain module %q", module)
		}
	})
}

func moduleRequired(goModContent, module string) bool {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(module) + `\s+v\S+`)
	return re.MatchString(goModContent)
}

func findGlobalRegistryUsages(root string) ([]string, error) {
	matches := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		if usesGlobalRegistry(string(b)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func usesGlobalRegistry(content string) bool {
	re := regexp.MustCompile(`\bpromauto\.New|\bprometheus\.(MustRegister|Register)\(|promhttp\.Handler\(\)`)
	return re.MatchString(content)
}
