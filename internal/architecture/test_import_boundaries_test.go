package architecture_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Unit tests follow the same direction as production code, except that
// they may use the shared test doubles. Integration-tagged files are exempt.
func TestTestImportBoundaries(t *testing.T) {
	files, err := collectGoFiles(internalRootDir())
	require.NoError(t, err)

	violations := make([]string, 0)
	for _, file := range files {
		if !isTestFile(file) || shouldSkipGeneratedFile(file) || hasIntegrationBuildTag(file) {
			continue
		}

		sourcePkg := packageImportPath(file)
		rule, ok := findRule(sourcePkg)
		if !ok {
			continue
		}

		for _, importPath := range parseImports(t, file) {
			if !strings.HasPrefix(importPath, modulePath+"/") || importPath == modulePath+"/internal/testutil" {
				continue
			}
			if matchingForbiddenPrefix(sourcePkg, importPath, rule.forbidden) == "" {
				continue
			}
			violations = append(violations,
				"governance: test "+sourcePkg+" imports "+importPath+" via "+relToRepoRoot(file)+"; allowed direction: "+rule.hint,
			)
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("%s", strings.Join(violations, "\n"))
	}
}
