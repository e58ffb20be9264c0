package main

import (
	"bytes"
	"encoding/json"
	"os"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperflow/pkg/layout"
	"paperflow/pkg/paper"
)

const samplePaper = "../../testdata/sample-paper.yaml"

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "paperflow version dev\n", out)
}

func TestUsageErrors(t *testing.T) {
	code, _, errOut := runCLI()
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Usage: paperflow")

	code, _, _ = runCLI("--no-such-flag", samplePaper)
	assert.Equal(t, 1, code)

	code, _, _ = runCLI("--layout", "triple", samplePaper)
	assert.Equal(t, 1, code)

	code, _, _ = runCLI("missing.yaml")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI("--format", "xml", samplePaper)
	assert.Equal(t, 1, code)
}

func TestHelp(t *testing.T) {
	code, _, errOut := runCLI("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "--column-height")
}

func TestJSONOutput(t *testing.T) {
	code, out, _ := runCLI("--format", "json", "--column-height", "600", samplePaper)
	require.Equal(t, 0, code)

	var res layout.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, paper.LayoutDouble, res.Layout)
	assert.Positive(t, res.PageCount())

	seen := map[string]bool{}
	for _, pl := range res.Placements() {
		assert.LessOrEqual(t, pl.Item.EstHeight, 600.0)
		if pl.Item.QuestionID != "" {
			seen[pl.Item.QuestionID] = true
		}
	}
	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		assert.True(t, seen[id], "question %s missing", id)
	}
}

func TestLayoutFlagWinsOverPaper(t *testing.T) {
	code, out, _ := runCLI("--format", "yaml", "--layout", "single", samplePaper)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "layout: single\n"), out)
}

func TestSummaryOutput(t *testing.T) {
	code, out, _ := runCLI(samplePaper)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "double layout, "), out)
	assert.Contains(t, out, "page 1 left")
	assert.Contains(t, out, string(layout.KindPassagePart))
	assert.Contains(t, out, string(layout.KindChoiceRange))
}

func TestConfigFileAndPNGs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "paperflow.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("page:\n  layout: single\n"), 0o644))

	pngDir := filepath.Join(dir, "png")
	code, out, _ := runCLI("-c", cfgPath, "--png-dir", pngDir, samplePaper)
	require.Equal(t, 0, code)

	// The paper asks for two columns and no --layout flag was given.
	assert.True(t, strings.HasPrefix(out, "double layout, "), out)

	files, err := filepath.Glob(filepath.Join(pngDir, "page-*.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestCompareWithReferences(t *testing.T) {
	refDir := t.TempDir()
	code, _, _ := runCLI("--png-dir", refDir, samplePaper)
	require.Equal(t, 0, code)

	code, _, _ = runCLI("--compare-dir", refDir, samplePaper)
	assert.Equal(t, 0, code, "unchanged layout matches its references")

	diffDir := t.TempDir()
	code, _, _ = runCLI("--compare-dir", refDir, "--png-dir", diffDir, "--chars-per-line", "8", samplePaper)
	assert.Equal(t, 1, code, "a different layout is reported")

	code, _, _ = runCLI("--compare-dir", refDir, "--png-dir", refDir, samplePaper)
	assert.Equal(t, 1, code)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigLayoutWhenPaperHasNone(t *testing.T) {
	dir := t.TempDir()
	paperPath := writeFile(t, dir, "paper.yaml", `id: bare
questionGroups:
  - id: g1
    subQuestions:
      - {id: q1, number: 1, type: short-answer, content: "<p>Name one.</p>"}
`)
	cfgPath := writeFile(t, dir, "paperflow.yaml", "page:\n  layout: single\n")

	code, out, _ := runCLI("-c", cfgPath, paperPath)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "single layout, "), out)

	code, out, _ = runCLI(paperPath)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "double layout, "), "default config is two columns: %s", out)
}

func TestRenumberFlag(t *testing.T) {
	code, out, _ := runCLI("--format", "json", "--renumber", "--instruction", "Read and answer.", samplePaper)
	require.Equal(t, 0, code)

	var res layout.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	first := res.Placements()[0].Item
	require.Equal(t, layout.KindPassagePart, first.Kind)
	assert.Equal(t, "[1-3] Read and answer.", first.Title)
}

func TestLongEssaySummary(t *testing.T) {
	var stem strings.Builder
	for i := 0; i < 10; i++ {
		stem.WriteString("<p>" + strings.Repeat("가", 200) + "</p>")
	}
	dir := t.TempDir()
	paperPath := writeFile(t, dir, "essay.yaml", fmt.Sprintf(`id: essay
layout: single
questionGroups:
  - id: g1
    subQuestions:
      - {id: q1, number: 1, type: essay, content: %q}
`, stem.String()))

	code, out, _ := runCLI("--column-height", "950", paperPath)
	require.Equal(t, 0, code)
	assert.Contains(t, out, string(layout.KindQuestionStemPart))
	assert.Regexp(t, `answer-area\s+q1 q1`, out)
	assert.NotContains(t, out, "forced")
	assert.NotContains(t, out, string(layout.KindQuestionRange))
}
