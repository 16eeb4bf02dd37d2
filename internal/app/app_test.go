package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskscope/internal/config"
	"diskscope/internal/domain"
)

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "big"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big", "x.bin"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 10), 0o644))
	return root
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(config.DefaultConfig(), nil)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestScanTable(t *testing.T) {
	root := fixture(t)
	out, err := execute(t, "", "scan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Largest entries:")
	assert.Contains(t, out, filepath.Join(root, "big")+string(os.PathSeparator))
	assert.Contains(t, out, filepath.Join(root, "big", "x.bin"))
	assert.Contains(t, out, "90.9%")
}

func TestScanJSON(t *testing.T) {
	root := fixture(t)
	out, err := execute(t, "", "scan", root, "--output", "json", "--min-size", "50B")
	require.NoError(t, err)

	var reports []scanReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	report := reports[0]
	assert.Equal(t, int64(110), report.Size)
	assert.Equal(t, int64(3), report.Items)
	require.Len(t, report.Children, 2)
	assert.Equal(t, filepath.Join(root, "big"), report.Children[0].Path)
	require.Len(t, report.Files, 1)
	assert.Equal(t, int64(100), report.Files[0].Size)
	assert.Nil(t, report.Tree)
}

func TestScanSeveralRoots(t *testing.T) {
	first, second := fixture(t), fixture(t)
	out, err := execute(t, "", "scan", first, second, "-o", "json", "--top", "1")
	require.NoError(t, err)

	var reports []scanReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0].Root)
	assert.Equal(t, second, reports[1].Root)
	assert.Len(t, reports[1].Children, 1)
}

func TestScanDepthAndExclude(t *testing.T) {
	root := fixture(t)
	out, err := execute(t, "", "scan", root, "-o", "json", "--max-depth", "0")
	require.NoError(t, err)
	var reports []scanReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Zero(t, reports[0].Size)
	assert.Empty(t, reports[0].Children)

	out, err = execute(t, "", "scan", root, "-o", "json", "--exclude", "*/big")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Equal(t, int64(10), reports[0].Size)
}

func TestScanRejectsBadFlags(t *testing.T) {
	root := fixture(t)
	_, err := execute(t, "", "scan", root, "--output", "xml")
	assert.ErrorContains(t, err, "invalid output format")

	_, err = execute(t, "", "scan", root, "--min-size", "lots")
	assert.ErrorContains(t, err, "invalid min-size")
}

func TestBuildReportLimits(t *testing.T) {
	tree := &domain.FileSystemNode{Path: "/r", Kind: domain.NodeDir, Size: 6, Children: []*domain.FileSystemNode{
		{Path: "/r/c", Kind: domain.NodeFile, Size: 3},
		{Path: "/r/b", Kind: domain.NodeFile, Size: 2},
		{Path: "/r/a", Kind: domain.NodeFile, Size: 1},
	}}
	report := buildReport(tree, 2, 0)
	assert.Len(t, report.Children, 2)
	require.Len(t, report.Files, 2)
	assert.Equal(t, "/r/c", report.Files[0].Path)

	report = buildReport(tree, 0, 0)
	assert.Empty(t, report.Children)
	assert.Empty(t, report.Files)
}

func TestAssessJSON(t *testing.T) {
	out, err := execute(t, "", "assess", `C:\Windows\System32\kernel32.dll`, `C:\random\folder\data.bin`, "-o", "json")
	require.NoError(t, err)

	var reports []assessmentReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, domain.SafetyDanger, reports[0].Assessment.SafetyLevel)
	assert.Equal(t, domain.SafetyCaution, reports[1].Assessment.SafetyLevel)
}

func TestAssessTable(t *testing.T) {
	out, err := execute(t, "", "assess", `C:\random\folder\data.bin`)
	require.NoError(t, err)
	assert.Contains(t, out, "CAUTION")
	assert.Contains(t, out, "10%")
}

func TestDeletePermanent(t *testing.T) {
	root := fixture(t)
	target := filepath.Join(root, "a.txt")

	out, err := execute(t, "", "delete", target, "--permanent", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Permanently delete 1 file(s)")
	assert.Contains(t, out, "Deleted 1 item(s)")
	assert.NoFileExists(t, target)
}

func TestDeleteAbortedAtPrompt(t *testing.T) {
	root := fixture(t)
	target := filepath.Join(root, "big")

	out, err := execute(t, "n\n", "delete", target, "--permanent")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.DirExists(t, target)
}

func TestDeleteReportsFailures(t *testing.T) {
	root := fixture(t)
	valid := filepath.Join(root, "a.txt")
	missing := filepath.Join(root, "missing")

	out, err := execute(t, "y\n", "delete", valid, missing, "--permanent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 path(s) could not be deleted")
	assert.Contains(t, out, "failed: "+missing)
	assert.NoFileExists(t, valid)
}

func TestDetailsJSON(t *testing.T) {
	root := fixture(t)
	out, err := execute(t, "", "details", filepath.Join(root, "a.txt"), "-o", "json")
	require.NoError(t, err)

	var details domain.FileDetails
	require.NoError(t, json.Unmarshal([]byte(out), &details))
	assert.Equal(t, int64(10), details.Size)
	assert.Equal(t, domain.NodeFile, details.Kind)
	assert.Equal(t, "txt", details.Extension)
}

func TestDetailsMissingPath(t *testing.T) {
	_, err := execute(t, "", "details", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "", "assess", "/tmp", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}
