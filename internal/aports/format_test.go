package aports

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aportsknife/aportsknife/internal/common/output"
)

func TestPrintSelection(t *testing.T) {
	output.NoColor()
	root := createTestTree(t)
	selected, err := Select(discover(t, root), WithPkgver("24.02.0"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	PrintSelection(&buf, selected, false)
	want := "community (2)\n  community/kate 24.02.0-r1\n  community/konsole 24.02.0-r0\n"
	if buf.String() != want {
		t.Errorf("PrintSelection =\n%s\nwant\n%s", buf.String(), want)
	}

	buf.Reset()
	PrintSelection(&buf, selected, true)
	want = filepath.Join(root, "community", "kate") + "\n" + filepath.Join(root, "community", "konsole") + "\n"
	if buf.String() != want {
		t.Errorf("PrintSelection paths =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintSummary(t *testing.T) {
	output.NoColor()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &BuildReport{
		StartedAt:  start,
		FinishedAt: start.Add(75 * time.Second),
		Packages: []BuildEntry{
			{Package: "main/zlib", Status: StatusBuilt},
			{Package: "main/openssl", Status: StatusFailed, Log: "/data/build/main/openssl"},
			{Package: "testing/foo", Status: StatusPending},
		},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Build summary (1m15s)",
		"[built] 1",
		"[failed] 1",
		"[pending] 1",
		"main/openssl /data/build/main/openssl",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[skipped]") {
		t.Error("statuses with no packages should be omitted")
	}
}
