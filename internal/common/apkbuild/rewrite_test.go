package apkbuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSetPkgver(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		newVer      string
		want        string
		wantOld     string
		wantChanged bool
	}{
		{
			name:        "bare assignment",
			input:       "pkgname=zlib\npkgver=1.3\npkgrel=2\n",
			newVer:      "1.3.1",
			want:        "pkgname=zlib\npkgver=1.3.1\npkgrel=0\n",
			wantOld:     "1.3",
			wantChanged: true,
		},
		{
			name:        "quotes and comments preserved",
			input:       "pkgver=\"1.0\" # upstream\npkgrel='4' # rebuild\n",
			newVer:      "1.1",
			want:        "pkgver=\"1.1\" # upstream\npkgrel='0' # rebuild\n",
			wantOld:     "1.0",
			wantChanged: true,
		},
		{
			name:        "underscore and indented assignments untouched",
			input:       "_pkgver=1.0\npkgver=1.0\npkgrel=1\n\nbuild() {\n\tpkgver=1.0\n\tpkgrel=7\n}\n",
			newVer:      "2.0",
			want:        "_pkgver=1.0\npkgver=2.0\npkgrel=0\n\nbuild() {\n\tpkgver=1.0\n\tpkgrel=7\n}\n",
			wantOld:     "1.0",
			wantChanged: true,
		},
		{
			name:        "missing trailing newline kept",
			input:       "pkgrel=5\npkgver=0.9",
			newVer:      "1.0",
			want:        "pkgrel=0\npkgver=1.0",
			wantOld:     "0.9",
			wantChanged: true,
		},
		{
			name:        "crlf preserved",
			input:       "pkgver=1\r\npkgrel=1\r\n",
			newVer:      "2",
			want:        "pkgver=2\r\npkgrel=0\r\n",
			wantOld:     "1",
			wantChanged: true,
		},
		{
			name:        "no pkgrel line",
			input:       "pkgver=1\n",
			newVer:      "2",
			want:        "pkgver=2\n",
			wantOld:     "1",
			wantChanged: true,
		},
		{
			name:        "assignment inside multi-line value untouched",
			input:       "pkgver=1\npkgrel=3\nsource=\"\npkgver=1\n\"\n",
			newVer:      "2",
			want:        "pkgver=2\npkgrel=0\nsource=\"\npkgver=1\n\"\n",
			wantOld:     "1",
			wantChanged: true,
		},
		{
			name:        "same version leaves pkgrel alone",
			input:       "pkgver=1.3\npkgrel=2\n",
			newVer:      "1.3",
			want:        "pkgver=1.3\npkgrel=2\n",
			wantOld:     "1.3",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, oldVer, changed, err := SetPkgver([]byte(tt.input), tt.newVer)
			if err != nil {
				t.Fatalf("SetPkgver: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			if oldVer != tt.wantOld {
				t.Errorf("oldVer = %q, want %q", oldVer, tt.wantOld)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestSetPkgverErrors(t *testing.T) {
	if _, _, _, err := SetPkgver([]byte("pkgname=foo\n"), "1.0"); err != ErrPkgverNotFound {
		t.Errorf("expected ErrPkgverNotFound, got %v", err)
	}
	if _, _, _, err := SetPkgver([]byte("pkgver=1\n"), ""); err != ErrEmptyVersion {
		t.Errorf("expected ErrEmptyVersion, got %v", err)
	}
}

// **Property 2: SetPkgver touches only the pkgver and pkgrel lines**
func TestPropertySetPkgverPreservesOtherLines(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genLine := gen.OneConstOf(
		"pkgdesc=\"Some package\"",
		"# comment",
		"",
		"\tmake DESTDIR=\"$pkgdir\" install",
		"_commit=abc123",
		"arch=\"all\"",
	)

	properties.Property("other lines are byte-identical and parse sees the new version", prop.ForAll(
		func(before, after []string, ver string) bool {
			input := strings.Join(before, "\n") + "\npkgver=0.0.1\npkgrel=9\n" + strings.Join(after, "\n") + "\n"

			out, _, changed, err := SetPkgver([]byte(input), ver)
			if err != nil || !changed {
				return false
			}

			inLines := strings.Split(input, "\n")
			outLines := strings.Split(string(out), "\n")
			if len(inLines) != len(outLines) {
				return false
			}
			for i := range inLines {
				if strings.HasPrefix(inLines[i], "pkgver=") || strings.HasPrefix(inLines[i], "pkgrel=") {
					continue
				}
				if inLines[i] != outLines[i] {
					return false
				}
			}

			a, err := Parse(strings.NewReader(string(out)))
			return err == nil && a.Pkgver == ver && a.Pkgrel == "0"
		},
		gen.SliceOf(genLine),
		gen.SliceOf(genLine),
		gen.OneConstOf("1.0", "2.31.0", "1.0_rc1", "24.02.1", "3.12.4_p2"),
	))

	properties.TestingRun(t)
}

func TestUpdateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("pkgver=1.0\npkgrel=3\n"), 0640); err != nil {
		t.Fatal(err)
	}

	oldVer, changed, err := UpdateFile(path, "1.1")
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	if oldVer != "1.0" || !changed {
		t.Errorf("UpdateFile = (%q, %v)", oldVer, changed)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "pkgver=1.1\npkgrel=0\n" {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}

	// No temp files left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the APKBUILD in %s, found %d entries", dir, len(entries))
	}

	// Second run is a no-op
	if _, changed, err := UpdateFile(path, "1.1"); err != nil || changed {
		t.Errorf("second UpdateFile = (%v, %v)", changed, err)
	}

	if _, _, err := UpdateFile(filepath.Join(dir, "missing"), "1.1"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetPkgverAgreesWithParse(t *testing.T) {
	input := "pkgname=foo\npkgver=1.0\npkgrel=3\n\npackage() {\n\tcat > x <<EOF\npkgver=9.9\npkgrel=8\nEOF\n}\n"

	a, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, oldVer, _, err := SetPkgver([]byte(input), "2.0")
	if err != nil {
		t.Fatalf("SetPkgver: %v", err)
	}
	if a.Pkgver != oldVer {
		t.Errorf("Parse pkgver = %q, SetPkgver replaced %q", a.Pkgver, oldVer)
	}
	if a.Version() != "1.0-r3" {
		t.Errorf("Version() = %q, want 1.0-r3", a.Version())
	}
}
