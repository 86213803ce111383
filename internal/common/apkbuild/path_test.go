package apkbuild

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRepository generates aports repository names
func genRepository() gopter.Gen {
	return gen.OneConstOf("main", "community", "testing", "unmaintained", "nonfree")
}

// genPackageName generates valid package names
func genPackageName() gopter.Gen {
	return gen.OneConstOf(
		"zlib", "busybox", "kate", "py3-requests", "perl-test-simple",
		"openssl", "gtk+3.0", "libc++", "font-noto-cjk", "rust",
	)
}

// **Property 1: APKBUILD path parsing round-trip**
func TestPropertyLocationRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("String() then ParsePath() returns equivalent Location", prop.ForAll(
		func(repo, pkg string) bool {
			original := &Location{Repository: repo, Package: pkg}
			parsed, err := ParsePath(original.String())
			if err != nil {
				t.Logf("ParsePath failed for %q: %v", original.String(), err)
				return false
			}
			return *parsed == *original
		},
		genRepository(),
		genPackageName(),
	))

	properties.TestingRun(t)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantRepo string
		wantPkg  string
		wantErr  bool
	}{
		{"main package", "main/zlib/APKBUILD", "main", "zlib", false},
		{"leading dot slash", "./community/kate/APKBUILD", "community", "kate", false},
		{"windows separators", `testing\foo\APKBUILD`, "testing", "foo", false},
		{"package name with dots", "community/gtk+3.0/APKBUILD", "community", "gtk+3.0", false},
		{"not an APKBUILD", "main/zlib/zlib.post-install", "", "", true},
		{"nested too deep", "main/zlib/sub/APKBUILD", "", "", true},
		{"too shallow", "main/APKBUILD", "", "", true},
		{"dotted repository", ".git/hooks/APKBUILD", "", "", true},
		{"hidden package dir", "main/.cache/APKBUILD", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParsePath(tt.path)
			if tt.wantErr {
				if err != ErrInvalidPath {
					t.Errorf("ParsePath(%q) error = %v, want ErrInvalidPath", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) unexpected error: %v", tt.path, err)
			}
			if loc.Repository != tt.wantRepo || loc.Package != tt.wantPkg {
				t.Errorf("ParsePath(%q) = %s, want %s/%s", tt.path, loc.LongName(), tt.wantRepo, tt.wantPkg)
			}
		})
	}
}
