package aports

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiscover(t *testing.T) {
	root := createTestTree(t)

	repos, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	var repoNames []string
	for _, r := range repos {
		repoNames = append(repoNames, r.Name)
	}
	if diff := cmp.Diff([]string{"community", "main", "testing"}, repoNames); diff != "" {
		t.Errorf("repositories mismatch (-want +got):\n%s", diff)
	}

	want := []string{
		"community/kate", "community/konsole",
		"main/busybox", "main/openssl", "main/zlib",
		"testing/foo",
	}
	if diff := cmp.Diff(want, longNames(repos)); diff != "" {
		t.Errorf("packages mismatch (-want +got):\n%s", diff)
	}

	zlib := repos[1].Packages[2]
	if zlib.Dir != filepath.Join(root, "main", "zlib") {
		t.Errorf("Dir = %q", zlib.Dir)
	}
	if zlib.APKBUILD != filepath.Join(root, "main", "zlib", "APKBUILD") {
		t.Errorf("APKBUILD = %q", zlib.APKBUILD)
	}
	if repos[1].Path != filepath.Join(root, "main") {
		t.Errorf("Path = %q", repos[1].Path)
	}
}

func TestDiscoverNamed(t *testing.T) {
	root := createTestTree(t)

	repos, err := Discover(root, "testing", "main", "testing")
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(repos) != 2 || repos[0].Name != "main" || repos[1].Name != "testing" {
		t.Errorf("expected [main testing], got %v", longNames(repos))
	}

	for _, name := range []string{"scripts", "foo.bar", "unmaintained", ".git"} {
		_, err := Discover(root, name)
		var notFound *RepositoryNotFoundError
		if !errors.As(err, &notFound) || notFound.Name != name {
			t.Errorf("Discover(%q) error = %v, want RepositoryNotFoundError", name, err)
		}
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestExistingRepositories(t *testing.T) {
	root := createTestTree(t)

	got := ExistingRepositories(root, []string{"main", "unmaintained", "testing", "scripts"})
	if diff := cmp.Diff([]string{"main", "testing"}, got); diff != "" {
		t.Errorf("ExistingRepositories mismatch (-want +got):\n%s", diff)
	}
}

func TestPackageEquality(t *testing.T) {
	a := NewPackage("/aports", "main", "zlib")
	b := NewPackage("/aports", "main", "zlib")
	c := NewPackage("/aports", "community", "zlib")

	if !a.Equal(b) {
		t.Error("packages with the same APKBUILD should be equal")
	}
	if a.Equal(c) || a.Equal(nil) {
		t.Error("packages in different repositories should differ")
	}
	if a.LongName() != "main/zlib" {
		t.Errorf("LongName = %q", a.LongName())
	}

	r1 := &Repository{Name: "main", Path: "/a/main"}
	r2 := &Repository{Name: "main", Path: "/b/main"}
	if !r1.Equal(r2) {
		t.Error("repositories compare by name")
	}
}

func TestPackageInfo(t *testing.T) {
	root := createTestTree(t)
	pkg := NewPackage(root, "main", "openssl")

	info, err := pkg.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Version() != "3.3.1-r0" {
		t.Errorf("Version = %q", info.Version())
	}

	again, _ := pkg.Info()
	if again != info {
		t.Error("Info should be parsed once and cached")
	}

	missing := NewPackage(root, "main", "missing")
	if _, err := missing.Info(); err == nil {
		t.Error("expected error for missing APKBUILD")
	}
}

func TestCountPackages(t *testing.T) {
	root := createTestTree(t)
	repos, err := Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	if n := CountPackages(repos); n != 6 {
		t.Errorf("CountPackages = %d, want 6", n)
	}
	if n := CountPackages(nil); n != 0 {
		t.Errorf("CountPackages(nil) = %d", n)
	}
}
