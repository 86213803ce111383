package aports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aportsknife/aportsknife/internal/common/config"
)

// writeFile creates path with content, including parent directories
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func apkbuildText(name, ver, rel, depends, makedepends string) string {
	return "pkgname=" + name + "\n" +
		"pkgver=" + ver + "\n" +
		"pkgrel=" + rel + "\n" +
		"depends=\"" + depends + "\"\n" +
		"makedepends=\"\n\t" + makedepends + "\n\t\"\n" +
		"\nbuild() {\n\tmake\n}\n"
}

// createTestTree builds a small aports tree:
//
//	main/        zlib 1.3, openssl 3.3.1 (depends zlib), busybox 1.36.1
//	community/   kate 24.02.0 (makedepends qt6-qtbase-dev), konsole 24.02.0
//	testing/     foo 0.1 (depends !zlib-legacy)
//
// plus directories that must not be picked up as repositories or packages.
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, repo := range []string{"main", "community", "testing", "foo.bar"} {
		writeFile(t, filepath.Join(root, repo, config.RepositoryMarker), "main\n")
	}

	writeFile(t, filepath.Join(root, "main", "zlib", "APKBUILD"), apkbuildText("zlib", "1.3", "2", "", "autoconf"))
	writeFile(t, filepath.Join(root, "main", "openssl", "APKBUILD"), apkbuildText("openssl", "3.3.1", "0", "zlib>=1.2", "perl"))
	writeFile(t, filepath.Join(root, "main", "busybox", "APKBUILD"), apkbuildText("busybox", "1.36.1", "5", "", "linux-headers"))
	writeFile(t, filepath.Join(root, "community", "kate", "APKBUILD"), apkbuildText("kate", "24.02.0", "1", "", "qt6-qtbase-dev kf6-ktexteditor-dev"))
	writeFile(t, filepath.Join(root, "community", "konsole", "APKBUILD"), apkbuildText("konsole", "24.02.0", "0", "", "qt6-qtbase-dev"))
	writeFile(t, filepath.Join(root, "testing", "foo", "APKBUILD"), apkbuildText("foo", "0.1", "0", "!zlib-legacy", "make"))

	// Not repositories
	writeFile(t, filepath.Join(root, "foo.bar", "pkg", "APKBUILD"), apkbuildText("pkg", "1.0", "0", "", ""))
	writeFile(t, filepath.Join(root, "scripts", "pkg", "APKBUILD"), apkbuildText("pkg", "1.0", "0", "", ""))
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/master\n")

	// Not packages
	writeFile(t, filepath.Join(root, "main", "nested", "sub", "APKBUILD"), apkbuildText("sub", "1.3", "0", "", ""))
	writeFile(t, filepath.Join(root, "main", ".hidden", "APKBUILD"), apkbuildText("hidden", "1.3", "0", "", ""))
	writeFile(t, filepath.Join(root, "main", "README"), "not a package\n")

	return root
}

// longNames flattens a selection to repository/package names
func longNames(repos []*Repository) []string {
	var names []string
	for _, pkg := range Packages(repos) {
		names = append(names, pkg.LongName())
	}
	return names
}
