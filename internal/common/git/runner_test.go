package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// initTestRepo creates a git repository with one committed APKBUILD.
// Tests are skipped when git is not installed.
func initTestRepo(t *testing.T) *GitRunner {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	runner := NewGitRunner(tmpDir)
	mustRun := func(args ...string) {
		t.Helper()
		if _, _, err := runner.runCommand(args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}

	mustRun("init", "-q")
	mustRun("config", "user.email", "test@example.com")
	mustRun("config", "user.name", "Test User")
	mustRun("config", "commit.gpgsign", "false")

	writeFile(t, filepath.Join(tmpDir, "main", "zlib", "APKBUILD"), "pkgname=zlib\npkgver=1.3\npkgrel=0\n")
	writeFile(t, filepath.Join(tmpDir, "community", "kate", "APKBUILD"), "pkgname=kate\npkgver=24.02.0\npkgrel=1\n")
	mustRun("add", ".")
	mustRun("commit", "-q", "-m", "initial")

	return runner
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestParseNameOnly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty output", "", nil},
		{"single path", "main/zlib/APKBUILD\n", []string{"main/zlib/APKBUILD"}},
		{
			name:     "multiple paths with blank lines",
			input:    "main/zlib/APKBUILD\n\ncommunity/kate/APKBUILD\n",
			expected: []string{"main/zlib/APKBUILD", "community/kate/APKBUILD"},
		},
		{"trailing whitespace", "testing/foo/APKBUILD  \r\n", []string{"testing/foo/APKBUILD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, ParseNameOnly(tt.input)); diff != "" {
				t.Errorf("ParseNameOnly mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeNameLists(t *testing.T) {
	got := MergeNameLists(
		[]string{"main/a/APKBUILD", "main/b/APKBUILD"},
		nil,
		[]string{"main/b/APKBUILD", "community/c/APKBUILD"},
	)
	want := []string{"main/a/APKBUILD", "main/b/APKBUILD", "community/c/APKBUILD"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeNameLists mismatch (-want +got):\n%s", diff)
	}
}

func TestNewGitRunner(t *testing.T) {
	workDir := "/tmp/aports"
	runner := NewGitRunner(workDir)

	if runner.WorkDir() != workDir {
		t.Errorf("expected workDir %q, got %q", workDir, runner.WorkDir())
	}
}

func TestChangedFiles(t *testing.T) {
	runner := initTestRepo(t)
	root := runner.WorkDir()

	if _, err := runner.ChangedFiles(""); err != ErrEmptyBase {
		t.Errorf("expected ErrEmptyBase, got %v", err)
	}

	t.Run("clean tree has no changes", func(t *testing.T) {
		files, err := runner.ChangedFiles("HEAD")
		if err != nil {
			t.Fatalf("ChangedFiles: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("expected no changes, got %v", files)
		}
	})

	t.Run("staged and unstaged changes are merged", func(t *testing.T) {
		writeFile(t, filepath.Join(root, "main", "zlib", "APKBUILD"), "pkgname=zlib\npkgver=1.3.1\npkgrel=0\n")
		writeFile(t, filepath.Join(root, "testing", "new", "APKBUILD"), "pkgname=new\npkgver=0.1\npkgrel=0\n")
		if err := runner.Add("testing/new"); err != nil {
			t.Fatalf("Add: %v", err)
		}
		writeFile(t, filepath.Join(root, "testing", "new", "APKBUILD"), "pkgname=new\npkgver=0.2\npkgrel=0\n")

		files, err := runner.ChangedFiles("HEAD")
		if err != nil {
			t.Fatalf("ChangedFiles: %v", err)
		}
		want := []string{"testing/new/APKBUILD", "main/zlib/APKBUILD"}
		if diff := cmp.Diff(want, files); diff != "" {
			t.Errorf("ChangedFiles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("deleted files are omitted", func(t *testing.T) {
		if err := os.RemoveAll(filepath.Join(root, "community", "kate")); err != nil {
			t.Fatal(err)
		}
		files, err := runner.ChangedFiles("HEAD")
		if err != nil {
			t.Fatalf("ChangedFiles: %v", err)
		}
		for _, f := range files {
			if f == "community/kate/APKBUILD" {
				t.Errorf("deleted APKBUILD should not be reported")
			}
		}
	})

	t.Run("unknown base fails", func(t *testing.T) {
		if _, err := runner.ChangedFiles("no-such-branch"); err == nil {
			t.Error("expected error for unknown base ref")
		}
	})
}

func TestAddPathValidation(t *testing.T) {
	runner := initTestRepo(t)
	writeFile(t, filepath.Join(runner.WorkDir(), "main", "zlib", "APKBUILD"), "pkgname=zlib\npkgver=2\n")

	t.Run("add existing package directory succeeds", func(t *testing.T) {
		if err := runner.Add("main/zlib"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("add absolute path inside tree succeeds", func(t *testing.T) {
		if err := runner.Add(filepath.Join(runner.WorkDir(), "main", "zlib", "APKBUILD")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("add non-existent file returns file not found error", func(t *testing.T) {
		if err := runner.Add("main/nonexistent"); err != ErrFileNotFound {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("add path outside tree returns error", func(t *testing.T) {
		if err := runner.Add("../outside"); err != ErrPathOutsideAports {
			t.Errorf("expected ErrPathOutsideAports, got %v", err)
		}
	})

	t.Run("add with absolute path outside tree returns error", func(t *testing.T) {
		if err := runner.Add("/etc/passwd"); err != ErrPathOutsideAports {
			t.Errorf("expected ErrPathOutsideAports, got %v", err)
		}
	})
}

func TestGitRunnerCommit(t *testing.T) {
	runner := initTestRepo(t)

	writeFile(t, filepath.Join(runner.WorkDir(), "main", "zlib", "APKBUILD"), "pkgname=zlib\npkgver=1.3.1\npkgrel=0\n")
	if err := runner.Add("main/zlib"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := runner.Commit("main/zlib: upgrade to 1.3.1", "Custom User", "custom@example.com"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	stdout, _, err := runner.runCommand("log", "-1", "--format=%an <%ae>|%s")
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if want := "Custom User <custom@example.com>|main/zlib: upgrade to 1.3.1\n"; stdout != want {
		t.Errorf("last commit = %q, want %q", stdout, want)
	}

	// Nothing staged: git refuses the commit
	if err := runner.Commit("empty", "", ""); err == nil {
		t.Error("expected error committing with nothing staged")
	}
}

func TestGitRunnerCommitOnlyPaths(t *testing.T) {
	runner := initTestRepo(t)
	dir := runner.WorkDir()

	// unrelated work already staged by the user
	writeFile(t, filepath.Join(dir, "community", "kate", "APKBUILD"), "pkgname=kate\npkgver=24.02.0\npkgrel=2\n")
	if _, _, err := runner.runCommand("add", "community/kate/APKBUILD"); err != nil {
		t.Fatalf("git add: %v", err)
	}

	writeFile(t, filepath.Join(dir, "main", "zlib", "APKBUILD"), "pkgname=zlib\npkgver=1.3.1\npkgrel=0\n")
	if err := runner.Add("main/zlib"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := runner.Commit("main/zlib: upgrade to 1.3.1", "", "", "main/zlib"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	stdout, _, err := runner.runCommand("show", "--name-only", "--format=", "HEAD")
	if err != nil {
		t.Fatalf("git show: %v", err)
	}
	if diff := cmp.Diff([]string{"main/zlib/APKBUILD"}, ParseNameOnly(stdout)); diff != "" {
		t.Errorf("committed files mismatch (-want +got):\n%s", diff)
	}

	stdout, _, err = runner.runCommand("diff", "--cached", "--name-only")
	if err != nil {
		t.Fatalf("git diff: %v", err)
	}
	if diff := cmp.Diff([]string{"community/kate/APKBUILD"}, ParseNameOnly(stdout)); diff != "" {
		t.Errorf("still staged mismatch (-want +got):\n%s", diff)
	}
}

func TestGitRunnerCommitWithoutGlobalIdentity(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	for _, v := range []string{"GIT_AUTHOR_NAME", "GIT_AUTHOR_EMAIL", "GIT_COMMITTER_NAME", "GIT_COMMITTER_EMAIL", "EMAIL"} {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}

	dir := t.TempDir()
	runner := NewGitRunner(dir)
	if _, _, err := runner.runCommand("init", "-q"); err != nil {
		t.Fatalf("git init: %v", err)
	}
	if _, _, err := runner.runCommand("config", "commit.gpgsign", "false"); err != nil {
		t.Fatalf("git config: %v", err)
	}

	writeFile(t, filepath.Join(dir, "main", "foo", "APKBUILD"), "pkgname=foo\npkgver=1\npkgrel=0\n")
	if err := runner.Add("main/foo"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := runner.Commit("main/foo: upgrade to 1", "Config User", "cfg@example.org", "main/foo"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	stdout, _, err := runner.runCommand("log", "-1", "--format=%an <%ae>|%cn <%ce>")
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if want := "Config User <cfg@example.org>|Config User <cfg@example.org>\n"; stdout != want {
		t.Errorf("identity = %q, want %q", stdout, want)
	}
}
