package commands

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsa-campus/vsa-site/internal/auth"
)

func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	w.Close()

	orig := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = orig
		r.Close()
	})
}

func TestHashPassword_WritesCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.secret")
	withStdin(t, "admin\npho-is-life\npho-is-life\n")

	if code := HashPassword([]string{"-file", path}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	a, err := auth.LoadFile(path, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if a.User() != "admin" || !a.Check("admin", "pho-is-life") {
		t.Errorf("credentials do not verify")
	}
}

func TestHashPassword_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"colon in username", "ad:min\npw\npw\n"},
		{"empty username", "\npw\npw\n"},
		{"mismatch", "admin\npw\nwp\n"},
		{"empty password", "admin\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "auth.secret")
			withStdin(t, tt.input)
			if code := HashPassword([]string{"-file", path}); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("auth file should not exist, stat err = %v", err)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("first\r\nlast"))
	for _, want := range []string{"first", "last"} {
		got, err := readLine(in)
		if err != nil || got != want {
			t.Errorf("readLine = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := readLine(in); err == nil {
		t.Error("expected EOF after input is drained")
	}
}
