// Package commands implements the service's CLI subcommands.
package commands

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vsa-campus/vsa-site/internal/auth"
	"golang.org/x/term"
)

// HashPassword handles the hash-password subcommand. It prompts for the
// admin username and password and writes the credentials file.
func HashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	out := fs.String("file", envOr("ADMIN_AUTH_FILE", "auth.secret"), "Path to the credentials file")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vsa-site hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates the admin credentials file with an Argon2id password hash.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	in := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := readLine(in)
	username = strings.TrimSpace(username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading username: %v\n", err)
		return 1
	}
	if username == "" || strings.Contains(username, ":") {
		fmt.Fprintf(os.Stderr, "Username must be non-empty and cannot contain ':'\n")
		return 1
	}

	password, err := readPassword(in, "Enter password:   ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return 1
	}
	confirm, err := readPassword(in, "Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password confirmation: %v\n", err)
		return 1
	}
	if password == "" {
		fmt.Fprintf(os.Stderr, "Password cannot be empty\n")
		return 1
	}
	if password != confirm {
		fmt.Fprintf(os.Stderr, "Passwords do not match\n")
		return 1
	}

	if _, err := os.Stat(*out); err == nil && !*overwrite {
		fmt.Printf("Auth file already exists: %s\n", *out)
		fmt.Print("Overwrite? (y/N): ")
		answer, _ := readLine(in)
		answer = strings.ToLower(answer)
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "aborted")
			return 1
		}
		*overwrite = true
	}

	if err := auth.WriteFile(*out, username, password, *overwrite); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Auth file created: %s (mode: 0400 read-only)\n", *out)
	fmt.Printf("   Username: %s\n", username)
	return 0
}

// readPassword hides input when stdin is a terminal and falls back to a
// plain line read otherwise (pipes, CI).
func readPassword(in *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in)
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
