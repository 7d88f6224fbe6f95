// Package auth gates the admin console behind HTTP Basic Auth checked
// against an Argon2id hash kept in a credentials file.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

// ErrNoCredentials is returned when the credentials file does not exist.
var ErrNoCredentials = errors.New("no admin credentials file")

// ErrInvalidHash is returned for an encoded password hash that cannot be used.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

const realm = "VSA Admin"

// Authenticator verifies admin credentials.
type Authenticator struct {
	user string
	hash argonHash
	log  *zap.Logger
}

// New returns an Authenticator for user and an encoded Argon2id hash.
// An unusable hash is rejected with ErrInvalidHash.
func New(user, encoded string, log *zap.Logger) (*Authenticator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h, err := parseHash(encoded)
	if err != nil {
		return nil, err
	}
	return &Authenticator{user: user, hash: h, log: log}, nil
}

// LoadFile reads a "username:hash" credentials file.
func LoadFile(path string, log *zap.Logger) (*Authenticator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCredentials, path)
		}
		return nil, fmt.Errorf("read auth file: %w", err)
	}

	line := strings.TrimSpace(string(data))
	user, encoded, ok := strings.Cut(line, ":")
	if !ok || user == "" || encoded == "" {
		return nil, fmt.Errorf("invalid auth file format (expected: username:hash)")
	}
	a, err := New(user, encoded, log)
	if err != nil {
		return nil, fmt.Errorf("auth file %s: %w", path, err)
	}
	return a, nil
}

// User returns the configured admin username.
func (a *Authenticator) User() string {
	return a.user
}

// Check reports whether user and password match.
func (a *Authenticator) Check(user, password string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) != 1 {
		return false
	}
	return a.hash.matches(password)
}

// Middleware rejects requests without valid Basic Auth credentials.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !a.Check(user, pass) {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q`, realm))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			a.log.Warn("failed admin auth attempt",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user", user),
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// argonHash is a decoded "$argon2id$v=19$m=...,t=...,p=...$salt$key" string.
type argonHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key))
}

func (h argonHash) matches(password string) bool {
	got := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(h.key, got) == 1
}

// parseHash decodes an encoded hash and rejects parameters argon2 cannot
// run with.
func parseHash(encoded string) (argonHash, error) {
	var h argonHash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return h, ErrInvalidHash
	}
	if parts[1] != "argon2id" {
		return h, fmt.Errorf("%w: not an argon2id hash", ErrInvalidHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return h, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return h, fmt.Errorf("%w: parameters: %v", ErrInvalidHash, err)
	}
	if h.memory == 0 || h.time == 0 || h.threads == 0 {
		return h, fmt.Errorf("%w: zero parameter in %q", ErrInvalidHash, parts[3])
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return h, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	if len(h.key) == 0 {
		return h, fmt.Errorf("%w: empty key", ErrInvalidHash)
	}
	return h, nil
}

// HashPassword creates an Argon2id hash of the password with a fresh salt.
func HashPassword(password string) (string, error) {
	h := argonHash{memory: argon2Memory, time: argon2Time, threads: argon2Threads, salt: make([]byte, saltLen)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	h.key = argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, argon2KeyLen)
	return h.String(), nil
}

// VerifyPassword verifies a password against an encoded Argon2id hash.
func VerifyPassword(password, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

// WriteFile stores username and a fresh hash of password at path with
// mode 0400. An existing file is replaced only when overwrite is set.
func WriteFile(path, username, password string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("auth file already exists: %s", path)
		}
		// 0400 files cannot be truncated in place.
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	content := fmt.Sprintf("%s:%s\n", username, hash)
	if err := os.WriteFile(path, []byte(content), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	return nil
}
