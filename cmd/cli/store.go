package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

var errLoginRequired = errors.New("not logged in to this server (run `notes login`)")

type savedSession struct {
	Token   string    `yaml:"token"`
	Expires time.Time `yaml:"expires"`
}

// sessionFile keeps one token per server URL so switching --server never
// sends a token to a host that did not issue it.
type sessionFile struct{ path string }

func defaultSessionFile() sessionFile {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return sessionFile{path: filepath.Join(dir, "goph-notes", "sessions.yaml")}
}

func serverKey(server string) string { return strings.TrimRight(server, "/") }

func (f sessionFile) read() (map[string]savedSession, error) {
	all := map[string]savedSession{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return all, nil
}

func (f sessionFile) write(all map[string]savedSession) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(all)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f sessionFile) save(server, token string) error {
	all, err := f.read()
	if err != nil {
		return err
	}
	all[serverKey(server)] = savedSession{Token: token, Expires: tokenExpiry(token)}
	return f.write(all)
}

func (f sessionFile) token(server string, now time.Time) (string, error) {
	all, err := f.read()
	if err != nil {
		return "", err
	}
	s, ok := all[serverKey(server)]
	if !ok || s.Token == "" || !now.Before(s.Expires) {
		return "", errLoginRequired
	}
	return s.Token, nil
}

func (f sessionFile) forget(server string) error {
	all, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := all[serverKey(server)]; !ok {
		return nil
	}
	delete(all, serverKey(server))
	return f.write(all)
}

// tokenExpiry reads exp without verifying the signature; the server does that.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	_, _, _ = jwt.NewParser().ParseUnverified(tok, &claims)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

func httpClient(caPath string, insecure bool) (*http.Client, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	switch {
	case insecure:
		cfg.InsecureSkipVerify = true
	case caPath != "":
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%s: no certificates found", caPath)
		}
		cfg.RootCAs = pool
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = cfg
	return &http.Client{Transport: tr}, nil
}

func readContent(p string) (string, error) {
	var (
		b   []byte
		err error
	)
	if p == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(p)
	}
	return string(b), err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
