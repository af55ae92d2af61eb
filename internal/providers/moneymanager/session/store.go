package session

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
)

const fileVersion = 1

// Entry is the persisted form of one cookie
type Entry struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
	HostOnly bool      `json:"host_only,omitempty"`
}

func (e Entry) key() string {
	return e.Domain + ";" + e.Path + ";" + e.Name
}

func (e Entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !e.Expires.After(now)
}

type snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Cookies []Entry   `json:"cookies"`
}

// Options configures a Store
type Options struct {
	// Path of the persisted session file
	Path string
	// Persist enables loading at Open and writing on Save
	Persist bool
	Logger  *logging.Logger
}

// Store is the cookie jar shared by every request of one client. It
// implements http.CookieJar and mirrors accepted cookies so the session can
// be written to disk and restored after a restart.
type Store struct {
	opts Options
	log  *logging.Logger

	mu      sync.Mutex
	jar     *cookiejar.Jar
	entries map[string]Entry

	saveMu sync.Mutex
	now    func() time.Time
}

// Open creates a store and, when persistence is enabled, restores the
// previous session. A missing or unreadable file starts an empty session.
func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	s := &Store{opts: opts, log: log, now: time.Now}
	if err := s.reset(); err != nil {
		return nil, err
	}

	if opts.Persist && opts.Path != "" {
		if err := s.load(); err != nil {
			log.Warn("Ignoring unusable session file",
				zap.String("path", opts.Path),
				zap.Error(err))
			if err := s.reset(); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *Store) reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	s.mu.Lock()
	s.jar = jar
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
	return nil
}

// SetCookies implements http.CookieJar
func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)
	now := s.now()
	for _, c := range cookies {
		if !domainAccepted(u.Hostname(), c.Domain) {
			continue
		}
		e := entryFor(u, c, now)
		if e.expired(now) {
			delete(s.entries, e.key())
			continue
		}
		s.entries[e.key()] = e
	}
}

// Cookies implements http.CookieJar
func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// Len reports the number of live cookies
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Entries returns a copy of the live cookies
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.expired(now) {
			out = append(out, e)
		}
	}
	return out
}

// Persistent reports whether Save writes to disk
func (s *Store) Persistent() bool {
	return s.opts.Persist && s.opts.Path != ""
}

// Save overwrites the session file with the current cookies. Writes are
// serialized and atomic: a reader never sees a partial file.
func (s *Store) Save() error {
	if !s.Persistent() {
		return nil
	}

	// Snapshot under saveMu: a Save racing Clear must not write back
	// cleared cookies.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	entries := s.Entries()
	data, err := sonic.ConfigStd.MarshalIndent(snapshot{
		Version: fileVersion,
		SavedAt: s.now().UTC(),
		Cookies: entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return writeAtomic(s.opts.Path, data, 0o600)
}

// Clear drops every cookie and removes the session file
func (s *Store) Clear() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.reset(); err != nil {
		return err
	}
	if s.opts.Path == "" {
		return nil
	}
	if err := os.Remove(s.opts.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.opts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}

	now := s.now()
	restored := 0
	for _, e := range snap.Cookies {
		if e.Name == "" || e.Domain == "" || e.expired(now) {
			continue
		}
		s.restore(e)
		restored++
	}

	s.log.Debug("Restored session",
		zap.String("path", s.opts.Path),
		zap.Int("cookies", restored))
	return nil
}

// restore replays a persisted entry through the jar so its own domain and
// path matching apply.
func (s *Store) restore(e Entry) {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	u := &url.URL{Scheme: scheme, Host: e.Domain, Path: e.Path}

	c := &http.Cookie{
		Name:     e.Name,
		Value:    e.Value,
		Path:     e.Path,
		Expires:  e.Expires,
		Secure:   e.Secure,
		HttpOnly: e.HTTPOnly,
	}
	if !e.HostOnly {
		c.Domain = e.Domain
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, []*http.Cookie{c})
	s.entries[e.key()] = e
}

func entryFor(u *url.URL, c *http.Cookie, now time.Time) Entry {
	e := Entry{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
	}

	if c.Domain != "" {
		e.Domain = trimDot(c.Domain)
	} else {
		e.Domain = u.Hostname()
		e.HostOnly = true
	}

	if e.Path == "" || e.Path[0] != '/' {
		e.Path = defaultPath(u.Path)
	}

	switch {
	case c.MaxAge < 0:
		e.Expires = now.Add(-time.Second)
	case c.MaxAge > 0:
		e.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		e.Expires = c.Expires
	}
	return e
}

// domainAccepted reports whether the jar keeps a cookie with this Domain
// attribute for host. Rejected cookies must not reach the session file.
func domainAccepted(host, domain string) bool {
	if domain == "" {
		return true
	}
	host = strings.ToLower(host)
	domain = strings.ToLower(trimDot(domain))
	if host == domain {
		return true
	}
	if net.ParseIP(host) != nil {
		return false
	}
	if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
		return false
	}
	return strings.HasSuffix(host, "."+domain)
}

func trimDot(domain string) string {
	if len(domain) > 0 && domain[0] == '.' {
		return domain[1:]
	}
	return domain
}

// defaultPath follows RFC 6265 section 5.1.4
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := len(p) - 1
	for i > 0 && p[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
