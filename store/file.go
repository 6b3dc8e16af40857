package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned when the storage root or a collection file is
// missing on a non-initializing open.
var ErrNotFound = errors.New("store not found")

// ErrCorrupt is returned when a collection exists but cannot be decoded
// into valid records.
var ErrCorrupt = errors.New("store corrupt")

const (
	rolesFile = "roles.json"
	usersFile = "users.json"
)

// User is the persisted account record. Field names follow the on-disk
// schema; the hash is a self-describing PHC digest.
type User struct {
	Role         string    `json:"role"`
	PasswordHash string    `json:"hash"`
	Email        string    `json:"email_addr"`
	Description  string    `json:"desc"`
	CreatedAt    time.Time `json:"creation_date"`
}

// FileStore persists the roles and users collections as whole-document
// JSON files under a storage root. Saves are atomic full-collection
// replaces (write-to-staging then rename); a concurrent load never
// observes a half-written collection.
type FileStore struct {
	root string

	// Coarse per-collection write serialization. Two concurrent saves of
	// the same collection resolve to one complete writer's output, never
	// an interleaved merge.
	rolesMu sync.RWMutex
	usersMu sync.RWMutex
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	initialize bool
}

// WithInitialize creates the storage root and empty collections when they
// do not exist. Re-opening an initialized store never truncates existing
// data.
func WithInitialize() Option {
	return func(o *openOptions) { o.initialize = true }
}

// Open attaches to the store rooted at root. Without [WithInitialize] the
// root and both collection files must already exist.
func Open(root string, opts ...Option) (*FileStore, error) {
	var options openOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &FileStore{root: root}

	if options.initialize {
		if err := os.MkdirAll(root, 0o700); err != nil {
			return nil, fmt.Errorf("create storage root: %w", err)
		}
		if err := s.ensureCollection(rolesFile); err != nil {
			return nil, err
		}
		if err := s.ensureCollection(usersFile); err != nil {
			return nil, err
		}
		return s, nil
	}

	for _, name := range []string{rolesFile, usersFile} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: missing %s under %s", ErrNotFound, name, root)
			}
			return nil, err
		}
	}
	return s, nil
}

// LoadRoles returns the role collection as a fresh map.
func (s *FileStore) LoadRoles() (map[string]int, error) {
	s.rolesMu.RLock()
	defer s.rolesMu.RUnlock()

	var roles map[string]int
	if err := s.loadCollection(rolesFile, &roles); err != nil {
		return nil, err
	}
	for name, level := range roles {
		if level < 0 {
			return nil, fmt.Errorf("%w: role %q has negative level %d", ErrCorrupt, name, level)
		}
	}
	if roles == nil {
		roles = map[string]int{}
	}
	return roles, nil
}

// SaveRoles atomically replaces the role collection.
func (s *FileStore) SaveRoles(roles map[string]int) error {
	for name, level := range roles {
		if level < 0 {
			return fmt.Errorf("role %q has negative level %d", name, level)
		}
	}

	s.rolesMu.Lock()
	defer s.rolesMu.Unlock()
	return s.saveCollection(rolesFile, roles)
}

// LoadUsers returns the user collection as a fresh map.
func (s *FileStore) LoadUsers() (map[string]User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	var users map[string]User
	if err := s.loadCollection(usersFile, &users); err != nil {
		return nil, err
	}
	for username, user := range users {
		if user.Role == "" {
			return nil, fmt.Errorf("%w: user %q has no role", ErrCorrupt, username)
		}
		if user.PasswordHash == "" {
			return nil, fmt.Errorf("%w: user %q has no password hash", ErrCorrupt, username)
		}
	}
	if users == nil {
		users = map[string]User{}
	}
	return users, nil
}

// SaveUsers atomically replaces the user collection.
func (s *FileStore) SaveUsers(users map[string]User) error {
	for username, user := range users {
		if user.Role == "" {
			return fmt.Errorf("user %q has no role", username)
		}
		if user.PasswordHash == "" {
			return fmt.Errorf("user %q has no password hash", username)
		}
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	return s.saveCollection(usersFile, users)
}

func (s *FileStore) ensureCollection(name string) error {
	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.writeAtomic(name, []byte("{}\n"))
}

func (s *FileStore) loadCollection(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: missing %s", ErrNotFound, name)
		}
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return nil
}

func (s *FileStore) saveCollection(name string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(name, append(data, '\n'))
}

// writeAtomic stages the payload next to the canonical file and renames it
// into place. Rename is atomic on POSIX filesystems, so a reader sees
// either the old collection or the new one, never a prefix.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.root, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
