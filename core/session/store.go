package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
)

// decode builds a Session from the stored key/values; bad user data is logged and dropped.
func decode(values map[string]string, logger core.Logger) Session {
	s := Session{IsAuthenticated: values[KeyIsAuthenticated] == "true"}

	raw, ok := values[KeyUser]
	if !ok || raw == "" {
		return s
	}
	var p user.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.Warn(fmt.Sprintf("discarding malformed session user: %v", err), err)
		return s
	}
	s.User = &p
	return s
}

// encode writes s into values, removing keys that have no value.
func encode(s Session, values map[string]string) error {
	if s.IsAuthenticated {
		values[KeyIsAuthenticated] = "true"
	} else {
		delete(values, KeyIsAuthenticated)
	}
	if s.User == nil {
		delete(values, KeyUser)
		return nil
	}
	data, err := json.Marshal(s.User)
	if err != nil {
		return errors.Wrap(err, "encoding session user")
	}
	values[KeyUser] = string(data)
	return nil
}

// FileStore keeps the session in a JSON object file, alongside any other keys found there.
type FileStore struct {
	path   string
	logger core.Logger
	mu     sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, logger core.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (st *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return values, err
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string), err
	}
	return values, nil
}

func (st *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(st.path), ".session-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), st.path)
}

func (st *FileStore) Load() Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	values, err := st.read()
	if err != nil {
		st.logger.Warn(fmt.Sprintf("discarding unreadable session file %s: %v", st.path, err), err)
		return Session{}
	}
	return decode(values, st.logger)
}

func (st *FileStore) Save(s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	values, err := st.read()
	if err != nil {
		// overwrite the corrupted file
		values = make(map[string]string)
	}
	if err := encode(s, values); err != nil {
		return err
	}
	return errors.Wrap(st.write(values), "writing session file")
}

func (st *FileStore) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	values, err := st.read()
	if err != nil {
		values = make(map[string]string)
	}
	delete(values, KeyIsAuthenticated)
	delete(values, KeyUser)
	return errors.Wrap(st.write(values), "writing session file")
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	logger core.Logger
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(logger core.Logger) *MemoryStore {
	return &MemoryStore{logger: logger, values: make(map[string]string)}
}

// Set writes a raw key, the way another tab or a user tampering with storage would.
func (st *MemoryStore) Set(key, value string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.values[key] = value
}

// Get returns a raw key.
func (st *MemoryStore) Get(key string) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	v, ok := st.values[key]
	return v, ok
}

func (st *MemoryStore) Load() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return decode(st.values, st.logger)
}

func (st *MemoryStore) Save(s Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return encode(s, st.values)
}

func (st *MemoryStore) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.values, KeyIsAuthenticated)
	delete(st.values, KeyUser)
	return nil
}
