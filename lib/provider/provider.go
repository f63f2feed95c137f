// Package provider owns the set of open databases a running server
// exposes: it resolves an admin request or a batched key/value request
// to the right backend.Backend, enforces the token gate on admin
// operations, and tracks per-operation metrics.
//
// It generalizes a fixed shard-ID keyspace into a dynamically grown,
// named+UUID-keyed database table.
package provider

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/common"
	"github.com/puzpuzpuz/xsync/v3"
)

var log = common.GetLogger("provider")

// Config is the top-level provider configuration: the databases to open
// at startup and the admin token, if any.
type Config struct {
	Databases []databaseConfig `json:"databases"`
	Token     string           `json:"token,omitempty"`
}

// Provider owns every open Database, indexed by both name and ID so
// requests can address either.
type Provider struct {
	token   string
	byName  *xsync.MapOf[string, *Database]
	byID    *xsync.MapOf[string, *Database]
	Metrics *common.OperationMetrics
}

// New creates an empty Provider gated by the given admin token (empty
// means no token check is performed).
func New(token string) *Provider {
	return &Provider{
		token:   token,
		byName:  xsync.NewMapOf[string, *Database](),
		byID:    xsync.NewMapOf[string, *Database](),
		Metrics: common.NewOperationMetrics(),
	}
}

// Load parses a JSON provider configuration and opens every listed
// database.
func Load(rawConfig []byte) (*Provider, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("provider: invalid config: %w", err)
	}
	p := New(cfg.Token)
	for _, dbCfg := range cfg.Databases {
		if _, err := p.OpenDatabase(dbCfg.Type, dbCfg.Name, dbCfg.Config); err != nil {
			return nil, fmt.Errorf("provider: opening %q: %w", dbCfg.Name, err)
		}
	}
	return p, nil
}

// CheckToken reports whether the given caller-supplied token is allowed
// to perform admin operations. An empty configured token disables the
// check entirely.
func (p *Provider) CheckToken(callerToken string) bool {
	return p.token == "" || p.token == callerToken
}

// OpenDatabase creates a backend of the given type from rawConfig,
// assigns it a fresh UUID, and registers it under name (or the UUID
// itself if name is empty).
func (p *Provider) OpenDatabase(backendType, name string, rawConfig json.RawMessage) (*Database, *backend.Error) {
	id := uuid.New().String()
	if name == "" {
		name = id
	}
	if _, exists := p.byName.Load(name); exists {
		return nil, backend.NewError(backend.ErrInvalidDatabase, "database %q already open", name)
	}

	finalConfig, err := withID(rawConfig, id)
	if err != nil {
		return nil, backend.NewError(backend.ErrInvalidConfig, "provider: %v", err)
	}

	be, berr := backend.Open(backendType, finalConfig)
	if berr != nil {
		return nil, berr
	}

	db := &Database{ID: id, Name: name, Backend: be}
	p.byName.Store(name, db)
	p.byID.Store(id, db)
	log.Infof("opened database %q (%s, id=%s)", name, backendType, id)
	return db, nil
}

// CloseDatabase removes a database from the table without destroying its
// backing storage.
func (p *Provider) CloseDatabase(name string) *backend.Error {
	db, ok := p.byName.Load(name)
	if !ok {
		return backend.NewError(backend.ErrInvalidDatabase, "database %q not found", name)
	}
	p.byName.Delete(name)
	p.byID.Delete(db.ID)
	log.Infof("closed database %q", name)
	return nil
}

// DestroyDatabase closes a database and permanently erases its backing
// storage.
func (p *Provider) DestroyDatabase(name string) *backend.Error {
	db, ok := p.byName.Load(name)
	if !ok {
		return backend.NewError(backend.ErrInvalidDatabase, "database %q not found", name)
	}
	if err := db.Backend.Destroy(); err != nil {
		return backend.NewError(backend.ErrIO, "provider: destroy %q: %v", name, err)
	}
	p.byName.Delete(name)
	p.byID.Delete(db.ID)
	log.Infof("destroyed database %q", name)
	return nil
}

// ListDatabases returns the name of every currently open database.
func (p *Provider) ListDatabases() []string {
	names := make([]string, 0, p.byName.Size())
	p.byName.Range(func(name string, _ *Database) bool {
		names = append(names, name)
		return true
	})
	return names
}

// FindByName resolves a database by its caller-facing name.
func (p *Provider) FindByName(name string) (*Database, *backend.Error) {
	db, ok := p.byName.Load(name)
	if !ok {
		return nil, backend.NewError(backend.ErrInvalidDatabase, "database %q not found", name)
	}
	return db, nil
}

// FindByID resolves a database by its UUID.
func (p *Provider) FindByID(id string) (*Database, *backend.Error) {
	db, ok := p.byID.Load(id)
	if !ok {
		return nil, backend.NewError(backend.ErrInvalidDatabase, "database with id %q not found", id)
	}
	return db, nil
}

// GetConfig returns the stored configuration of a database, defaults and
// __id__ included, matching what OpenDatabase persisted.
func (p *Provider) GetConfig(name string) ([]byte, *backend.Error) {
	db, err := p.FindByName(name)
	if err != nil {
		return nil, err
	}
	return db.Backend.Config(), nil
}
