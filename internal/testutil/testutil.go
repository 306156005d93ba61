// Package testutil provides shared test helpers for config files, databases
// and a fake PokeAPI.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pokedex/internal/config"
	"github.com/at-ishikawa/pokedex/internal/database"
)

// ConfigOption overrides one line group of the generated config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	cacheBackend string
	payloadTTL   string
}

// WithCacheBackend sets cache.backend in the generated config.
func WithCacheBackend(backend string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.cacheBackend = backend
	}
}

// WithPayloadTTL sets cache.payload_ttl in the generated config.
func WithPayloadTTL(ttl string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.payloadTTL = ttl
	}
}

// SetupTestConfig writes a config file pointing at a SQLite database in
// tmpDir and the given PokeAPI base URL. Returns the config file path.
func SetupTestConfig(t *testing.T, tmpDir, baseURL string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{cacheBackend: "memory", payloadTTL: "24h"}
	for _, opt := range opts {
		opt(&cfg)
	}

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
pokeapi:
  base_url: %s
  timeout: 5s
  min_interval: 0s
  max_retries: 1
  retry_base_delay: 1ms
  retry_max_delay: 5ms
seeding:
  batch_size: 2
cache:
  backend: %s
  ttl: 1m
  payload_ttl: %s
`,
		filepath.Join(tmpDir, "pokedex.db"),
		baseURL,
		cfg.cacheBackend,
		cfg.payloadTTL,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// NewSQLiteDB opens a migrated SQLite database in a temporary directory.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "pokedex.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// PokemonJSON builds an upstream pokemon payload.
func PokemonJSON(id int, name string, types ...string) []byte {
	typeSlots := make([]map[string]any, 0, len(types))
	for i, typ := range types {
		typeSlots = append(typeSlots, map[string]any{
			"slot": i + 1,
			"type": map[string]string{"name": typ, "url": "https://pokeapi.co/api/v2/type/" + typ + "/"},
		})
	}
	payload := map[string]any{
		"id":              id,
		"name":            name,
		"height":          7,
		"weight":          69,
		"base_experience": 64,
		"types":           typeSlots,
		"abilities": []map[string]any{
			{"slot": 1, "is_hidden": false, "ability": map[string]string{"name": "overgrow"}},
		},
		"stats": []map[string]any{
			{"base_stat": 45, "effort": 0, "stat": map[string]string{"name": "hp"}},
			{"base_stat": 49, "effort": 0, "stat": map[string]string{"name": "attack"}},
		},
		"sprites": map[string]any{
			"front_default": fmt.Sprintf("https://img.example.com/%d.png", id),
			"back_default":  nil,
			"other":         map[string]any{"home": map[string]any{"front_default": "ignored"}},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return b
}

// FakePokeAPI serves /pokemon/{id} and /generation/{name} from memory.
type FakePokeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	pokemon     map[int][]byte
	statuses    map[int]int
	generations map[string][]int
	requests    map[string]int
}

// NewFakePokeAPI starts a fake upstream that is closed on cleanup.
func NewFakePokeAPI(t *testing.T) *FakePokeAPI {
	t.Helper()

	f := &FakePokeAPI{
		pokemon:     make(map[int][]byte),
		statuses:    make(map[int]int),
		generations: make(map[string][]int),
		requests:    make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure clients with.
func (f *FakePokeAPI) URL() string {
	return f.Server.URL
}

// AddPokemon registers a payload for id.
func (f *FakePokeAPI) AddPokemon(id int, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pokemon[id] = payload
}

// AddRange registers a valid payload named pokemon-<id> for each id in [start, end].
func (f *FakePokeAPI) AddRange(start, end int, types ...string) {
	if len(types) == 0 {
		types = []string{"normal"}
	}
	for id := start; id <= end; id++ {
		f.AddPokemon(id, PokemonJSON(id, fmt.Sprintf("pokemon-%d", id), types...))
	}
}

// FailWith makes every request for id answer status.
func (f *FakePokeAPI) FailWith(id, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
}

// AddGeneration registers the species ids of a generation.
func (f *FakePokeAPI) AddGeneration(name string, ids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generations[name] = ids
}

// Requests returns how many times path was requested.
func (f *FakePokeAPI) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakePokeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.URL.Path]++

	switch {
	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/pokemon/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if status, ok := f.statuses[id]; ok {
			w.WriteHeader(status)
			return
		}
		payload, ok := f.pokemon[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	case strings.HasPrefix(r.URL.Path, "/generation/"):
		ids, ok := f.generations[strings.TrimPrefix(r.URL.Path, "/generation/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		species := make([]map[string]string, 0, len(ids))
		for _, id := range ids {
			species = append(species, map[string]string{
				"name": fmt.Sprintf("pokemon-%d", id),
				"url":  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%d/", id),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"pokemon_species": species})
	default:
		http.NotFound(w, r)
	}
}
