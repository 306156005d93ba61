package generation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pokedex/internal/pokeapi"
	"github.com/at-ishikawa/pokedex/internal/testutil"
)

func TestCatalog_Lookup(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		name      string
		input     string
		wantStart int
		wantEnd   int
		wantFound bool
	}{
		{name: "region name", input: "kanto", wantStart: 1, wantEnd: 151, wantFound: true},
		{name: "case and spaces", input: "  Johto ", wantStart: 152, wantEnd: 251, wantFound: true},
		{name: "upstream alias", input: "generation-iii", wantStart: 252, wantEnd: 386, wantFound: true},
		{name: "number", input: "4", wantStart: 387, wantEnd: 493, wantFound: true},
		{name: "zero padded number", input: "05", wantStart: 494, wantEnd: 649, wantFound: true},
		{name: "unknown", input: "kalos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.Lookup(tt.input)
			assert.Equal(t, tt.wantFound, ok)
			if !tt.wantFound {
				return
			}
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}

func TestCatalog_ForSpecies(t *testing.T) {
	catalog := DefaultCatalog()

	got, ok := catalog.ForSpecies(151)
	require.True(t, ok)
	assert.Equal(t, "kanto", got.Name)

	got, ok = catalog.ForSpecies(152)
	require.True(t, ok)
	assert.Equal(t, "johto", got.Name)

	_, ok = catalog.ForSpecies(650)
	assert.False(t, ok)
}

func TestGeneration_IDs(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5}, Generation{Start: 3, End: 5}.IDs())
	assert.Len(t, DefaultCatalog().All()[0].IDs(), 151)
}

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name      string
		contents  string
		wantNames []string
		wantErr   string
	}{
		{
			name: "adds and overrides generations",
			contents: `generations:
  - name: kalos
    aliases: [generation-vi, "6"]
    start: 650
    end: 721
  - name: Kanto
    aliases: [generation-i, "1", red-blue]
    start: 1
    end: 151
`,
			wantNames: []string{"kanto", "johto", "hoenn", "sinnoh", "unova", "kalos"},
		},
		{
			name:     "invalid range",
			contents: "generations:\n  - name: broken\n    start: 10\n    end: 5\n",
			wantErr:  "invalid range",
		},
		{
			name:     "alias collision",
			contents: "generations:\n  - name: kalos\n    aliases: [\"1\"]\n    start: 650\n    end: 721\n",
			wantErr:  "used by",
		},
		{
			name:     "malformed yaml",
			contents: "generations: [",
			wantErr:  "yaml.Unmarshal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "generations.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0644))

			got, err := LoadCatalog(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, g := range got.All() {
				names = append(names, g.Name)
			}
			assert.Equal(t, tt.wantNames, names)

			g, ok := got.Lookup("red-blue")
			require.True(t, ok)
			assert.Equal(t, "kanto", g.Name)
			g, ok = got.Lookup("6")
			require.True(t, ok)
			assert.Equal(t, 650, g.Start)
		})
	}

	t.Run("empty path uses defaults", func(t *testing.T) {
		got, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Len(t, got.All(), 5)
	})
}

type upstreamFunc func(ctx context.Context, name string) ([]int, error)

func (f upstreamFunc) FetchGenerationSpeciesIDs(ctx context.Context, name string) ([]int, error) {
	return f(ctx, name)
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		upstream Upstream
		want     []int
		wantErr  error
	}{
		{
			name:  "catalog hit does not call upstream",
			input: "generation-i",
			upstream: upstreamFunc(func(ctx context.Context, name string) ([]int, error) {
				t.Fatal("upstream must not be called")
				return nil, nil
			}),
			want: Generation{Start: 1, End: 151}.IDs(),
		},
		{
			name:  "upstream fallback",
			input: "Generation-VI",
			upstream: upstreamFunc(func(ctx context.Context, name string) ([]int, error) {
				assert.Equal(t, "generation-vi", name)
				return []int{650, 651}, nil
			}),
			want: []int{650, 651},
		},
		{
			name:  "upstream not found",
			input: "generation-x",
			upstream: upstreamFunc(func(ctx context.Context, name string) ([]int, error) {
				return nil, &pokeapi.NotFoundError{Path: "/generation/generation-x"}
			}),
			wantErr: ErrUnknown,
		},
		{
			name:    "no upstream",
			input:   "kalos",
			wantErr: ErrUnknown,
		},
		{
			name:  "upstream failure",
			input: "kalos",
			upstream: upstreamFunc(func(ctx context.Context, name string) ([]int, error) {
				return nil, fmt.Errorf("connection refused")
			}),
			wantErr: fmt.Errorf("connection refused"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(DefaultCatalog(), tt.upstream).Resolve(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_WithPokeAPIClient(t *testing.T) {
	fake := testutil.NewFakePokeAPI(t)
	fake.AddGeneration("generation-vi", 652, 650, 651)

	client := pokeapi.NewClient(pokeapi.Config{BaseURL: fake.URL(), Timeout: time.Second}, pokeapi.NewLimiter(0), nil)
	resolver := NewResolver(DefaultCatalog(), client)

	got, err := resolver.Resolve(context.Background(), "generation-vi")
	require.NoError(t, err)
	assert.Equal(t, []int{650, 651, 652}, got)

	_, err = resolver.Resolve(context.Background(), "generation-xx")
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, 1, fake.Requests("/generation/generation-xx"))
	assert.Equal(t, 0, fake.Requests("/generation/kanto"))
}
