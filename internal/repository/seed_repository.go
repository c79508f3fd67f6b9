package repository

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/dcu-portal-api/internal/models"
)

//go:embed seed/clubs.yaml
var builtinSeed []byte

type seedDocument struct {
	Clubs []models.Club `yaml:"clubs"`
}

// SeedRepository serves the club directory from a YAML document, either a file on disk or the
// seed compiled into the binary.
type SeedRepository struct {
	path string
}

// NewSeedRepository constructs a SeedRepository. An empty path selects the built-in seed.
func NewSeedRepository(path string) *SeedRepository {
	return &SeedRepository{path: path}
}

// LoadClubs decodes every club of the seed document in file order.
func (r *SeedRepository) LoadClubs(ctx context.Context) ([]models.Club, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := builtinSeed
	source := "builtin seed"
	if r.path != "" {
		data, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", r.path, err)
		}
		raw = data
		source = r.path
	}

	clubs, err := decodeSeed(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return clubs, nil
}

func decodeSeed(r io.Reader) ([]models.Club, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc seedDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty seed document")
		}
		return nil, err
	}
	return doc.Clubs, nil
}
