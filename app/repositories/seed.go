package repositories

import (
	"encoding/json"
	"fmt"
	"io"

	"storyline/app/models"

	"gopkg.in/yaml.v3"
)

// Seed is the content loaded by `cms seed`.
type Seed struct {
	Authors  []*models.Author  `json:"authors"`
	Posts    []*PostRecord     `json:"posts"`
	Comments []*models.Comment `json:"comments"`
}

// ReadSeed decodes a YAML seed file. Keys follow the CMS JSON field names,
// so the document is decoded generically and re-read as JSON.
func ReadSeed(r io.Reader) (*Seed, error) {
	var raw interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed: %w", err)
	}
	var seed Seed
	if err := unmarshalEntity(data, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Apply writes the seed content. Comments without a type are treated as
// comment documents.
func (s *Store) Apply(seed *Seed) error {
	for _, a := range seed.Authors {
		if err := s.Authors.Put(a); err != nil {
			return fmt.Errorf("author %q: %w", a.ID, err)
		}
	}
	for _, p := range seed.Posts {
		if err := s.Posts.Put(p); err != nil {
			return fmt.Errorf("post %q: %w", p.ID, err)
		}
	}
	for _, c := range seed.Comments {
		if c.Type == "" {
			c.Type = models.TypeComment
		}
		if c.Post.Type == "" {
			c.Post.Type = models.TypeReference
		}
		if err := s.Comments.Create(c); err != nil {
			return fmt.Errorf("comment on %q: %w", c.Post.Ref, err)
		}
	}
	return nil
}
