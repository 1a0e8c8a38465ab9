package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"storyline/app/cms"
	"storyline/app/models"
	"storyline/app/render"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

var ErrPostNotFound = errors.New("post not found")

// prerenderLimit bounds concurrent generations during path discovery.
const prerenderLimit = 4

// Page is a generated post page. It is what the page cache stores.
type Page struct {
	Post           *models.Post  `json:"post"`
	Body           template.HTML `json:"body"`
	HeroURL        string        `json:"heroUrl,omitempty"`
	AuthorImageURL string        `json:"authorImageUrl,omitempty"`
	ETag           string        `json:"etag"`
	GeneratedAt    time.Time     `json:"generatedAt"`
}

// PageService discovers and generates post pages
type PageService struct {
	client     cms.Client
	serializer *render.Serializer
	images     render.ImageURLBuilder
	logger     *slog.Logger
	now        func() time.Time
}

// NewPageService creates a new PageService
func NewPageService(client cms.Client, serializer *render.Serializer, logger *slog.Logger) *PageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageService{
		client:     client,
		serializer: serializer,
		images:     serializer.Images,
		logger:     logger,
		now:        time.Now,
	}
}

// Paths returns the distinct, non-empty slugs of all posts in first-seen order.
func (s *PageService) Paths(ctx context.Context) ([]string, error) {
	var refs []models.PostRef
	if err := s.client.Fetch(ctx, cms.PostPathsQuery, nil, &refs); err != nil {
		return nil, fmt.Errorf("failed to discover paths: %w", err)
	}

	seen := make(map[string]bool, len(refs))
	slugs := make([]string, 0, len(refs))
	for _, ref := range refs {
		slug := ref.Slug.Current
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

// Generate fetches the post for slug and renders its page.
func (s *PageService) Generate(ctx context.Context, slug string) (*Page, error) {
	var post *models.Post
	params := map[string]any{"slug": slug}
	if err := s.client.Fetch(ctx, cms.PostBySlugQuery, params, &post); err != nil {
		return nil, fmt.Errorf("failed to fetch post %q: %w", slug, err)
	}
	if post == nil || post.ID == "" {
		return nil, ErrPostNotFound
	}

	// The query only returns approved comments, but a backend that ignores
	// the filter must not leak the rest.
	comments := post.Comments
	post.Comments = make([]*models.Comment, 0, len(comments))
	for _, c := range comments {
		post.AddComment(c)
	}

	page := &Page{
		Post:        post,
		Body:        s.serializer.Render(post.Body),
		HeroURL:     s.images.For(post.MainImage),
		GeneratedAt: s.now().UTC(),
	}
	if post.Author != nil {
		page.AuthorImageURL = s.images.For(post.Author.Image)
	}
	page.ETag = pageETag(page)
	return page, nil
}

// Load is Generate encoded for the page cache.
func (s *PageService) Load(ctx context.Context, slug string) ([]byte, error) {
	page, err := s.Generate(ctx, slug)
	if err != nil {
		return nil, err
	}
	return json.Marshal(page)
}

// DecodePage reverses Load.
func DecodePage(data []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return &page, nil
}

// PrerenderResult lists what a Prerender pass generated and what it skipped.
type PrerenderResult struct {
	Generated []string
	Failed    map[string]error
}

// Prerender discovers every path and calls generate for each with bounded
// concurrency. A failing page is logged and skipped; only discovery failure
// is returned as an error.
func (s *PageService) Prerender(ctx context.Context, generate func(ctx context.Context, slug string) error) (*PrerenderResult, error) {
	slugs, err := s.Paths(ctx)
	if err != nil {
		return nil, err
	}

	result := &PrerenderResult{Failed: make(map[string]error)}
	var mutex sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prerenderLimit)
	for _, slug := range slugs {
		g.Go(func() error {
			err := generate(ctx, slug)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				s.logger.Error("prerender failed", "slug", slug, "error", err)
				result.Failed[slug] = err
				return nil
			}
			result.Generated = append(result.Generated, slug)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("prerender finished", "generated", len(result.Generated), "failed", len(result.Failed))
	return result, nil
}

// pageETag hashes everything the rendered page depends on.
func pageETag(page *Page) string {
	hash, _ := blake2b.New256(nil)
	post, _ := json.Marshal(page.Post)
	hash.Write(post)
	hash.Write([]byte(page.Body))
	hash.Write([]byte(page.HeroURL))
	hash.Write([]byte(page.AuthorImageURL))
	return `"` + hex.EncodeToString(hash.Sum(nil)[:16]) + `"`
}
