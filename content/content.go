package content

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Post is one blog entry parsed from an .mdx file under blog/.
type Post struct {
	Slug         string    `json:"slug"`
	SlugAsParams string    `json:"slugAsParams"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Image        string    `json:"image,omitempty"`
	Date         time.Time `json:"date"`
	Published    bool      `json:"published"`
	Tags         []string  `json:"tags,omitempty"`
	Body         string    `json:"body"`
}

// Project is one portfolio project parsed from an .mdx file under projects/.
type Project struct {
	Slug         string    `json:"slug"`
	SlugAsParams string    `json:"slugAsParams"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Date         time.Time `json:"date,omitempty"`
	Published    bool      `json:"published"`
	Body         string    `json:"body"`
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Date        string   `yaml:"date"`
	Published   *bool    `yaml:"published"`
	Tags        []string `yaml:"tags"`
}

// Library loads and serves the typed content records backing the blog and
// projects pages. MDX bodies pass through untouched; compilation belongs to
// the frontend toolchain.
type Library struct {
	root string

	mu       sync.RWMutex
	posts    []Post
	projects []Project
}

// NewLibrary loads every record under root (blog/ and projects/ subdirs).
func NewLibrary(root string) (*Library, error) {
	l := &Library{root: root}
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load re-reads the whole content tree.
func (l *Library) Load() error {
	posts, err := loadPosts(filepath.Join(l.root, "blog"))
	if err != nil {
		return err
	}
	projects, err := loadProjects(filepath.Join(l.root, "projects"))
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.posts = posts
	l.projects = projects
	l.mu.Unlock()

	log.Info().Int("posts", len(posts)).Int("projects", len(projects)).Msg("Content library loaded")
	return nil
}

// Watch reloads the library whenever a content file changes. Blocks until the
// context is cancelled.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create content watcher: %w", err)
	}
	defer watcher.Close()

	dirs := []string{l.root, filepath.Join(l.root, "blog"), filepath.Join(l.root, "projects")}
	for _, dir := range dirs {
		if _, statErr := os.Stat(dir); statErr == nil {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := l.Load(); err != nil {
				log.Error().Err(err).Str("file", event.Name).Msg("Content reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Content watcher error")
		}
	}
}

// Posts returns published posts, newest first.
func (l *Library) Posts() []Post {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Post, 0, len(l.posts))
	for _, p := range l.posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out
}

// PostBySlug matches either the full slug ("blog/my-post") or the short form
// ("my-post"). Unpublished posts are not served.
func (l *Library) PostBySlug(slug string) (Post, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.posts {
		if p.Published && (p.Slug == slug || p.SlugAsParams == slug) {
			return p, true
		}
	}
	return Post{}, false
}

// Projects returns published projects, newest first.
func (l *Library) Projects() []Project {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Project, 0, len(l.projects))
	for _, p := range l.projects {
		if p.Published {
			out = append(out, p)
		}
	}
	return out
}

func (l *Library) ProjectBySlug(slug string) (Project, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.projects {
		if p.Published && (p.Slug == slug || p.SlugAsParams == slug) {
			return p, true
		}
	}
	return Project{}, false
}

func loadPosts(dir string) ([]Post, error) {
	var posts []Post
	err := walkContent(dir, func(slug string, fm frontMatter, body string) {
		posts = append(posts, Post{
			Slug:         slug,
			SlugAsParams: slugAsParams(slug),
			Title:        fm.Title,
			Description:  fm.Description,
			Image:        fm.Image,
			Date:         parseDate(fm.Date),
			Published:    fm.Published == nil || *fm.Published,
			Tags:         fm.Tags,
			Body:         body,
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
	return posts, nil
}

func loadProjects(dir string) ([]Project, error) {
	var projects []Project
	err := walkContent(dir, func(slug string, fm frontMatter, body string) {
		projects = append(projects, Project{
			Slug:         slug,
			SlugAsParams: slugAsParams(slug),
			Title:        fm.Title,
			Description:  fm.Description,
			Date:         parseDate(fm.Date),
			Published:    fm.Published == nil || *fm.Published,
			Body:         body,
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Date.After(projects[j].Date) })
	return projects, nil
}

func walkContent(dir string, visit func(slug string, fm frontMatter, body string)) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".mdx") {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		fm, body, err := splitFrontMatter(raw)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		rel, err := filepath.Rel(filepath.Dir(dir), path)
		if err != nil {
			return err
		}
		slug := strings.TrimSuffix(filepath.ToSlash(rel), ".mdx")
		visit(slug, fm, body)
		return nil
	})
}

// splitFrontMatter separates the leading YAML block (between --- delimiters)
// from the MDX body.
func splitFrontMatter(raw []byte) (frontMatter, string, error) {
	var fm frontMatter

	trimmed := bytes.TrimLeft(raw, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return fm, string(raw), nil
	}

	rest := trimmed[3:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return fm, string(raw), nil
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", err
	}

	body := rest[end+4:]
	if idx := bytes.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = nil
	}
	return fm, string(body), nil
}

func slugAsParams(slug string) string {
	parts := strings.Split(slug, "/")
	if len(parts) < 2 {
		return slug
	}
	return strings.Join(parts[1:], "/")
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
