package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContent(t *testing.T, root, rel, data string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	root := t.TempDir()

	writeContent(t, root, "blog/first-post.mdx", `---
title: First Post
description: The first one
date: 2024-01-10
tags:
  - go
  - redis
---

# Hello

Body of the first post.
`)
	writeContent(t, root, "blog/second-post.mdx", `---
title: Second Post
date: 2024-03-05
---

Second body.
`)
	writeContent(t, root, "blog/draft.mdx", `---
title: Draft
date: 2024-04-01
published: false
---

Not ready yet.
`)
	writeContent(t, root, "projects/portfolio.mdx", `---
title: Portfolio
description: This site
date: 2023-11-20
---

Project body.
`)

	l, err := NewLibrary(root)
	require.NoError(t, err)
	return l
}

func TestPostsFiltersAndSorts(t *testing.T) {
	l := newTestLibrary(t)

	posts := l.Posts()
	require.Len(t, posts, 2, "drafts stay hidden")
	assert.Equal(t, "Second Post", posts[0].Title, "newest first")
	assert.Equal(t, "First Post", posts[1].Title)
	assert.Equal(t, []string{"go", "redis"}, posts[1].Tags)
	assert.Contains(t, posts[1].Body, "Body of the first post.")
}

func TestPostBySlug(t *testing.T) {
	l := newTestLibrary(t)

	post, ok := l.PostBySlug("blog/first-post")
	require.True(t, ok)
	assert.Equal(t, "First Post", post.Title)
	assert.Equal(t, "first-post", post.SlugAsParams)

	short, ok := l.PostBySlug("first-post")
	require.True(t, ok)
	assert.Equal(t, post.Slug, short.Slug)

	_, ok = l.PostBySlug("draft")
	assert.False(t, ok, "unpublished posts are not served")

	_, ok = l.PostBySlug("missing")
	assert.False(t, ok)
}

func TestProjects(t *testing.T) {
	l := newTestLibrary(t)

	projects := l.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Portfolio", projects[0].Title)

	project, ok := l.ProjectBySlug("projects/portfolio")
	require.True(t, ok)
	assert.Contains(t, project.Body, "Project body.")
}

func TestLoadMissingDirs(t *testing.T) {
	l, err := NewLibrary(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, l.Posts())
	assert.Empty(t, l.Projects())
}

func TestSplitFrontMatter(t *testing.T) {
	fm, body, err := splitFrontMatter([]byte("---\ntitle: Hi\n---\n\nBody here.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hi", fm.Title)
	assert.Equal(t, "\nBody here.\n", body)

	fm, body, err = splitFrontMatter([]byte("No front matter at all.\n"))
	require.NoError(t, err)
	assert.Empty(t, fm.Title)
	assert.Equal(t, "No front matter at all.\n", body)
}
