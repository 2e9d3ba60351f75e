package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devfolio/api/content"
)

// ContentHandlers serves the typed post/project records to the site pages.
type ContentHandlers struct {
	Library *content.Library
}

func NewContentHandlers(library *content.Library) *ContentHandlers {
	return &ContentHandlers{Library: library}
}

// ListPosts returns published posts, optionally filtered by ?tag=.
func (h *ContentHandlers) ListPosts(c *gin.Context) {
	posts := h.Library.Posts()

	if tag := c.Query("tag"); tag != "" {
		filtered := posts[:0:0]
		for _, post := range posts {
			for _, t := range post.Tags {
				if t == tag {
					filtered = append(filtered, post)
					break
				}
			}
		}
		posts = filtered
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *ContentHandlers) GetPost(c *gin.Context) {
	slug := c.Param("slug")
	post, ok := h.Library.PostBySlug(slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandlers) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"projects": h.Library.Projects()})
}

func (h *ContentHandlers) GetProject(c *gin.Context) {
	slug := c.Param("slug")
	project, ok := h.Library.ProjectBySlug(slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}
