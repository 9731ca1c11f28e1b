package handler

import (
	"errors"
	"net/http"

	"github.com/chatmarkmap/chatmarkmap/api/internal/chat"
	"github.com/chatmarkmap/chatmarkmap/api/internal/content"
	"github.com/chatmarkmap/chatmarkmap/api/internal/content/service"
	"github.com/chatmarkmap/chatmarkmap/api/internal/export"
	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/mindmap"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators of the content routes. Exports may be nil when
// object storage is not configured.
type Deps struct {
	Service     service.Service
	Transformer *mindmap.Transformer
	Exports     *export.Service
}

type createRequest struct {
	Title    string         `json:"title"`
	Prompt   string         `json:"prompt"`
	Content  string         `json:"content"`
	Messages []chat.Message `json:"messages" binding:"dive"`
}

// input resolves explicit fields first and falls back to the transcript.
func (r createRequest) input() service.CreateInput {
	in := service.CreateInput{Title: r.Title, Prompt: r.Prompt, Content: r.Content}
	if !chat.HasText(in.Prompt) {
		if m, ok := chat.LastPrompt(r.Messages); ok {
			in.Prompt = m.Content
		}
	}
	if !chat.HasText(in.Content) {
		if m, ok := chat.LastReply(r.Messages); ok {
			in.Content = m.Content
		}
	}
	return in
}

// RegisterContentRoutes mounts the owner-scoped content API on rg. rg must
// already run the auth middleware.
func RegisterContentRoutes(rg *gin.RouterGroup, d Deps) {
	svc := d.Service

	rg.GET("/contents", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), caller(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []*content.Content{}
		}
		c.JSON(http.StatusOK, list)
	})

	rg.POST("/contents", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, err := svc.Create(c.Request.Context(), caller(c), req.input())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})

	rg.GET("/contents/:id", func(c *gin.Context) {
		rec, err := svc.GetByID(c.Request.Context(), caller(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"content": nil})
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	rg.PATCH("/contents/:id/content", func(c *gin.Context) {
		var req struct {
			Content *string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, err := svc.UpdateContent(c.Request.Context(), caller(c), c.Param("id"), req.Content)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	rg.PATCH("/contents/:id/title", func(c *gin.Context) {
		var req struct {
			Title *string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rec, err := svc.UpdateTitle(c.Request.Context(), caller(c), c.Param("id"), req.Title)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	rg.DELETE("/contents/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.Delete(c.Request.Context(), caller(c), id); err != nil {
			writeError(c, err)
			return
		}
		if d.Exports != nil {
			if err := d.Exports.Forget(c.Request.Context(), id); err != nil {
				logger.Warnf("forget export of %s: %v", id, err)
			}
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/contents/:id/mindmap", func(c *gin.Context) {
		rec, err := svc.GetByID(c.Request.Context(), caller(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"content": nil})
			return
		}
		c.JSON(http.StatusOK, d.Transformer.Transform(rec.Content))
	})

	rg.POST("/contents/:id/export", func(c *gin.Context) {
		if d.Exports == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
			return
		}
		rec, err := svc.GetByID(c.Request.Context(), caller(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"content": nil})
			return
		}
		out, err := d.Exports.Export(c.Request.Context(), rec)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"key": out.Key, "url": out.URL, "size": out.Size, "createdAt": out.CreatedAt})
	})

	rg.GET("/contents/:id/export", func(c *gin.Context) {
		if d.Exports == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
			return
		}
		id := c.Param("id")
		rec, err := svc.GetByID(c.Request.Context(), caller(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if rec == nil {
			c.JSON(http.StatusNotFound, gin.H{"content": nil})
			return
		}
		out, err := d.Exports.Latest(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		if out == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no export yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": out.Key, "url": out.URL, "size": out.Size, "createdAt": out.CreatedAt})
	})
}

// RegisterTransformRoute mounts the stateless markdown to mind-map transform.
// It needs no caller.
func RegisterTransformRoute(rg *gin.RouterGroup, t *mindmap.Transformer) {
	rg.POST("/mindmap/transform", func(c *gin.Context) {
		var req struct {
			Source string `json:"source"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, t.Transform(req.Source))
	})
}

func caller(c *gin.Context) identity.Caller {
	return identity.FromContext(c.Request.Context())
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": content.ErrUnauthenticated.Error()})
	case errors.Is(err, content.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": content.ErrForbidden.Error()})
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": content.ErrNotFound.Error()})
	case errors.Is(err, content.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
