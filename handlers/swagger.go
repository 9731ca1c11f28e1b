package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the content API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>chatmarkmap API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "chatmarkmap", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } },
    "schemas": {
      "Content": { "type": "object", "properties": {
        "id": {"type":"string"}, "title": {"type":"string"}, "author": {"type":"string"},
        "prompt": {"type":"string"}, "content": {"type":"string"},
        "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"} } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/api/contents": {
      "get": { "summary": "List the caller's contents, newest first", "responses": { "200": { "description": "contents" }, "401": { "description": "not authenticated" } } },
      "post": {
        "summary": "Save a mind-map source",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"prompt":{"type":"string"},"content":{"type":"string"},"messages":{"type":"array","items":{"type":"object","properties":{"role":{"type":"string"},"content":{"type":"string"}}}}}}}}},
        "responses": { "201": { "description": "id of the new record" }, "400": { "description": "prompt or content missing" } }
      }
    },
    "/api/contents/{id}": {
      "get": { "summary": "Get one content", "responses": { "200": { "description": "content" }, "403": { "description": "owned by another caller" }, "404": { "description": "{\"content\":null}" } } },
      "delete": { "summary": "Delete one content", "responses": { "204": { "description": "deleted" }, "403": { "description": "forbidden" }, "404": { "description": "not found" } } }
    },
    "/api/contents/{id}/content": {
      "patch": { "summary": "Replace the mind-map source; empty keeps the stored value", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"content":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated content" } } }
    },
    "/api/contents/{id}/title": {
      "patch": { "summary": "Rename; empty keeps the stored title", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated content" } } }
    },
    "/api/contents/{id}/mindmap": {
      "get": { "summary": "Mind-map tree of a saved content", "responses": { "200": { "description": "node tree" } } }
    },
    "/api/contents/{id}/export": {
      "post": { "summary": "Snapshot the source to object storage", "responses": { "201": { "description": "key and presigned url" }, "503": { "description": "storage not configured" } } },
      "get": { "summary": "Latest snapshot with a fresh url", "responses": { "200": { "description": "key and presigned url" }, "404": { "description": "no export" } } }
    },
    "/api/mindmap/transform": {
      "post": { "summary": "Transform markdown into a mind-map tree", "security": [], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"source":{"type":"string"}}}}}}, "responses": { "200": { "description": "node tree" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Revoke the presented access token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Caller profile", "responses": { "200": { "description": "user" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "security": [], "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "security": [], "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
