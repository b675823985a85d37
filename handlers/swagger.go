package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a Swagger UI page and the OpenAPI document.
// - GET /swagger/index.html
// - GET /swagger/doc.json
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>newsdesk API</title>
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
  "info": { "title": "newsdesk", "version": "v1" },
  "servers": [{ "url": "/api/v1" }],
  "components": {
    "securitySchemes": {
      "session": { "type": "apiKey", "in": "cookie", "name": "newsdesk_session" },
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" }
    }
  },
  "paths": {
    "/auth/login": { "post": { "summary": "Password login, sets the session cookie", "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "email": { "type": "string" }, "password": { "type": "string" } } } } } }, "responses": { "200": { "description": "author and session" }, "401": { "description": "bad credentials" }, "403": { "description": "account not approved" } } } },
    "/auth/refresh": { "post": { "summary": "Rotate the session and issue a new access token", "responses": { "200": { "description": "new session" }, "401": { "description": "no or expired session" } } } },
    "/auth/logout": { "post": { "summary": "End the session and revoke the bearer token", "responses": { "200": { "description": "logged out" } } } },
    "/auth/me": { "get": { "summary": "Current author", "responses": { "200": { "description": "author" }, "401": { "description": "anonymous" } } } },
    "/auth/providers": { "get": { "summary": "Configured OAuth providers", "responses": { "200": { "description": "provider names" } } } },
    "/auth/oauth/{provider}/login": { "get": { "summary": "Redirect to the provider", "responses": { "302": { "description": "redirect" }, "404": { "description": "unknown provider" } } } },
    "/auth/oauth/{provider}/callback": { "get": { "summary": "Complete the OAuth flow", "responses": { "200": { "description": "session" }, "302": { "description": "redirect to site" }, "400": { "description": "state mismatch" } } } },
    "/editions": { "get": { "summary": "Editions and their languages", "responses": { "200": { "description": "editions" } } } },
    "/post": {
      "get": { "summary": "List posts; anonymous callers only see published ones", "parameters": [{ "name": "edition", "in": "query" }, { "name": "lang", "in": "query" }, { "name": "section", "in": "query" }, { "name": "author", "in": "query" }, { "name": "status", "in": "query" }, { "name": "tag", "in": "query" }, { "name": "page", "in": "query" }, { "name": "limit", "in": "query" }], "responses": { "200": { "description": "page of posts" } } },
      "post": { "summary": "Create a draft", "responses": { "201": { "description": "created" }, "400": { "description": "validation failed" } } }
    },
    "/post/{id}": {
      "get": { "summary": "Get a post", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a post", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a post", "responses": { "204": { "description": "deleted" } } }
    },
    "/post/slug/{edition}/{slug}": { "get": { "summary": "Published post by slug", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } } },
    "/post/{id}/publish": { "post": { "summary": "Publish", "responses": { "200": { "description": "published" }, "403": { "description": "author not approved" } } } },
    "/post/{id}/unpublish": { "post": { "summary": "Back to draft", "responses": { "200": { "description": "draft" } } } },
    "/post/{id}/archive": { "post": { "summary": "Archive", "responses": { "200": { "description": "archived" } } } },
    "/section": {
      "get": { "summary": "List sections", "parameters": [{ "name": "page", "in": "query" }, { "name": "edition", "in": "query" }], "responses": { "200": { "description": "sections" } } },
      "post": { "summary": "Create a section", "responses": { "201": { "description": "created" } } }
    },
    "/section/{id}": {
      "get": { "summary": "Get a section", "responses": { "200": { "description": "section" } } },
      "put": { "summary": "Update a section", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a section", "responses": { "204": { "description": "deleted" } } }
    },
    "/section/{id}/posts": { "post": { "summary": "Add a post at index", "responses": { "200": { "description": "section" } } } },
    "/section/{id}/posts/{postId}": { "delete": { "summary": "Remove a post", "responses": { "200": { "description": "section" } } } },
    "/section/{id}/move": { "post": { "summary": "Move a post from one index to another", "responses": { "200": { "description": "section" } } } },
    "/section/{id}/order": { "put": { "summary": "Replace the post order", "responses": { "200": { "description": "section" } } } },
    "/section/{id}/highlight": { "put": { "summary": "Toggle the highlight slot", "responses": { "200": { "description": "section" } } } },
    "/page": {
      "get": { "summary": "List pages", "responses": { "200": { "description": "pages" } } },
      "post": { "summary": "Create a page", "responses": { "201": { "description": "created" } } }
    },
    "/page/{edition}/{slug}": { "get": { "summary": "Composed page with sections and post cards", "responses": { "200": { "description": "composed page" } } } },
    "/page/{id}": {
      "put": { "summary": "Update a page", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete a page and unassign its sections", "responses": { "204": { "description": "deleted" } } }
    },
    "/page/{id}/sections": { "put": { "summary": "Reorder the page's sections", "responses": { "200": { "description": "sections" } } } },
    "/author": {
      "get": { "summary": "List authors (staff)", "responses": { "200": { "description": "authors" } } },
      "post": { "summary": "Register; the account starts pending", "responses": { "201": { "description": "created" }, "409": { "description": "email taken" } } }
    },
    "/author/{id}": {
      "get": { "summary": "Author profile", "responses": { "200": { "description": "author" } } },
      "put": { "summary": "Update own profile", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete an author (admin)", "responses": { "204": { "description": "deleted" } } }
    },
    "/author/{id}/review": { "post": { "summary": "Approve, reject, suspend, reinstate or reopen", "responses": { "200": { "description": "reviewed" }, "409": { "description": "transition not allowed" } } } },
    "/author/{id}/role": { "put": { "summary": "Change role (admin)", "responses": { "200": { "description": "updated" } } } },
    "/ads": {
      "get": { "summary": "List ads (staff)", "responses": { "200": { "description": "ads" } } },
      "post": { "summary": "Create an ad", "responses": { "201": { "description": "created" } } }
    },
    "/ads/serve": { "get": { "summary": "Serve an ad for a placement", "parameters": [{ "name": "placement", "in": "query" }, { "name": "edition", "in": "query" }], "responses": { "200": { "description": "ad" }, "204": { "description": "no ad available" } } } },
    "/ads/{id}": {
      "get": { "summary": "Get an ad", "responses": { "200": { "description": "ad" } } },
      "put": { "summary": "Update an ad", "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Delete an ad", "responses": { "204": { "description": "deleted" } } }
    },
    "/ads/{id}/click": { "get": { "summary": "Count a click and redirect", "responses": { "302": { "description": "redirect to target" } } } },
    "/newsletter/subscribe": { "post": { "summary": "Subscribe", "responses": { "201": { "description": "created" }, "200": { "description": "reissued, resubscribed or already subscribed" } } } },
    "/newsletter/confirm/{token}": { "get": { "summary": "Confirm a subscription", "responses": { "200": { "description": "active" }, "404": { "description": "unknown token" } } } },
    "/newsletter/unsubscribe/{token}": { "post": { "summary": "Unsubscribe", "responses": { "200": { "description": "unsubscribed" }, "404": { "description": "unknown token" } } } },
    "/newsletter/subscribers": { "get": { "summary": "List subscribers (admin)", "responses": { "200": { "description": "subscribers" } } } },
    "/search": { "get": { "summary": "Ranked search over published posts", "parameters": [{ "name": "q", "in": "query" }, { "name": "edition", "in": "query" }, { "name": "lang", "in": "query" }, { "name": "range", "in": "query" }, { "name": "from", "in": "query" }, { "name": "to", "in": "query" }, { "name": "section", "in": "query" }], "responses": { "200": { "description": "results and topics" }, "400": { "description": "invalid query" } } } },
    "/upload": { "post": { "summary": "Upload an image (multipart field file)", "responses": { "201": { "description": "stored" }, "413": { "description": "too large" } } } },
    "/improve": { "post": { "summary": "Rewrite text with the AI upstream", "responses": { "200": { "description": "rewritten text" }, "429": { "description": "rate limited" }, "503": { "description": "not configured" } } } },
    "/improve/modes": { "get": { "summary": "Supported rewrite modes", "responses": { "200": { "description": "modes" } } } }
  }
}`
