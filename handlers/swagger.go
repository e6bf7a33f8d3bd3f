package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
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
    <title>thanima-connect — Swagger</title>
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
  "info": { "title": "thanima-connect", "version": "v1.0.0" },
  "paths": {
    "/api/applications": {
      "post": {
        "summary": "Submit an application",
        "requestBody": { "content": {
          "application/json": { "schema": { "$ref": "#/components/schemas/Application" } },
          "multipart/form-data": { "schema": { "allOf": [ { "$ref": "#/components/schemas/Application" }, { "type": "object", "properties": { "resume": { "type": "string", "format": "binary" } } } ] } }
        } },
        "responses": {
          "200": { "description": "stored" },
          "400": { "description": "invalid data, fieldErrors lists each field" },
          "409": { "description": "registration number already applied" },
          "429": { "description": "rate limited" },
          "500": { "description": "storage failure" }
        }
      }
    },
    "/api/departments": { "get": { "summary": "Department catalog", "responses": { "200": { "description": "name and description per department" } } } },
    "/admin/login": {
      "get": { "summary": "Login form description", "responses": { "200": { "description": "form fields" } } },
      "post": { "summary": "Start an admin session", "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": { "type": "object", "properties": { "password": { "type": "string" } } } } } }, "responses": { "303": { "description": "cookie set, redirect to /admin; or redirect back with ?error" } } }
    },
    "/admin/logout": { "post": { "summary": "End the admin session", "responses": { "303": { "description": "redirect to /admin/login" } } } },
    "/api/admin/submissions": { "get": { "summary": "List submissions", "responses": { "200": { "description": "array of submissions" }, "303": { "description": "not signed in" } } } },
    "/api/admin/submissions/{id}": { "delete": { "summary": "Delete a submission", "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } } ], "responses": { "200": { "description": "deleted" }, "404": { "description": "no such submission" } } } },
    "/api/admin/export/csv": { "get": { "summary": "Export submissions as CSV", "responses": { "200": { "description": "{content}" } } } },
    "/api/admin/export/files": { "get": { "summary": "Export résumés as a base64 zip", "responses": { "200": { "description": "{content} or {content:'', error}" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  },
  "components": { "schemas": { "Application": { "type": "object",
    "required": ["name","regNo","branchAndYear","email","phone","primaryPreference","secondaryPreference","departmentJustification","skillsAndExperience"],
    "properties": {
      "name": { "type": "string", "minLength": 2 },
      "regNo": { "type": "string", "pattern": "^[1-9][0-9][A-Z]{3}[0-9]{4}$" },
      "branchAndYear": { "type": "string" },
      "email": { "type": "string", "format": "email" },
      "phone": { "type": "string", "minLength": 10 },
      "previousExperience": { "type": "string" },
      "primaryPreference": { "$ref": "#/components/schemas/Department" },
      "secondaryPreference": { "$ref": "#/components/schemas/Department" },
      "tertiaryPreference": { "$ref": "#/components/schemas/Department" },
      "departmentJustification": { "type": "string" },
      "skillsAndExperience": { "type": "string" },
      "bonusEssay1": { "type": "string" },
      "bonusEssay2": { "type": "string" }
    } },
    "Department": { "type": "string", "enum": ["Logistics","Events","Marketing","Media","Design","Finance"] }
  } }
}`
