package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Issue API",
        "description": "Academic issue tracking for students, faculty and administrators",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token lifecycle"},
        {"name": "Issues", "description": "Issue lifecycle: create, assign, status history, escalation, comments"},
        {"name": "Attachments", "description": "File upload and download for issues"},
        {"name": "Notifications", "description": "Per-user inbox"},
        {"name": "Analytics", "description": "Admin dashboards and exports"},
        {"name": "Users", "description": "User directory"},
        {"name": "Audit", "description": "Admin audit trail"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/issues": {
            "get": {
                "tags": ["Issues"],
                "summary": "List issues visible to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Issues"],
                "summary": "Submit a new issue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateIssueRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/issues/{id}": {
            "get": {
                "tags": ["Issues"],
                "summary": "Issue detail with status history, comments and attachments",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not a participant"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/issues/{id}/assign": {
            "post": {
                "tags": ["Issues"],
                "summary": "Assign issue to a faculty member (admin only)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/issues/{id}/status": {
            "post": {
                "tags": ["Issues"],
                "summary": "Append a status record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/issues/{id}/escalate": {
            "post": {
                "tags": ["Issues"],
                "summary": "Escalate an issue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/issues/{id}/comments": {
            "post": {
                "tags": ["Issues"],
                "summary": "Comment on an issue",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/issues/{id}/attachments": {
            "post": {
                "tags": ["Attachments"],
                "summary": "Attach a file to an issue",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "File too large or wrong type"}}
            }
        },
        "/attachments/{id}": {
            "get": {
                "tags": ["Attachments"],
                "summary": "Download an attachment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "produces": ["application/octet-stream"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not found"}}
            }
        },
        "/notifications/read-all": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications as read",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/analytics/issues-by-status": {
            "get": {"tags": ["Analytics"], "summary": "Issue counts by latest status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/issues-by-category": {
            "get": {"tags": ["Analytics"], "summary": "Issue counts by category", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/resolution-time": {
            "get": {"tags": ["Analytics"], "summary": "Average resolution time", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/faculty-performance": {
            "get": {"tags": ["Analytics"], "summary": "Per-faculty workload metrics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/trends": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Created/resolved trend buckets",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "period", "in": "query", "type": "string", "enum": ["week", "month", "year"]}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analytics/system": {
            "get": {"tags": ["Analytics"], "summary": "Instrumentation snapshot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/export": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export analytics as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "produces": ["application/octet-stream"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "get": {"tags": ["Users"], "summary": "List users (admin only)", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/faculty": {
            "get": {"tags": ["Users"], "summary": "List active faculty", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/audit-logs": {
            "get": {"tags": ["Audit"], "summary": "List audit log entries (admin only)", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["full_name", "email", "password"],
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "department": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateIssueRequest": {
            "type": "object",
            "required": ["title", "description", "category", "priority"],
            "properties": {
                "title": {"type": "string", "minLength": 5},
                "description": {"type": "string", "minLength": 10},
                "category": {"type": "string", "enum": ["GRADE_DISPUTE", "CLASS_SCHEDULE", "FACULTY_CONCERN", "COURSE_REGISTRATION", "GRADUATION_REQUIREMENT", "OTHER"]},
                "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH", "URGENT"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "page_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
