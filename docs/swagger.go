// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness and database reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login credentials", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/projects": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "List accessible projects with task counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ProjectListItem"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Create a project and invite members",
                "parameters": [
                    {"description": "Project data", "name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateProjectInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ProjectEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/projects/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Project detail with tasks and notes",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectDetailResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Update a project",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Delete a project and everything attached to it",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MessageBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/api/projects/{id}/invite": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invites"],
                "summary": "Invite a registered user to a project",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.InviteEnvelope"}}
                }
            }
        },
        "/api/invites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Invites"],
                "summary": "Pending invites addressed to the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.InviteListResponse"}}
                }
            }
        },
        "/api/invites/{id}/respond": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invites"],
                "summary": "Accept or decline an invite",
                "parameters": [{"type": "string", "description": "Invite ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MessageBody"}}
                }
            }
        },
        "/api/projects/{id}/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "List project tasks",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "string", "description": "Priority filter", "name": "priority", "in": "query"},
                    {"type": "string", "description": "Title or description substring", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.TaskResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Create a task",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TaskEnvelope"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Get a task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Update a task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TaskEnvelope"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [{"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MessageBody"}}
                }
            }
        },
        "/api/projects/{id}/notes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "List project notes",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.NoteResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Add a note",
                "parameters": [{"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.NoteEnvelope"}}
                }
            }
        },
        "/api/notes/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Notes"],
                "summary": "Delete a note",
                "parameters": [{"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MessageBody"}}
                }
            }
        },
        "/api/uploads": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Uploads"],
                "summary": "Upload a file",
                "parameters": [
                    {"type": "file", "description": "File", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Project ID", "name": "projectId", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UploadEnvelope"}}
                }
            }
        },
        "/api/uploads/{filename}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Download a stored file",
                "parameters": [{"type": "string", "description": "Stored filename", "name": "filename", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Uploads"],
                "summary": "Delete a stored file",
                "parameters": [{"type": "string", "description": "Stored filename", "name": "filename", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MessageBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "database": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/handler.UserSummary"}
            }
        },
        "service.CreateProjectInput": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "price": {"type": "number"},
                "memberEmails": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.ProjectResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "price": {"type": "number"},
                "status": {"type": "string", "enum": ["ongoing", "completed", "on-hold"]},
                "owner": {"$ref": "#/definitions/handler.UserSummary"},
                "members": {"type": "array", "items": {"$ref": "#/definitions/handler.UserSummary"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.ProjectListItem": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/handler.ProjectResponse"}],
            "properties": {
                "tasksTotal": {"type": "integer"},
                "tasksCompleted": {"type": "integer"}
            }
        },
        "handler.ProjectEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "project": {"$ref": "#/definitions/handler.ProjectResponse"}
            }
        },
        "handler.ProjectDetailResponse": {
            "type": "object",
            "properties": {
                "project": {"$ref": "#/definitions/handler.ProjectResponse"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/handler.TaskResponse"}},
                "notes": {"type": "array", "items": {"$ref": "#/definitions/handler.NoteResponse"}}
            }
        },
        "handler.TaskResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "priority": {"type": "string"},
                "startDate": {"type": "string"},
                "dueDate": {"type": "string"},
                "price": {"type": "number"},
                "createdBy": {"$ref": "#/definitions/handler.UserSummary"},
                "assignees": {"type": "array", "items": {"$ref": "#/definitions/handler.UserSummary"}}
            }
        },
        "handler.TaskEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "task": {"$ref": "#/definitions/handler.TaskResponse"}
            }
        },
        "handler.NoteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "body": {"type": "string"},
                "createdBy": {"$ref": "#/definitions/handler.UserSummary"},
                "createdAt": {"type": "string"}
            }
        },
        "handler.NoteEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "note": {"$ref": "#/definitions/handler.NoteResponse"}
            }
        },
        "handler.InviteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "from": {"$ref": "#/definitions/handler.UserSummary"},
                "to": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "accepted", "declined"]},
                "createdAt": {"type": "string"}
            }
        },
        "handler.InviteEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "invite": {"$ref": "#/definitions/handler.InviteResponse"}
            }
        },
        "handler.InviteListResponse": {
            "type": "object",
            "properties": {
                "invites": {"type": "array", "items": {"$ref": "#/definitions/handler.InviteResponse"}}
            }
        },
        "handler.FileResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "originalName": {"type": "string"},
                "url": {"type": "string"},
                "mimeType": {"type": "string"},
                "size": {"type": "integer"},
                "uploadedAt": {"type": "string"},
                "projectId": {"type": "string"}
            }
        },
        "handler.UploadEnvelope": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "file": {"$ref": "#/definitions/handler.FileResponse"}
            }
        },
        "response.MessageBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "response.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "fields": {"type": "array", "items": {"type": "object"}},
                "details": {"type": "object"},
                "detail": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "ProjectHub API",
	Description:      "Multi-tenant projects with members, invites, tasks, notes and file uploads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
