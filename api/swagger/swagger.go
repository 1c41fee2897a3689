package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SafeTrack Incident API",
        "description": "Incident tracking service: users file, acknowledge, close and annotate incidents",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Signup and login"},
        {"name": "Users", "description": "User directory"},
        {"name": "Incidents", "description": "Incident lifecycle"},
        {"name": "Notes", "description": "Incident discussion threads"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Username taken", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain a token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "201": {"description": "Authenticated", "schema": {"$ref": "#/definitions/AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List registered users",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/UserSummary"}}}
                }
            }
        },
        "/incidents": {
            "get": {
                "tags": ["Incidents"],
                "summary": "List incidents assigned to or created by the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/IncidentDetail"}}}
                }
            },
            "post": {
                "tags": ["Incidents"],
                "summary": "Create an incident",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateIncidentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/IncidentDetail"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/export": {
            "get": {
                "tags": ["Incidents"],
                "summary": "Export the caller's incidents as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File contents"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/{incidentId}": {
            "put": {
                "tags": ["Incidents"],
                "summary": "Rename an incident (creator only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateIncidentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Updated", "schema": {"$ref": "#/definitions/IncidentDetail"}},
                    "400": {"description": "Validation failure or closed incident", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Incidents"],
                "summary": "Delete an incident (creator only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Unknown incident", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/{incidentId}/close": {
            "post": {
                "tags": ["Incidents"],
                "summary": "Close an incident (assignee only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Closed", "schema": {"$ref": "#/definitions/IncidentDetail"}},
                    "400": {"description": "Already closed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/{incidentId}/acknowledge": {
            "post": {
                "tags": ["Incidents"],
                "summary": "Acknowledge an incident, or reopen a closed one (assignee only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Acknowledged", "schema": {"$ref": "#/definitions/IncidentDetail"}},
                    "400": {"description": "Already acknowledged", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/{incidentId}/notes": {
            "post": {
                "tags": ["Notes"],
                "summary": "Add a note (creator or assignee)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/NoteDetail"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/incidents/{incidentId}/notes/{noteId}": {
            "put": {
                "tags": ["Notes"],
                "summary": "Edit a note (author only)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"},
                    {"name": "noteId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Updated", "schema": {"$ref": "#/definitions/NoteDetail"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete a note (author or incident creator)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "incidentId", "in": "path", "required": true, "type": "string"},
                    {"name": "noteId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Unknown note", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Access denied", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "AuthResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "UserSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "CreateIncidentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "assignee": {"type": "string"},
                "description": {"type": "string"},
                "type": {"type": "string", "enum": ["employee", "environmental", "property", "vehicle", "fire"]}
            },
            "required": ["title", "assignee", "description"]
        },
        "UpdateIncidentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            },
            "required": ["title"]
        },
        "IncidentDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "incidentType": {"type": "string"},
                "isResolved": {"type": "boolean"},
                "isAcknowledged": {"type": "boolean"},
                "assignee": {"$ref": "#/definitions/UserSummary"},
                "createdBy": {"$ref": "#/definitions/UserSummary"},
                "updatedBy": {"$ref": "#/definitions/UserSummary"},
                "closedBy": {"$ref": "#/definitions/UserSummary"},
                "acknowledgedBy": {"$ref": "#/definitions/UserSummary"},
                "closedAt": {"type": "string"},
                "acknowledgedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "notes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/NoteDetail"}
                }
            }
        },
        "NoteRequest": {
            "type": "object",
            "properties": {
                "body": {"type": "string"}
            },
            "required": ["body"]
        },
        "NoteDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "incidentId": {"type": "string"},
                "body": {"type": "string"},
                "author": {"$ref": "#/definitions/UserSummary"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
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
