package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DCU Student Portal API",
        "description": "Club directory, interactive directory sessions and theme preferences for the student portal.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Clubs", "description": "Stateless club directory queries"},
        {"name": "Directory", "description": "Interactive directory sessions with debounced search"},
        {"name": "Preferences", "description": "Per-client light/dark theme"},
        {"name": "Observability", "description": "Runtime counters"}
    ],
    "paths": {
        "/clubs": {
            "get": {
                "tags": ["Clubs"],
                "summary": "List clubs",
                "description": "Search, filter, sort and paginate the club directory. Out-of-range pages are clamped.",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string", "maxLength": 100},
                    {"name": "category", "in": "query", "type": "string", "enum": ["all", "recruiting", "academic", "arts", "sports", "volunteer", "hobby"]},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["name", "memberCount", "category", "establishedYear"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Directory unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clubs/popular": {
            "get": {
                "tags": ["Clubs"],
                "summary": "Most popular clubs",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 50}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clubs/stats": {
            "get": {
                "tags": ["Clubs"],
                "summary": "Directory statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clubs/export": {
            "get": {
                "tags": ["Clubs"],
                "summary": "Export the filtered directory",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clubs/{id}": {
            "get": {
                "tags": ["Clubs"],
                "summary": "Club detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/clubs/{id}/join": {
            "post": {
                "tags": ["Clubs"],
                "summary": "Apply to join a club",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/directory/sessions": {
            "post": {
                "tags": ["Directory"],
                "summary": "Open a directory session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Directory unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/directory/sessions/{id}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Current session view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Directory"],
                "summary": "Close a directory session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/directory/sessions/{id}/intents": {
            "post": {
                "tags": ["Directory"],
                "summary": "Send an intent to a session",
                "description": "Searches are debounced unless immediate is set; the resulting view is pushed on the events stream.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IntentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/directory/sessions/{id}/events": {
            "get": {
                "tags": ["Directory"],
                "summary": "Stream session views",
                "produces": ["text/event-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "event stream"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/preferences/theme": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Resolve the client's theme",
                "parameters": [
                    {"name": "X-Client-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "Sec-CH-Prefers-Color-Scheme", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Save the client's theme",
                "parameters": [
                    {"name": "X-Client-ID", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ThemeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Preferences"],
                "summary": "Forget the saved theme",
                "parameters": [
                    {"name": "X-Client-ID", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/preferences/theme/toggle": {
            "post": {
                "tags": ["Preferences"],
                "summary": "Switch between light and dark",
                "parameters": [
                    {"name": "X-Client-ID", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Observability"],
                "summary": "Runtime counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "IntentRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["search", "category", "sort", "page", "page_delta"]},
                "text": {"type": "string", "maxLength": 100},
                "category": {"type": "string"},
                "sort": {"type": "string"},
                "page": {"type": "integer"},
                "delta": {"type": "integer"},
                "immediate": {"type": "boolean"}
            },
            "required": ["type"]
        },
        "ThemeRequest": {
            "type": "object",
            "properties": {
                "theme": {"type": "string", "enum": ["light", "dark"]}
            },
            "required": ["theme"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_prev": {"type": "boolean"},
                "has_next": {"type": "boolean"},
                "page_numbers": {"type": "array", "items": {"type": "integer"}}
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
