// Package registration registers the OpenAPI document served under /swagger/.
// Regenerate with:
//
//	swag init -g internal/registration/http/router.go -o api/registration --packageName registration
package registration

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/hackreg"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/regsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "ready", "schema": {"$ref": "#/definitions/regsdk.HealthResponse"}},
                    "503": {"description": "degraded", "schema": {"$ref": "#/definitions/regsdk.HealthResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/regsdk.CredentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "auth token and user", "schema": {"$ref": "#/definitions/regsdk.SessionResponse"}},
                    "400": {"description": "invalid email or short password", "schema": {"$ref": "#/definitions/regsdk.ErrorResponse"}},
                    "403": {"description": "registration closed or email not whitelisted", "schema": {"$ref": "#/definitions/regsdk.ErrorResponse"}},
                    "409": {"description": "email already registered", "schema": {"$ref": "#/definitions/regsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/regsdk.CredentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "auth token and user", "schema": {"$ref": "#/definitions/regsdk.SessionResponse"}},
                    "401": {"description": "unknown email or wrong password", "schema": {"$ref": "#/definitions/regsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "user", "schema": {"$ref": "#/definitions/regsdk.User"}}
                }
            }
        },
        "/v1/users/{id}/team": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Join or create a team",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/regsdk.TeamRequest"}}
                ],
                "responses": {
                    "200": {"description": "user", "schema": {"$ref": "#/definitions/regsdk.User"}},
                    "409": {"description": "team is full", "schema": {"$ref": "#/definitions/regsdk.ErrorResponse"}}
                }
            }
        },
        "/v1/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Event settings",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "settings", "schema": {"$ref": "#/definitions/regsdk.Settings"}}
                }
            }
        }
    },
    "definitions": {
        "regsdk.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/regsdk.FieldError"}}
            }
        },
        "regsdk.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "regsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "regsdk.CredentialsRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "regsdk.SessionResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/regsdk.User"}
            }
        },
        "regsdk.TeamRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}
            }
        },
        "regsdk.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "admin": {"type": "boolean"},
                "sponsor": {"type": "boolean"},
                "verified": {"type": "boolean"},
                "timestamp": {"type": "string"},
                "lastUpdated": {"type": "string"},
                "teamCode": {"type": "string"},
                "statusName": {"type": "string"}
            }
        },
        "regsdk.Settings": {
            "type": "object",
            "properties": {
                "timeOpen": {"type": "string"},
                "timeClose": {"type": "string"},
                "timeConfirm": {"type": "string"},
                "timeCloseSponsor": {"type": "string"},
                "whitelistedEmails": {"type": "array", "items": {"type": "string"}},
                "waitlistText": {"type": "string"},
                "acceptanceText": {"type": "string"},
                "confirmationText": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Auth token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Hackathon Registration API",
	Description:      "Applicant registration, admission, confirmation, teams and on-site event tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
