// Package docs registers the OpenAPI document served under /swagger/.
// It can be regenerated from the controller annotations with
// swag init -g cmd/server/main.go; TestAPIDocMatchesRouter in the http package
// fails when routes, annotations and this document disagree.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new member",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.AuthSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.AuthSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Log out",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "data.status: logged out", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["users"],
                "summary": "List members",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.UserSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update current user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/domain.UserPatch"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.UserSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userID}": {
            "get": {
                "tags": ["users"],
                "summary": "Get a member profile",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "userID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.UserSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userID}/events": {
            "get": {
                "tags": ["users"],
                "summary": "Events organized by a member",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "userID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventsSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/me/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Dashboard",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventsSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["events"],
                "summary": "Browse events",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Create an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/filters": {
            "get": {
                "tags": ["events"],
                "summary": "Filter values",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/events/featured": {
            "get": {
                "tags": ["events"],
                "summary": "Featured events",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}}
            }
        },
        "/events/{eventID}": {
            "get": {
                "tags": ["events"],
                "summary": "Get an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Update an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/domain.EventPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Delete an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "data.status: deleted", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}/attendance": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Attend or leave an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "eventID", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.AttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/wallet": {
            "get": {
                "tags": ["wallet"],
                "summary": "Wallet session",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.WalletSuccessResponse"}}}
            }
        },
        "/wallet/connect": {
            "post": {
                "tags": ["wallet"],
                "summary": "Connect a wallet",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.WalletSuccessResponse"}}}
            }
        },
        "/wallet/disconnect": {
            "post": {
                "tags": ["wallet"],
                "summary": "Disconnect the wallet",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.WalletSuccessResponse"}}}
            }
        }
    },
    "definitions": {
        "helpers.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.RegisterRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}
        },
        "controllers.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "controllers.AuthSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "token": {"type": "string"},
                        "token_type": {"type": "string"},
                        "user": {"$ref": "#/definitions/domain.User"}
                    }
                },
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.UserSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/domain.User"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.EventsSuccessResponse": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/domain.Event"}}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.EventSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/domain.Event"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.CreateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "location": {"type": "string"},
                "isVirtual": {"type": "boolean"},
                "virtualLink": {"type": "string"},
                "imageUrl": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "number"},
                "externalUrl": {"type": "string"}
            }
        },
        "controllers.AttendanceRequest": {
            "type": "object",
            "properties": {"attending": {"type": "boolean"}}
        },
        "controllers.WalletSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {"connected": {"type": "boolean"}, "address": {"type": "string"}, "balance": {"type": "string"}}
                },
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "bio": {"type": "string"},
                "location": {"type": "string"},
                "joinedDate": {"type": "string"},
                "eventsAttended": {"type": "integer"},
                "connections": {"type": "integer"},
                "interests": {"type": "array", "items": {"type": "string"}},
                "twitter": {"type": "string"},
                "linkedin": {"type": "string"},
                "website": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "domain.UserPatch": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "bio": {"type": "string"},
                "location": {"type": "string"},
                "eventsAttended": {"type": "integer"},
                "connections": {"type": "integer"},
                "interests": {"type": "array", "items": {"type": "string"}},
                "twitter": {"type": "string"},
                "linkedin": {"type": "string"},
                "website": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "domain.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "location": {"type": "string"},
                "isVirtual": {"type": "boolean"},
                "virtualLink": {"type": "string"},
                "imageUrl": {"type": "string"},
                "category": {"type": "string"},
                "organizer": {"type": "string"},
                "organizerId": {"type": "string"},
                "attendees": {"type": "array", "items": {"type": "string"}},
                "price": {"type": "number"},
                "externalUrl": {"type": "string"},
                "createdAt": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "domain.EventPatch": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "location": {"type": "string"},
                "isVirtual": {"type": "boolean"},
                "virtualLink": {"type": "string"},
                "imageUrl": {"type": "string"},
                "category": {"type": "string"},
                "organizer": {"type": "string"},
                "attendees": {"type": "array", "items": {"type": "string"}},
                "price": {"type": "number"},
                "externalUrl": {"type": "string"},
                "expectedVersion": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Community Hub API",
	Description:      "Members, events, and a simulated wallet for a local community hub.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
