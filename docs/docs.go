// Package docs holds the OpenAPI description served under /swagger/.
// Regenerate with `swag init -g cmd/server/main.go` after changing the
// controller annotations.
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
        "/users/{userId}/requests": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "List a user's participation requests",
                "parameters": [
                    {"type": "integer", "description": "Requester id", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RequestListSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "description": "Creates a participation request. It is CONFIRMED at once when the event has no moderation or no limit, otherwise PENDING.",
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Ask to join an event",
                "parameters": [
                    {"type": "integer", "description": "Requester id", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Event id", "name": "eventId", "in": "query", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.RequestSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict (duplicate, self-request, not published, limit reached)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/requests/{requestId}/cancel": {
            "patch": {
                "description": "Cancels the request and frees its seat if it was confirmed. Canceling twice succeeds.",
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Cancel own participation request",
                "parameters": [
                    {"type": "integer", "description": "Requester id", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Request id", "name": "requestId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RequestSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/users/{userId}/events/{eventId}/requests": {
            "get": {
                "description": "Organizer view of every request for the event.",
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "List requests to join an event",
                "parameters": [
                    {"type": "integer", "description": "Organizer id", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Event id", "name": "eventId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RequestListSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "description": "All listed requests must be PENDING. When confirming, seats are handed out in the order of requestIds and the rest are rejected. Nothing changes on error.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "Confirm or reject pending requests",
                "parameters": [
                    {"type": "integer", "description": "Organizer id", "name": "userId", "in": "path", "required": true},
                    {"type": "integer", "description": "Event id", "name": "eventId", "in": "path", "required": true},
                    {"description": "Requests and target status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateRequestsStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.DecisionSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict (not all pending, limit reached)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/internal/requests/events/confirmed": {
            "post": {
                "description": "Internal endpoint for other services. Returns the number of confirmed requests per event id, zero included.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["internal"],
                "summary": "Confirmed seat counts",
                "parameters": [
                    {"description": "Event ids", "name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"type": "integer"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ConfirmedCountsSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.ConfirmedCountsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "object", "additionalProperties": {"type": "integer"}},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.DecisionSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.DecisionResult"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.RequestListSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.RequestSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.ParticipationRequest"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.UpdateRequestsStatusRequest": {
            "type": "object",
            "properties": {
                "requestIds": {"type": "array", "items": {"type": "integer"}},
                "status": {"type": "string", "enum": ["CONFIRMED", "REJECTED"]}
            }
        },
        "domain.DecisionResult": {
            "type": "object",
            "properties": {
                "confirmedRequests": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}},
                "rejectedRequests": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}}
            }
        },
        "domain.ParticipationRequest": {
            "type": "object",
            "properties": {
                "created": {"type": "string", "format": "date-time"},
                "event": {"type": "integer"},
                "id": {"type": "integer"},
                "requester": {"type": "integer"},
                "status": {"type": "string", "enum": ["PENDING", "CONFIRMED", "REJECTED", "CANCELED"]}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Participation API",
	Description:      "Admission control for event participation requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
