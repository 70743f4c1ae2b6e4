// Package docs holds the OpenAPI description served at /swagger.
// Keep it in sync with the godoc annotations in internal/interfaces/http/handler.
package docs

import "github.com/swaggo/swag/v2"

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
        "/generate-pdf": {
            "post": {
                "description": "Draws the submitted fields onto the agreement template of the default layout and returns the PDF",
                "consumes": ["application/json"],
                "produces": ["application/pdf"],
                "tags": ["agreements"],
                "summary": "Generate an agreement PDF",
                "operationId": "generateAgreementPDF",
                "parameters": [
                    {
                        "description": "Field values",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.GenerateAgreementRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/agreements/generate": {
            "post": {
                "description": "Draws the submitted fields onto the template of the named layout and returns the document",
                "consumes": ["application/json"],
                "produces": ["application/pdf", "image/png"],
                "tags": ["agreements"],
                "summary": "Generate an agreement document",
                "operationId": "generateAgreement",
                "parameters": [
                    {
                        "enum": ["pdf", "png"],
                        "type": "string",
                        "default": "pdf",
                        "description": "Document format",
                        "name": "format",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Layout name; the default layout when empty",
                        "name": "layout",
                        "in": "query"
                    },
                    {
                        "description": "Field values",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.GenerateAgreementRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/agreements/layouts": {
            "get": {
                "description": "Returns every layout with its field positions, default layout first",
                "produces": ["application/json"],
                "tags": ["agreements"],
                "summary": "List agreement layouts",
                "operationId": "listAgreementLayouts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/agreement.LayoutResponse"}}
                    }
                }
            }
        },
        "/api/v1/agreements/layouts/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["agreements"],
                "summary": "Get an agreement layout",
                "operationId": "getAgreementLayout",
                "parameters": [
                    {"type": "string", "description": "Layout name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/agreement.LayoutResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness check",
                "operationId": "getHealth",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "agreement.FieldLayout": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "id": {"type": "string"},
                "size": {"type": "number"},
                "x": {"type": "integer"},
                "y": {"type": "integer"}
            }
        },
        "agreement.LayoutResponse": {
            "type": "object",
            "properties": {
                "default": {"type": "boolean"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/agreement.FieldLayout"}},
                "font": {"type": "string"},
                "font_size": {"type": "number"},
                "identifier_field": {"type": "string"},
                "name": {"type": "string"},
                "template": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "RESOURCE_NOT_FOUND"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationDetail"}},
                "error": {"type": "string", "example": "Sample agreement image not found: sample_agreement.png"},
                "request_id": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.GenerateAgreementRequest": {
            "type": "object",
            "additionalProperties": {"type": "string"}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Hotel Agreement API",
	Description:      "Renders hotel agreement documents from submitted field values.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
