// Package docs registers the relay's OpenAPI document with swag.
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
        "/": {
            "get": {
                "description": "Return every stored reading; 204 when there is nothing to return",
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "List readings",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/models.Reading"}
                        }
                    },
                    "204": {"description": "No Content"},
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/errors.APIError"}
                    }
                }
            }
        },
        "/api/registrar": {
            "post": {
                "description": "Store one reading pushed by a receiver device",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Push a reading",
                "parameters": [
                    {
                        "description": "Reading",
                        "name": "reading",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.ReadingInput"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/resources.RegistrarAck"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/resources.RegistrarFailure"}
                    }
                }
            }
        }
    },
    "definitions": {
        "errors.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "details": {},
                "message": {"type": "string"},
                "request_id": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.Reading": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "receivedAt": {"type": "string"},
                "temperature": {"type": "number"}
            }
        },
        "models.ReadingInput": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "temperature": {"type": "number"}
            }
        },
        "resources.RegistrarAck": {
            "type": "object",
            "properties": {
                "mensagem": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "resources.RegistrarFailure": {
            "type": "object",
            "properties": {
                "erro": {"type": "string"}
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
	Title:            "coldrelay",
	Description:      "Cold-chain sensor relay: polls the receiver device and stores readings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
