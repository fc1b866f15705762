package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/": {
            "get": {
                "tags": ["Health"],
                "summary": "Service banner",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Service is running",
                        "schema": {"$ref": "#/definitions/ports.MessageResponse"}
                    }
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Reports the store files in use",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/scores": {
            "get": {
                "tags": ["scores"],
                "summary": "Top scores",
                "description": "Up to ten best scores, highest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Leaderboard",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/entities.ScoreEntry"}
                        }
                    }
                }
            }
        },
        "/submit": {
            "post": {
                "tags": ["scores"],
                "summary": "Submit a score",
                "description": "Record a score, keeping the best one per player name",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Score",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.SubmitScoreRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Score saved",
                        "schema": {"$ref": "#/definitions/ports.MessageResponse"}
                    },
                    "400": {
                        "description": "Invalid name or score",
                        "schema": {"$ref": "#/definitions/ports.ErrorResponse"}
                    },
                    "500": {
                        "description": "Score could not be persisted",
                        "schema": {"$ref": "#/definitions/ports.ErrorResponse"}
                    }
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["accounts"],
                "summary": "Register an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.CredentialsRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Registration successful",
                        "schema": {"$ref": "#/definitions/ports.MessageResponse"}
                    },
                    "400": {
                        "description": "Invalid credentials or username taken",
                        "schema": {"$ref": "#/definitions/ports.ErrorResponse"}
                    }
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["accounts"],
                "summary": "Check credentials",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Credentials",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.CredentialsRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful",
                        "schema": {"$ref": "#/definitions/ports.MessageResponse"}
                    },
                    "401": {
                        "description": "Wrong username or password",
                        "schema": {"$ref": "#/definitions/ports.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.ScoreEntry": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "score": {"type": "integer"}
            }
        },
        "ports.SubmitScoreRequest": {
            "type": "object",
            "required": ["name", "score"],
            "properties": {
                "name": {"type": "string", "minLength": 1},
                "score": {"type": "integer", "minimum": 0}
            }
        },
        "ports.CredentialsRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 20},
                "password": {"type": "string", "minLength": 3}
            }
        },
        "ports.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "ports.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Flapboard API",
	Description:      "Leaderboard and player accounts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
