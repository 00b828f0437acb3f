// Package docs registers the Swagger document served at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/candidates/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "List candidates",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/candidate.Candidate"}}
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Create a candidate",
                "parameters": [
                    {
                        "description": "Candidate",
                        "name": "candidate",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/candidate.Input"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/candidate.Candidate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/candidates/filter/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Filter and sort candidates",
                "parameters": [
                    {"type": "string", "description": "Applied role (case-insensitive)", "name": "role", "in": "query"},
                    {
                        "enum": ["Pending", "In Process", "Selected", "Rejected", "Accepted"],
                        "type": "string",
                        "description": "Status",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "enum": ["Screening", "Design Challenge", "Interview", "HR Round", "Hired", "Rejected"],
                        "type": "string",
                        "description": "Stage",
                        "name": "stage",
                        "in": "query"
                    },
                    {"type": "string", "description": "Substring of name, email or role", "name": "search", "in": "query"},
                    {
                        "enum": ["name", "application_date", "rating"],
                        "type": "string",
                        "description": "Sort field",
                        "name": "sort_by",
                        "in": "query"
                    },
                    {"type": "string", "description": "Application month, YYYY-MM", "name": "month_year", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/candidate.Candidate"}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/candidates/search/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Search candidates",
                "parameters": [
                    {"type": "string", "description": "Free text", "name": "query", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/candidate.Candidate"}}
                    }
                }
            }
        },
        "/candidates/import/": {
            "post": {
                "description": "Upload a JSON array, CSV or YAML file of candidates. The batch is all or nothing.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Bulk import candidates",
                "parameters": [
                    {"type": "file", "description": "Candidates file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/candidate.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Get a candidate",
                "parameters": [
                    {"type": "integer", "description": "Candidate ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/candidate.Candidate"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/status/": {
            "patch": {
                "description": "Each field is optional. Rating must be within 0 and 5.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["candidates"],
                "summary": "Update status, stage or rating",
                "parameters": [
                    {"type": "integer", "description": "Candidate ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to change",
                        "name": "update",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/candidate.StatusUpdate"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/candidate.Candidate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/candidates/{id}/pdf/": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["candidates"],
                "summary": "Download the candidate profile",
                "parameters": [
                    {"type": "integer", "description": "Candidate ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        },
        "/seed/": {
            "post": {
                "description": "Destructive. Only available when seeding is enabled.",
                "produces": ["application/json"],
                "tags": ["dev"],
                "summary": "Replace all candidates with demo data",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/candidate.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/candidate.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "candidate.Candidate": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "location": {"type": "string"},
                "applied_role": {"type": "string"},
                "experience": {"type": "string"},
                "application_date": {"type": "string"},
                "status": {"type": "string"},
                "stage": {"type": "string"},
                "rating": {"type": "number"},
                "attachments": {"type": "integer"},
                "summary": {"type": "string"},
                "photo_url": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "education": {"type": "array", "items": {"$ref": "#/definitions/candidate.Education"}},
                "experience_history": {"type": "array", "items": {"$ref": "#/definitions/candidate.Employment"}},
                "projects": {"type": "array", "items": {"$ref": "#/definitions/candidate.Project"}},
                "urls": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "candidate.Education": {
            "type": "object",
            "properties": {
                "degree": {"type": "string"},
                "institution": {"type": "string"},
                "year": {"type": "integer"}
            }
        },
        "candidate.Employment": {
            "type": "object",
            "properties": {
                "company": {"type": "string"},
                "role": {"type": "string"},
                "duration": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "candidate.Project": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "link": {"type": "string"}
            }
        },
        "candidate.Input": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "applied_role": {"type": "string"},
                "experience": {"type": "string"},
                "status": {"type": "string"},
                "stage": {"type": "string"},
                "rating": {"type": "number"},
                "location": {"type": "string"},
                "application_date": {"type": "string"},
                "resume_url": {"type": "string"},
                "cover_letter_url": {"type": "string"},
                "project_url": {"type": "string"},
                "urls": {"type": "object", "additionalProperties": {"type": "string"}},
                "summary": {"type": "string"},
                "photo_url": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "education": {"type": "array", "items": {"$ref": "#/definitions/candidate.Education"}},
                "experience_history": {"type": "array", "items": {"$ref": "#/definitions/candidate.Employment"}},
                "projects": {"type": "array", "items": {"$ref": "#/definitions/candidate.Project"}}
            }
        },
        "candidate.StatusUpdate": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "stage": {"type": "string"},
                "rating": {"type": "number"}
            }
        },
        "candidate.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "field": {"type": "string"},
                "allowed": {"type": "array", "items": {"type": "string"}}
            }
        },
        "candidate.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "count": {"type": "integer"}
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
	Title:            "HR Candidate Review API",
	Description:      "Candidate tracking backend: filtering, search, bulk import, status updates and profile PDFs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
