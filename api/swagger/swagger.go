package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ECell Recruitment API",
        "description": "Recruitment backend: applications, OTP login, and bulk interview-round scheduling",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Candidate OTP login and admin sessions"},
        {"name": "Candidates", "description": "Applications, rounds, shortlist, tasks"},
        {"name": "Scheduling", "description": "Bulk interview-round scheduling"},
        {"name": "Admins", "description": "Panel operator accounts"},
        {"name": "Settings", "description": "Application settings"},
        {"name": "Emails", "description": "Bulk mail dispatch"},
        {"name": "Export", "description": "Schedule sheet downloads"}
    ],
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request login OTP",
                "responses": {
                    "200": {"description": "OTP sent"},
                    "404": {"description": "Candidate not found"}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Verify login OTP",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid or expired OTP"},
                    "429": {"description": "Too many attempts"}
                }
            }
        },
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Admin login",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/candidates": {
            "post": {
                "tags": ["Candidates"],
                "summary": "Register a candidate",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate email"}
                }
            },
            "get": {
                "tags": ["Candidates"],
                "summary": "List candidates",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        },
        "/candidates/rounds/bulk": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Bulk schedule interview rounds",
                "responses": {
                    "200": {"description": "Run summary"},
                    "422": {"description": "Day window too small"}
                }
            }
        },
        "/candidates/groups/move": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Move candidates to an existing group",
                "responses": {
                    "200": {"description": "Move summary"},
                    "404": {"description": "Empty target group"}
                }
            }
        },
        "/candidates/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export candidates as CSV or PDF",
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get settings",
                "responses": {
                    "200": {"$ref": "#/responses/Envelope"}
                }
            }
        },
        "/emails/send": {
            "post": {
                "tags": ["Emails"],
                "summary": "Queue a bulk mail dispatch",
                "responses": {
                    "202": {"description": "Dispatch queued"}
                }
            }
        }
    },
    "responses": {
        "Envelope": {
            "description": "Standard response envelope",
            "schema": {"$ref": "#/definitions/ResponseEnvelope"}
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
