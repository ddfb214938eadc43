package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIAKAD API",
        "description": "Academic information system for STIKOM ADP",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh, and session management"},
        {"name": "Semesters", "description": "Academic periods and their state machine"},
        {"name": "KRS", "description": "Course-selection sheets"},
        {"name": "Nilai", "description": "Grading and report cards"},
        {"name": "Pembayaran", "description": "Payments with proof files"},
        {"name": "Export", "description": "Excel and PDF report downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or replayed refresh token"}
                }
            }
        },
        "/semester": {
            "get": {
                "tags": ["Semesters"],
                "summary": "List semesters",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "tahun_ajaran", "in": "query", "type": "string"},
                    {"name": "periode", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Semesters"],
                "summary": "Create semester",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SemesterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate tahun ajaran and periode"}
                }
            }
        },
        "/semester/{id}/activate": {
            "post": {
                "tags": ["Semesters"],
                "summary": "Activate semester (deactivates every other one)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Semester already finished"}
                }
            }
        },
        "/krs": {
            "post": {
                "tags": ["KRS"],
                "summary": "Submit course-selection sheet",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitKRSRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate sheet or full class"},
                    "412": {"description": "KRS window closed or SKS limit exceeded"}
                }
            }
        },
        "/krs/{id}/decide": {
            "put": {
                "tags": ["KRS"],
                "summary": "Approve or reject a pending sheet",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideKRSRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the advising dosen wali"},
                    "409": {"description": "Sheet already decided"}
                }
            }
        },
        "/kelas/{id}/nilai": {
            "put": {
                "tags": ["Nilai"],
                "summary": "Record a grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertNilaiRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Grades locked"}
                }
            }
        },
        "/kelas/{id}/nilai/lock": {
            "post": {
                "tags": ["Nilai"],
                "summary": "Lock grades for a class (one-way)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Locked"},
                    "409": {"description": "Already locked"}
                }
            }
        },
        "/pembayaran": {
            "post": {
                "tags": ["Pembayaran"],
                "summary": "Submit payment with proof file",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "semester_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "jenis", "in": "formData", "required": true, "type": "string"},
                    {"name": "jumlah", "in": "formData", "required": true, "type": "integer"},
                    {"name": "catatan", "in": "formData", "type": "string"},
                    {"name": "bukti", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pembayaran/{id}/verify": {
            "put": {
                "tags": ["Pembayaran"],
                "summary": "Verify or reject payment (final)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyPembayaranRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Payment already decided"}
                }
            }
        },
        "/export/khs/{id}": {
            "get": {
                "tags": ["Export"],
                "summary": "Export KHS as Excel or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester_id", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Role-scoped summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "SemesterRequest": {
            "type": "object",
            "properties": {
                "tahun_ajaran": {"type": "string"},
                "periode": {"type": "string", "enum": ["GANJIL", "GENAP"]},
                "krs_mulai": {"type": "string", "format": "date-time"},
                "krs_selesai": {"type": "string", "format": "date-time"}
            },
            "required": ["tahun_ajaran", "periode", "krs_mulai", "krs_selesai"]
        },
        "SubmitKRSRequest": {
            "type": "object",
            "properties": {
                "semester_id": {"type": "string"},
                "kelas_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["semester_id", "kelas_ids"]
        },
        "DecideKRSRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "catatan": {"type": "string"}
            }
        },
        "UpsertNilaiRequest": {
            "type": "object",
            "properties": {
                "mahasiswa_id": {"type": "string"},
                "nilai_angka": {"type": "number", "minimum": 0, "maximum": 100}
            },
            "required": ["mahasiswa_id"]
        },
        "VerifyPembayaranRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "catatan": {"type": "string"}
            }
        },
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
