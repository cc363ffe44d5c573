package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Multi-tenant school timetable booking with class, teacher and room conflict detection.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "AcademicYears", "description": "Academic calendar and the active year"},
        {"name": "Classes", "description": "Class roster per academic year"},
        {"name": "References", "description": "Teachers, subjects and rooms"},
        {"name": "Bookings", "description": "Timetable slots and conflict detection"},
        {"name": "Health", "description": "Probes"}
    ],
    "parameters": {
        "TenantHeader": {"name": "X-Tenant-ID", "in": "header", "required": true, "type": "string"},
        "ID": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "paths": {
        "/academic-years": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "List academic years",
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "archived"]},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Create academic year with optional periods",
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAcademicYearRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or period range error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate name", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/active": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get the active academic year",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get academic year",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["AcademicYears"],
                "summary": "Delete an unreferenced academic year",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/academic-years/{id}/activate": {
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Make the year the tenant's single active year",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/academic-years/{id}/archive": {
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Archive academic year",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "academicYearId", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Get class",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/teachers": {
            "get": {"tags": ["References"], "summary": "List teachers", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["References"], "summary": "Create teacher", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"201": {"description": "Created"}}}
        },
        "/subjects": {
            "get": {"tags": ["References"], "summary": "List subjects", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["References"], "summary": "Create subject", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"201": {"description": "Created"}}}
        },
        "/rooms": {
            "get": {"tags": ["References"], "summary": "List rooms", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["References"], "summary": "Create room", "parameters": [{"$ref": "#/parameters/TenantHeader"}], "responses": {"201": {"description": "Created"}}}
        },
        "/bookings": {
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive", "cancelled"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Bookings"],
                "summary": "Create booking",
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or time range error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class, teacher, subject, room or year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/export": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Export a class timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/TenantHeader"},
                    {"name": "classId", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Timetable file"}}
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Bookings"],
                "summary": "Get booking",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Bookings"],
                "summary": "Update booking",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel booking",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Cancelled"}}
            }
        },
        "/bookings/{id}/status": {
            "patch": {
                "tags": ["Bookings"],
                "summary": "Deactivate or cancel booking",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/bookings/{id}/purge": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Permanently delete booking",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"204": {"description": "Deleted"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}
            }
        },
        "/bookings/{id}/exceptions": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Skip one occurrence of a weekly booking",
                "parameters": [{"$ref": "#/parameters/TenantHeader"}, {"$ref": "#/parameters/ID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "PeriodRequest": {
            "type": "object",
            "required": ["name", "start_date", "end_date"],
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "order": {"type": "integer"}
            }
        },
        "CreateAcademicYearRequest": {
            "type": "object",
            "required": ["name", "start_date", "end_date"],
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "is_active": {"type": "boolean"},
                "periods": {"type": "array", "items": {"$ref": "#/definitions/PeriodRequest"}}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["class_id", "start_time", "end_time"],
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "room_id": {"type": "string"},
                "academic_year_id": {"type": "string"},
                "day_of_week": {"type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"]},
                "specific_date": {"type": "string", "format": "date"},
                "start_time": {"type": "string", "example": "07:00"},
                "end_time": {"type": "string", "example": "08:30"},
                "is_recurring": {"type": "boolean"},
                "valid_from": {"type": "string", "format": "date"},
                "valid_to": {"type": "string", "format": "date"}
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
                "details": {"type": "object"},
                "retryable": {"type": "boolean"}
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
