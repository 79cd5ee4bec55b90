package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Degree Audit API",
        "description": "Transcript building, remote degree audits and report tree editing.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Sessions",
            "description": "Editing sessions and audit submission"
        },
        {
            "name": "Transcript",
            "description": "Transcript builder"
        },
        {
            "name": "Reports",
            "description": "Path-addressed report tree editing"
        },
        {
            "name": "Courses",
            "description": "Quick-entry course grammar"
        },
        {
            "name": "Exchange",
            "description": "Report export and import"
        }
    ],
    "paths": {
        "/sessions": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Open an editing session",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Session snapshot",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Discard a session",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/sessions/{id}/audit": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Submit the transcript for auditing",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Audit already running",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/transcript/programs": {
            "post": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Append a blank program title",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/transcript/programs/{index}": {
            "put": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Set a program title",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ProgramTitleRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Remove a program title",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/transcript/courses": {
            "post": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Append a course",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/CourseLineRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/transcript/courses/{index}": {
            "patch": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Set one field of a course",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CourseFieldRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Remove a course",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/transcript/sample": {
            "post": {
                "tags": [
                    "Transcript"
                ],
                "summary": "Load the sample transcript",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Read a block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "Reports"
                ],
                "summary": "Patch block fields",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BlockPatchRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/children": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Append a child block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/children/{index}": {
            "delete": {
                "tags": [
                    "Reports"
                ],
                "summary": "Remove a child block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/notes": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Append a note",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/NoteRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/notes/{index}": {
            "put": {
                "tags": [
                    "Reports"
                ],
                "summary": "Replace a note",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/NoteRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Reports"
                ],
                "summary": "Remove a note",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/courses": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Append a course to a block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/CourseLineRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/block/courses/{index}": {
            "patch": {
                "tags": [
                    "Reports"
                ],
                "summary": "Edit a course of a block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CourseEditRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Reports"
                ],
                "summary": "Remove a course from a block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Block path no longer exists",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/reports/{report}/renames": {
            "delete": {
                "tags": [
                    "Reports"
                ],
                "summary": "Clear the pending-rename tag of a block",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "report",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "path",
                        "in": "query",
                        "type": "string",
                        "description": "Block path, e.g. 0-2; empty addresses the report root"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/export": {
            "get": {
                "tags": [
                    "Exchange"
                ],
                "summary": "Download the session's reports",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "json",
                            "csv",
                            "pdf"
                        ],
                        "default": "json"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json",
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "Attachment",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/import": {
            "post": {
                "tags": [
                    "Exchange"
                ],
                "summary": "Replace the session's reports with an exported document",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "document",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/Block"
                            }
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid report file",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/courses/parse": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Parse a quick-entry course line",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ParseCourseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/courses/format": {
            "post": {
                "tags": [
                    "Courses"
                ],
                "summary": "Render a course as a quick-entry line",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/FormatCourseRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Course": {
            "type": "object",
            "properties": {
                "subject_code": {
                    "type": "string"
                },
                "course_code": {
                    "type": "string"
                },
                "grade": {
                    "type": "string",
                    "enum": [
                        "A",
                        "A-",
                        "B+",
                        "B",
                        "B-",
                        "C+",
                        "C",
                        "F"
                    ]
                },
                "credit": {
                    "type": "integer"
                }
            }
        },
        "Block": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "block_type": {
                    "type": "string",
                    "enum": [
                        "PROGRAM",
                        "REQUIRED",
                        "COMPLEMENTARY",
                        "CUSTOM"
                    ]
                },
                "minimum_credit": {
                    "type": "integer",
                    "x-nullable": true
                },
                "received_credit": {
                    "type": "integer",
                    "x-nullable": true
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "FULFILLED",
                        "UNFULFILLED"
                    ]
                },
                "notes": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "courses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Course"
                    }
                },
                "blocks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Block"
                    }
                }
            }
        },
        "BlockPatchRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "block_type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "minimum_credit": {
                    "type": "integer",
                    "x-nullable": true
                },
                "received_credit": {
                    "type": "integer",
                    "x-nullable": true
                }
            }
        },
        "ProgramTitleRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                }
            }
        },
        "CourseLineRequest": {
            "type": "object",
            "properties": {
                "line": {
                    "type": "string",
                    "example": "COMP206 A 3"
                }
            }
        },
        "CourseFieldRequest": {
            "type": "object",
            "required": [
                "field"
            ],
            "properties": {
                "field": {
                    "type": "string",
                    "enum": [
                        "subject_code",
                        "course_code",
                        "grade",
                        "credit"
                    ]
                },
                "value": {
                    "type": "string"
                }
            }
        },
        "CourseEditRequest": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string",
                    "enum": [
                        "subject_code",
                        "course_code",
                        "grade",
                        "credit"
                    ]
                },
                "value": {
                    "type": "string"
                },
                "line": {
                    "type": "string"
                }
            }
        },
        "NoteRequest": {
            "type": "object",
            "properties": {
                "value": {
                    "type": "string"
                }
            }
        },
        "ParseCourseRequest": {
            "type": "object",
            "properties": {
                "line": {
                    "type": "string"
                },
                "context": {
                    "type": "string",
                    "enum": [
                        "builder",
                        "report"
                    ]
                }
            }
        },
        "FormatCourseRequest": {
            "type": "object",
            "properties": {
                "course": {
                    "$ref": "#/definitions/Course"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
