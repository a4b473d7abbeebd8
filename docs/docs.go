// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/login": {"post": {"tags": ["Auth"], "summary": "Log in", "security": [],
            "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/healthz": {"get": {"tags": ["System"], "summary": "Liveness", "security": [], "responses": {"200": {"description": "OK"}}}},
        "/leads": {
            "get": {"tags": ["Leads"], "summary": "List leads (LOST last)", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Leads"], "summary": "Create lead", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/leads/incoming": {"get": {"tags": ["Leads"], "summary": "Unassigned New Lead pool, newest first", "responses": {"200": {"description": "OK"}}}},
        "/leads/mine": {"get": {"tags": ["Leads"], "summary": "Caller's leads in follow-up order", "responses": {"200": {"description": "OK"}}}},
        "/leads/{id}": {
            "get": {"tags": ["Leads"], "summary": "Get lead", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Leads"], "summary": "Update lead contact fields", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Leads"], "summary": "Delete lead (admin)", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/leads/{id}/status": {"post": {"tags": ["Leads"], "summary": "Change lead status", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid status"}}}},
        "/leads/{id}/claim": {"post": {"tags": ["Leads"], "summary": "Claim an unassigned lead", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already assigned"}}}},
        "/leads/{id}/assign": {"post": {"tags": ["Leads"], "summary": "Assign lead to a user", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/leads/{id}/unassign": {"post": {"tags": ["Leads"], "summary": "Return lead to the pool", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/leads/{id}/sell": {"post": {"tags": ["Leads"], "summary": "Close a deal on the lead", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Not sellable"}}}},
        "/contracts": {
            "get": {"tags": ["Contracts"], "summary": "List contracts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Contracts"], "summary": "Create Draft contract", "responses": {"201": {"description": "Created"}}}
        },
        "/contracts/{id}": {"get": {"tags": ["Contracts"], "summary": "Get contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/approve": {"post": {"tags": ["Contracts"], "summary": "Approve Draft", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}},
        "/contracts/{id}/close": {"post": {"tags": ["Contracts"], "summary": "Close Active contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/cancel": {"post": {"tags": ["Contracts"], "summary": "Cancel Draft contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/void": {"post": {"tags": ["Contracts"], "summary": "Void contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/payments": {
            "get": {"tags": ["Contracts"], "summary": "List payments", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Contracts"], "summary": "Record payment", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"201": {"description": "Created"}}}
        },
        "/contracts/{id}/payments/{payment_id}": {"delete": {"tags": ["Contracts"], "summary": "Delete payment (admin)",
            "parameters": [{"$ref": "#/parameters/id"}, {"in": "path", "name": "payment_id", "required": true, "type": "string"}],
            "responses": {"204": {"description": "No Content"}}}},
        "/contracts/{id}/projection": {"get": {"tags": ["Contracts"], "summary": "Receivables projection", "parameters": [{"$ref": "#/parameters/id"}, {"$ref": "#/parameters/as_of"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Not projectable"}}}},
        "/contracts/{id}/pdf": {"get": {"tags": ["Contracts"], "summary": "Download contract PDF", "produces": ["application/pdf"], "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}}}},
        "/contracts/{id}/email": {"post": {"tags": ["Contracts"], "summary": "Email contract PDF to the client", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"202": {"description": "Accepted"}}}},
        "/reports/receivables": {"get": {"tags": ["Reports"], "summary": "Receivables across active contracts", "parameters": [{"$ref": "#/parameters/as_of"}], "responses": {"200": {"description": "OK"}}}},
        "/reports/receivables.xlsx": {"get": {"tags": ["Reports"], "summary": "Receivables as an Excel workbook", "parameters": [{"$ref": "#/parameters/as_of"}], "responses": {"200": {"description": "OK"}}}}
    },
    "parameters": {
        "id": {"in": "path", "name": "id", "required": true, "type": "string"},
        "as_of": {"in": "query", "name": "as_of", "required": false, "type": "string", "description": "YYYY-MM-DD, default today"}
    },
    "definitions": {
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agency CRM API",
	Description:      "Leads, contracts, payments and receivables for a domestic-worker staffing agency.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
