// Package docs registers the OpenAPI documents served under /swagger/* by
// each storefront service. The path sections mirror the swag annotations on
// the handlers in internal/api/handler.
package docs

import "github.com/swaggo/swag"

const (
	UsersInstance    = "users"
	ProductsInstance = "products"
	OrdersInstance   = "orders"
)

const definitions = `
    "definitions": {
        "errorResponse": {"type": "object", "properties": {"detail": {"type": "string"}}},
        "messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "accountResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "username": {"type": "string"},
            "email": {"type": "string"}, "is_admin": {"type": "boolean"}}},
        "registerRequest": {"type": "object", "required": ["username", "password"], "properties": {
            "username": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}}},
        "tokenResponse": {"type": "object", "properties": {
            "access_token": {"type": "string"}, "token_type": {"type": "string"}}},
        "productRequest": {"type": "object", "required": ["name", "price"], "properties": {
            "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "number"}, "stock": {"type": "integer"}}},
        "productResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "number"}, "stock": {"type": "integer"}, "created_at": {"type": "string"}}},
        "stockResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "new_stock": {"type": "integer"}}},
        "orderItemRequest": {"type": "object", "properties": {
            "product_id": {"type": "integer"}, "quantity": {"type": "integer"}}},
        "placeOrderRequest": {"type": "object", "required": ["user_id", "items"], "properties": {
            "user_id": {"type": "integer"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/orderItemRequest"}}}},
        "orderItemResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "product_id": {"type": "integer"},
            "quantity": {"type": "integer"}, "price_per_unit": {"type": "number"}}},
        "orderResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "user_id": {"type": "integer"}, "total_amount": {"type": "number"},
            "status": {"type": "string"}, "created_at": {"type": "string"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/orderItemResponse"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }`

const usersPaths = `
    "paths": {
        "/register": {"post": {"tags": ["auth"], "summary": "Register a new user",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/accountResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/token": {"post": {"tags": ["auth"], "summary": "Issue an access token", "consumes": ["application/x-www-form-urlencoded"],
            "parameters": [{"in": "formData", "name": "username", "type": "string", "required": true},
                {"in": "formData", "name": "password", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/tokenResponse"}},
                "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/users/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/accountResponse"}},
                "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/users": {"get": {"tags": ["auth"], "summary": "List accounts", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/accountResponse"}}},
                "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}}}}
    },`

const productsPaths = `
    "paths": {
        "/products": {
            "get": {"tags": ["products"], "summary": "List products",
                "parameters": [{"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "skip", "type": "integer", "default": 0},
                    {"in": "query", "name": "limit", "type": "integer", "default": 100}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/productResponse"}}}}},
            "post": {"tags": ["products"], "summary": "Create a product",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/productRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/productResponse"}}}}},
        "/products/{id}": {
            "get": {"tags": ["products"], "summary": "Get a product",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "put": {"tags": ["products"], "summary": "Replace a product",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/productRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/productResponse"}}}},
            "delete": {"tags": ["products"], "summary": "Delete a product",
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}}}}},
        "/products/{id}/stock": {"put": {"tags": ["products"], "summary": "Adjust stock",
            "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true},
                {"in": "query", "name": "quantity", "type": "integer", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/stockResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}}}
    },`

const ordersPaths = `
    "paths": {
        "/orders": {"post": {"tags": ["orders"], "summary": "Place an order",
            "parameters": [{"in": "header", "name": "Idempotency-Key", "type": "string"},
                {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/placeOrderRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/orderResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                "500": {"description": "Product service unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/orders/{user_id}": {"get": {"tags": ["orders"], "summary": "List a user's orders",
            "parameters": [{"in": "path", "name": "user_id", "type": "integer", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/orderResponse"}}}}}},
        "/orders/{order_id}/status": {"put": {"tags": ["orders"], "summary": "Set an order's status",
            "parameters": [{"in": "path", "name": "order_id", "type": "integer", "required": true},
                {"in": "query", "name": "status", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/messageResponse"}},
                "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}}}
    },`

func template(paths string) string {
	return `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",` + paths + definitions + `
}`
}

var (
	UsersInfo = &swag.Spec{
		Version:          "1.0",
		BasePath:         "/",
		Title:            "Storefront user service",
		Description:      "Account registration and bearer token issuance.",
		InfoInstanceName: UsersInstance,
		SwaggerTemplate:  template(usersPaths),
	}
	ProductsInfo = &swag.Spec{
		Version:          "1.0",
		BasePath:         "/",
		Title:            "Storefront product service",
		Description:      "Catalog browsing, maintenance and stock adjustment.",
		InfoInstanceName: ProductsInstance,
		SwaggerTemplate:  template(productsPaths),
	}
	OrdersInfo = &swag.Spec{
		Version:          "1.0",
		BasePath:         "/",
		Title:            "Storefront order service",
		Description:      "Order placement and history.",
		InfoInstanceName: OrdersInstance,
		SwaggerTemplate:  template(ordersPaths),
	}
)

func init() {
	swag.Register(UsersInfo.InstanceName(), UsersInfo)
	swag.Register(ProductsInfo.InstanceName(), ProductsInfo)
	swag.Register(OrdersInfo.InstanceName(), OrdersInfo)
}
