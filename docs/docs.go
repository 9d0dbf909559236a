// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/api/posts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List published posts",
                "parameters": [
                    {"type": "string", "description": "case-insensitive text filter", "name": "search", "in": "query"},
                    {"type": "string", "description": "category or All", "name": "category", "in": "query"},
                    {"type": "integer", "default": 1, "description": "1-based page", "name": "page", "in": "query"},
                    {"type": "integer", "default": 9, "description": "page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/posts/featured": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List featured posts",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/db.Post"}}}}
            }
        },
        "/api/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "List categories of published posts",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/api/posts/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Get a published post by slug",
                "parameters": [{"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PostDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/posts/{slug}/views": {
            "get": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Get a post's view count",
                "parameters": [{"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ViewCountResponse"}}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["views"],
                "summary": "Record a view of a post",
                "parameters": [{"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ViewCountResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/posts/{slug}/views/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["views"],
                "summary": "Follow a post's view count as server-sent events",
                "parameters": [{"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true}],
                "responses": {"200": {"description": "event: views", "schema": {"type": "string"}}}
            }
        },
        "/api/posts/{slug}/comments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "List a post's comments as threads",
                "parameters": [{"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CommentTreeResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["comments"],
                "summary": "Comment on a post",
                "parameters": [
                    {"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true},
                    {"description": "comment", "name": "comment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CommentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/db.Comment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/posts/{slug}/ratings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ratings"],
                "summary": "Get a post's rating summary",
                "parameters": [
                    {"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true},
                    {"type": "string", "description": "rater id; defaults to the visitor cookie", "name": "user_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RatingResponse"}}}
            },
            "put": {
                "description": "One rating per user; resubmitting replaces the previous value.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ratings"],
                "summary": "Rate a post from 1 to 5",
                "parameters": [
                    {"type": "string", "description": "post slug", "name": "slug", "in": "path", "required": true},
                    {"description": "rating", "name": "rating", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RatingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RatingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Start an admin session",
                "parameters": [{"description": "credentials", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/admin/logout": {
            "post": {"tags": ["admin"], "summary": "End the admin session", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/admin/posts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List posts including drafts",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/search.Result"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a draft post",
                "parameters": [{"description": "draft", "name": "post", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.PostDraft"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/db.Post"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/admin/posts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get any post by id or slug",
                "parameters": [{"type": "string", "description": "post id or slug", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/db.Post"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Partially update a post",
                "parameters": [
                    {"type": "string", "description": "post id or slug", "name": "id", "in": "path", "required": true},
                    {"description": "fields to change", "name": "patch", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.PostPatch"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/db.Post"}}}
            },
            "delete": {
                "tags": ["admin"],
                "summary": "Delete a post with its comments, ratings and views",
                "parameters": [{"type": "string", "description": "post id or slug", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/admin/posts/{id}/published": {
            "put": {
                "tags": ["admin"],
                "summary": "Publish or unpublish a post",
                "parameters": [
                    {"type": "string", "description": "post id or slug", "name": "id", "in": "path", "required": true},
                    {"description": "target state", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.PublishRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/db.Post"}}}
            }
        },
        "/api/admin/posts/{id}/featured": {
            "put": {
                "tags": ["admin"],
                "summary": "Feature or unfeature a post",
                "parameters": [
                    {"type": "string", "description": "post id or slug", "name": "id", "in": "path", "required": true},
                    {"description": "target state", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.FeatureRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/db.Post"}}}
            }
        },
        "/api/admin/comments/{id}": {
            "delete": {
                "tags": ["admin"],
                "summary": "Delete a comment",
                "parameters": [{"type": "integer", "description": "comment id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "db.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "author_name": {"type": "string"},
                "author_id": {"type": "string"},
                "published_at": {"type": "string"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "image_url": {"type": "string"},
                "video_url": {"type": "string"},
                "slug": {"type": "string"},
                "published": {"type": "boolean"},
                "featured": {"type": "boolean"},
                "view_count": {"type": "integer"},
                "rating": {"type": "number"},
                "total_ratings": {"type": "integer"},
                "comment_count": {"type": "integer"},
                "seo": {"$ref": "#/definitions/db.SEOMeta"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "db.SEOMeta": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "canonical_url": {"type": "string"},
                "og_type": {"type": "string"},
                "structured_data": {"type": "object"}
            }
        },
        "db.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "post_id": {"type": "integer"},
                "author_name": {"type": "string"},
                "content": {"type": "string"},
                "parent_id": {"type": "integer"},
                "approved": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.ViewCountResponse": {"type": "object", "properties": {"post_id": {"type": "integer"}, "view_count": {"type": "integer"}}},
        "handler.CommentTreeResponse": {
            "type": "object",
            "properties": {
                "threads": {"type": "array", "items": {"type": "object", "properties": {"comment": {"$ref": "#/definitions/db.Comment"}, "replies": {"type": "array", "items": {"$ref": "#/definitions/db.Comment"}}}}},
                "total": {"type": "integer"}
            }
        },
        "handler.RatingRequest": {"type": "object", "properties": {"value": {"type": "integer"}, "user_id": {"type": "string"}}},
        "handler.RatingResponse": {"type": "object", "properties": {"rating": {"type": "number"}, "total_ratings": {"type": "integer"}, "user_value": {"type": "integer"}}},
        "handler.LoginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handler.PublishRequest": {"type": "object", "properties": {"published": {"type": "boolean"}}},
        "handler.FeatureRequest": {"type": "object", "properties": {"featured": {"type": "boolean"}}},
        "handler.PostDetail": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/db.Post"}],
            "properties": {
                "content_html": {"type": "string"},
                "reading_time": {"type": "integer"},
                "meta": {"type": "object"},
                "schema": {"type": "object"},
                "breadcrumb": {"type": "object"},
                "video": {"type": "object"}
            }
        },
        "search.Result": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/db.Post"}},
                "pagination": {
                    "type": "object",
                    "properties": {
                        "current_page": {"type": "integer"},
                        "page_size": {"type": "integer"},
                        "total_posts": {"type": "integer"},
                        "total_pages": {"type": "integer"},
                        "has_next_page": {"type": "boolean"},
                        "has_prev_page": {"type": "boolean"}
                    }
                }
            }
        },
        "service.CommentInput": {
            "type": "object",
            "properties": {"author_name": {"type": "string"}, "author_email": {"type": "string"}, "content": {"type": "string"}, "parent_id": {"type": "integer"}}
        },
        "service.SEOInput": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "canonical_url": {"type": "string"},
                "og_type": {"type": "string"},
                "structured_data": {"type": "object"}
            }
        },
        "service.PostDraft": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "author_name": {"type": "string"},
                "author_id": {"type": "string"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "image_url": {"type": "string"},
                "video_url": {"type": "string"},
                "published_at": {"type": "string"},
                "slug": {"type": "string"},
                "seo": {"$ref": "#/definitions/service.SEOInput"}
            }
        },
        "service.PostPatch": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "author_name": {"type": "string"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "image_url": {"type": "string"},
                "video_url": {"type": "string"},
                "published_at": {"type": "string"},
                "slug": {"type": "string"},
                "seo": {"$ref": "#/definitions/service.SEOInput"}
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
	Title:            "Inkwell API",
	Description:      "Blog content and reader engagement API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
