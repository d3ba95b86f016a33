package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/nexus/nexus-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the document served at /openapi.json
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIHandler converts the swag-generated Swagger 2.0 document to OpenAPI 3.0
type OpenAPIHandler struct {
	servers []Server
}

// NewOpenAPIHandler advertises publicURL as the API origin
func NewOpenAPIHandler(publicURL, env string) *OpenAPIHandler {
	return &OpenAPIHandler{
		servers: []Server{{
			URL:         strings.TrimSuffix(publicURL, "/"),
			Description: "Nexus API (" + env + ")",
		}},
	}
}

// Serve returns the API document as OpenAPI 3.0
func (h *OpenAPIHandler) Serve(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to read swagger doc"})
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to parse swagger doc"})
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    h.servers,
		Paths:      convertPaths(paths),
		Components: components,
	})
}

// convertPaths rewrites every operation under every path
func convertPaths(paths map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		methods, ok := item.(map[string]interface{})
		if !ok {
			out[path] = item
			continue
		}
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = convertOperation(operation)
			} else {
				converted[method] = op
			}
		}
		out[path] = converted
	}
	return out
}

// convertOperation lifts body parameters into requestBody and wraps
// response schemas in application/json content
func convertOperation(op map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[key] = rewriteRefs(value)
		}
	}

	if params, ok := op["parameters"].([]interface{}); ok {
		var converted []interface{}
		for _, p := range params {
			param, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			if param["in"] == "body" {
				out["requestBody"] = map[string]interface{}{
					"description": param["description"],
					"required":    param["required"],
					"content":     jsonContent(param["schema"]),
				}
				continue
			}
			converted = append(converted, convertParameter(param))
		}
		if len(converted) > 0 {
			out["parameters"] = converted
		}
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for status, r := range responses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				converted[status] = r
				continue
			}
			description, _ := resp["description"].(string)
			next := map[string]interface{}{"description": description}
			if schema, ok := resp["schema"]; ok {
				next["content"] = jsonContent(schema)
			}
			converted[status] = next
		}
		out["responses"] = converted
	}

	return out
}

// convertParameter moves Swagger 2.0 type fields of a query/path/header parameter under schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func jsonContent(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		echo.MIMEApplicationJSON: map[string]interface{}{
			"schema": rewriteRefs(schema),
		},
	}
}

// rewriteRefs points #/definitions/ refs at #/components/schemas/
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}
