package api_test

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const schemaRefPrefix = "#/components/schemas/"

type schema struct {
	Ref        string             `yaml:"$ref"`
	Type       string             `yaml:"type"`
	Format     string             `yaml:"format"`
	Required   []string           `yaml:"required"`
	Properties map[string]*schema `yaml:"properties"`
	Items      *schema            `yaml:"items"`
	Enum       []string           `yaml:"enum"`
	Minimum    *int               `yaml:"minimum"`
}

type response struct {
	Ref     string `yaml:"$ref"`
	Content map[string]struct {
		Schema *schema `yaml:"schema"`
	} `yaml:"content"`
}

type operation struct {
	Responses map[string]response `yaml:"responses"`
}

type pathItem struct {
	Get    *operation `yaml:"get"`
	Post   *operation `yaml:"post"`
	Delete *operation `yaml:"delete"`
}

type document struct {
	Paths      map[string]pathItem `yaml:"paths"`
	Components struct {
		Schemas   map[string]*schema  `yaml:"schemas"`
		Responses map[string]response `yaml:"responses"`
	} `yaml:"components"`
}

func loadDocument(t *testing.T, h http.Handler) *document {
	t.Helper()

	rec := get(t, h, http.MethodGet, "/specs/v1.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc document
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))

	return &doc
}

// responseSchema finds the schema documented for status on method+path,
// falling back to the default response.
func (d *document) responseSchema(t *testing.T, method, path string, status int) *schema {
	t.Helper()

	item, ok := d.Paths[path]
	require.True(t, ok, "path %s is not documented", path)

	op := map[string]*operation{
		http.MethodGet:    item.Get,
		http.MethodPost:   item.Post,
		http.MethodDelete: item.Delete,
	}[method]
	require.NotNil(t, op, "%s %s is not documented", method, path)

	resp, ok := op.Responses[strconv.Itoa(status)]
	if !ok {
		resp, ok = op.Responses["default"]
	}
	require.True(t, ok, "%s %s has no response for %d", method, path, status)

	if resp.Ref != "" {
		resp = d.Components.Responses[strings.TrimPrefix(resp.Ref, "#/components/responses/")]
	}
	content, ok := resp.Content["application/json"]
	require.True(t, ok, "%s %s %d has no JSON body", method, path, status)

	return content.Schema
}

func (d *document) validate(t *testing.T, s *schema, value any, at string) {
	t.Helper()

	if s.Ref != "" {
		ref, ok := d.Components.Schemas[strings.TrimPrefix(s.Ref, schemaRefPrefix)]
		require.True(t, ok, "%s: unresolved %s", at, s.Ref)
		s = ref
	}

	switch s.Type {
	case "object":
		obj, ok := value.(map[string]any)
		require.True(t, ok, "%s: want object, got %T", at, value)
		for _, name := range s.Required {
			require.Contains(t, obj, name, "%s: required field missing", at)
		}
		for name, v := range obj {
			prop, ok := s.Properties[name]
			require.True(t, ok, "%s: undocumented field %q", at, name)
			d.validate(t, prop, v, at+"."+name)
		}
	case "array":
		items, ok := value.([]any)
		require.True(t, ok, "%s: want array, got %T", at, value)
		for _, v := range items {
			d.validate(t, s.Items, v, at+"[]")
		}
	case "string":
		str, ok := value.(string)
		require.True(t, ok, "%s: want string, got %T", at, value)
		if len(s.Enum) > 0 {
			require.True(t, slices.Contains(s.Enum, str), "%s: %q not in %v", at, str, s.Enum)
		}
		switch s.Format {
		case "uuid":
			_, err := uuid.Parse(str)
			require.NoError(t, err, at)
		case "date-time":
			_, err := time.Parse(time.RFC3339Nano, str)
			require.NoError(t, err, at)
		}
	case "integer":
		n, ok := value.(int)
		require.True(t, ok, "%s: want integer, got %T", at, value)
		if s.Minimum != nil {
			require.GreaterOrEqual(t, n, *s.Minimum, at)
		}
	case "boolean":
		_, ok := value.(bool)
		require.True(t, ok, "%s: want boolean, got %T", at, value)
	default:
		t.Fatalf("%s: unsupported schema type %q", at, s.Type)
	}
}

// JSON is a subset of YAML, so response bodies decode with the same parser.
func decodeBody(t *testing.T, body []byte) any {
	t.Helper()

	var v any
	require.NoError(t, yaml.Unmarshal(body, &v))

	return v
}

func TestResponsesMatchOpenAPIDocument(t *testing.T) {
	h := newTestHandler(t)
	doc := loadDocument(t, h)

	check := func(method, url, path, body string, status int) string {
		t.Helper()

		rec := get(t, h, method, url, body)
		require.Equal(t, status, rec.Code, rec.Body.String())
		doc.validate(t, doc.responseSchema(t, method, path, status), decodeBody(t, rec.Body.Bytes()), method+" "+path)

		return rec.Header().Get("Location")
	}

	location := check(http.MethodPost, "/v1/sessions", "/sessions", "", http.StatusCreated)
	require.NotEmpty(t, location)

	check(http.MethodGet, location, "/sessions/{id}", "", http.StatusOK)
	check(http.MethodPost, location+"/keys", "/sessions/{id}/keys", `{"keys":["1","2","+","7","×"]}`, http.StatusOK)
	check(http.MethodPost, location+"/keys", "/sessions/{id}/keys", `{"keys":["5","÷","0","+"]}`, http.StatusOK)
	check(http.MethodPost, location+"/keys", "/sessions/{id}/keys", `{"keys":["?"]}`, http.StatusBadRequest)
	check(http.MethodPost, location+"/keys", "/sessions/{id}/keys", `{}`, http.StatusBadRequest)

	missing := "/v1/sessions/" + uuid.NewString()
	check(http.MethodGet, missing, "/sessions/{id}", "", http.StatusNotFound)
	check(http.MethodDelete, missing, "/sessions/{id}", "", http.StatusNotFound)
}

func TestOpenAPIDocument_DocumentsEveryRoute(t *testing.T) {
	doc := loadDocument(t, newTestHandler(t))

	require.NotNil(t, doc.Paths["/sessions"].Post)
	require.NotNil(t, doc.Paths["/sessions/{id}"].Get)
	require.NotNil(t, doc.Paths["/sessions/{id}"].Delete)
	require.NotNil(t, doc.Paths["/sessions/{id}/keys"].Post)
	for _, name := range []string{"Session", "Display", "State", "Error", "PressKeysRequest"} {
		require.Contains(t, doc.Components.Schemas, name)
	}
}
