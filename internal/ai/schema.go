package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type Type string

const (
	TypeObject  Type = "OBJECT"
	TypeArray   Type = "ARRAY"
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeInteger Type = "INTEGER"
	TypeBoolean Type = "BOOLEAN"
)

// Schema описывает форму JSON, которую мы ждем от модели.
// Ее же отправляем провайдеру, если он умеет structured output.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
}

// SchemaError - ответ модели не разбирается или не совпадает со схемой
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "ai: response does not match schema: " + e.Reason
}

func schemaErrorf(format string, args ...any) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// Validate проверяет, что raw - валидный JSON нужной формы
func (s *Schema) Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return schemaErrorf("invalid json: %v", err)
	}
	return s.validate("$", v)
}

func (s *Schema) validate(path string, v any) error {
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return schemaErrorf("%s: expected object, got %s", path, kindOf(v))
		}
		for _, key := range s.Required {
			if val, ok := obj[key]; !ok || val == nil {
				return schemaErrorf("%s: missing required field %q", path, key)
			}
		}
		for _, key := range sortedKeys(s.Properties) {
			val, ok := obj[key]
			if !ok || val == nil {
				continue
			}
			if err := s.Properties[key].validate(path+"."+key, val); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return schemaErrorf("%s: expected array, got %s", path, kindOf(v))
		}
		if s.Items == nil {
			return nil
		}
		for i, item := range arr {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return schemaErrorf("%s: expected string, got %s", path, kindOf(v))
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return schemaErrorf("%s: expected number, got %s", path, kindOf(v))
		}
	case TypeInteger:
		f, ok := v.(float64)
		if !ok || f != float64(int64(f)) {
			return schemaErrorf("%s: expected integer, got %s", path, kindOf(v))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return schemaErrorf("%s: expected boolean, got %s", path, kindOf(v))
		}
	}
	return nil
}

// JSONSchema - та же схема в формате JSON Schema, для провайдеров без нативной поддержки
func (s *Schema) JSONSchema() map[string]any {
	out := map[string]any{"type": strings.ToLower(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		out["properties"] = lo.MapValues(s.Properties, func(p *Schema, _ string) map[string]any {
			return p.JSONSchema()
		})
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func sortedKeys(m map[string]*Schema) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Модели иногда оборачивают JSON в markdown блок ```json ... ```
var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
