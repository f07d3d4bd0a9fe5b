package curriculum

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const courseSchemaURL = "schema://lingo/course.json"

// courseSchema describes a curriculum file: one course with its full tree.
var courseSchema = map[string]any{
	"type":     "object",
	"required": []string{"id", "title", "units"},
	"properties": map[string]any{
		"id":       map[string]any{"type": "integer", "minimum": 1},
		"title":    map[string]any{"type": "string", "minLength": 1},
		"imageSrc": map[string]any{"type": "string"},
		"units": map[string]any{
			"type":  "array",
			"items": unitSchema,
		},
	},
}

var unitSchema = map[string]any{
	"type":     "object",
	"required": []string{"id", "title", "order", "lessons"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "integer", "minimum": 1},
		"title":       map[string]any{"type": "string", "minLength": 1},
		"description": map[string]any{"type": "string"},
		"order":       map[string]any{"type": "integer", "minimum": 1},
		"lessons": map[string]any{
			"type":  "array",
			"items": lessonSchema,
		},
	},
}

var lessonSchema = map[string]any{
	"type":     "object",
	"required": []string{"id", "title", "order", "challenges"},
	"properties": map[string]any{
		"id":    map[string]any{"type": "integer", "minimum": 1},
		"title": map[string]any{"type": "string", "minLength": 1},
		"order": map[string]any{"type": "integer", "minimum": 1},
		"challenges": map[string]any{
			"type":  "array",
			"items": challengeSchema,
		},
	},
}

var challengeSchema = map[string]any{
	"type":     "object",
	"required": []string{"id", "type", "question", "order", "options"},
	"properties": map[string]any{
		"id":       map[string]any{"type": "integer", "minimum": 1},
		"type":     map[string]any{"type": "string", "enum": []string{string(Select), string(Assist)}},
		"question": map[string]any{"type": "string", "minLength": 1},
		"order":    map[string]any{"type": "integer", "minimum": 1},
		"options": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "text", "correct"},
				"properties": map[string]any{
					"id":       map[string]any{"type": "integer", "minimum": 1},
					"text":     map[string]any{"type": "string", "minLength": 1},
					"correct":  map[string]any{"type": "boolean"},
					"imageSrc": map[string]any{"type": "string"},
					"audioSrc": map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledCourseSchema compiles the course schema once per process.
func compiledCourseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go maps with typed slices.
		raw, err := json.Marshal(courseSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(courseSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(courseSchemaURL)
	})
	return compiled, compileErr
}
