package curriculum

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/lingo/internal/apperr"
)

//go:embed sample.json
var sampleCourse []byte

// Parse decodes a curriculum document, checks it against the course schema,
// runs the structural checks and returns the course with every level sorted.
func Parse(data []byte) (*Course, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Validation("invalid JSON: %v", err)
	}

	schema, err := compiledCourseSchema()
	if err != nil {
		return nil, fmt.Errorf("compile course schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, apperr.Validation("schema validation failed: %v", err)
	}

	var c Course
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&c); err != nil {
		return nil, apperr.Validation("decode course: %v", err)
	}
	c.link()

	if err := Validate(&c); err != nil {
		return nil, err
	}
	c.Sort()
	return &c, nil
}

// LoadFile reads and parses a curriculum file.
func LoadFile(path string) (*Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Sample returns the built-in sample course.
func Sample() *Course {
	c, err := Parse(sampleCourse)
	if err != nil {
		panic(fmt.Sprintf("curriculum: invalid embedded sample: %v", err))
	}
	return c
}

// link fills the parent ids that the document nests implicitly.
func (c *Course) link() {
	for i := range c.Units {
		u := &c.Units[i]
		u.CourseID = c.ID
		for j := range u.Lessons {
			l := &u.Lessons[j]
			l.UnitID = u.ID
			for k := range l.Challenges {
				ch := &l.Challenges[k]
				ch.LessonID = l.ID
				for m := range ch.Options {
					ch.Options[m].ChallengeID = ch.ID
				}
			}
		}
	}
}
