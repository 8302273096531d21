package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CourseLists holds the course ids to poll, split by term
//
// Example courses.yaml:
//
//	prior_term: [1201, 1202]
//	current_term: [1310, 1311, 1312]
type CourseLists struct {
	PriorTerm   []int `yaml:"prior_term"`
	CurrentTerm []int `yaml:"current_term"`
}

// All returns prior-term ids followed by current-term ids.
// A repeated id keeps its first position.
func (c *CourseLists) All() []int {
	seen := make(map[int]struct{}, len(c.PriorTerm)+len(c.CurrentTerm))
	all := make([]int, 0, len(c.PriorTerm)+len(c.CurrentTerm))

	for _, list := range [][]int{c.PriorTerm, c.CurrentTerm} {
		for _, id := range list {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}

	return all
}

// LoadCourses reads the course list YAML file
// KnownFields(true): 오타/미사용 필드 즉시 실패
func LoadCourses(path string) (*CourseLists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course list: %w", err)
	}

	var lists CourseLists
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lists); err != nil {
		return nil, fmt.Errorf("decode course list %s: %w", path, err)
	}

	if len(lists.All()) == 0 {
		return nil, errors.New("course list is empty")
	}

	for _, id := range lists.All() {
		if id <= 0 {
			return nil, fmt.Errorf("invalid course id %d", id)
		}
	}

	return &lists, nil
}
