// Package readingplan loads reading-plan definitions from YAML files.
package readingplan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/faithbaptist/manna"
	"gopkg.in/yaml.v3"
)

// DefaultPattern matches every YAML file below the plans directory.
const DefaultPattern = "**/*.yaml"

// Load reads every file in fsys matching pattern. A file may hold several
// plans as separate YAML documents. Plans are validated and returned sorted
// by id. Duplicate ids are an error.
func Load(fsys iofs.FS, pattern string) ([]manna.ReadingPlan, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("readingplan: invalid pattern %q", pattern)
	}

	var plans []manna.ReadingPlan
	seen := make(map[string]string)
	err := doublestar.GlobWalk(fsys, pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		data, err := iofs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("readingplan: read %s: %w", path, err)
		}
		parsed, err := Parse(data)
		if err != nil {
			return fmt.Errorf("readingplan: %s: %w", path, err)
		}
		for _, p := range parsed {
			if prev, dup := seen[p.ID]; dup {
				return fmt.Errorf("readingplan: plan %s defined in %s and %s", p.ID, prev, path)
			}
			seen[p.ID] = path
			plans = append(plans, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(plans, func(a, b manna.ReadingPlan) int { return strings.Compare(a.ID, b.ID) })
	return plans, nil
}

// Parse decodes and validates the plans in a YAML stream. Days are sorted by
// number.
func Parse(data []byte) ([]manna.ReadingPlan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var plans []manna.ReadingPlan
	for {
		var p manna.ReadingPlan
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		slices.SortFunc(p.Days, func(a, b manna.PlanDay) int { return a.Day - b.Day })
		plans = append(plans, p)
	}
	return plans, nil
}

// Find returns the plan with id.
func Find(plans []manna.ReadingPlan, id string) (manna.ReadingPlan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return manna.ReadingPlan{}, fmt.Errorf("reading plan %s: %w", id, manna.ErrNotFound)
}
