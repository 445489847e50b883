package fixtures

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/forgo/seedbed/internal/model"
	"github.com/forgo/seedbed/internal/repository"
)

// Fixture set names
const (
	Organizations = "organizations"
	Users         = "users"
)

//go:embed data/*.json
var embedded embed.FS

// knownTables maps fixture set names onto store tables
var knownTables = map[string]string{
	Organizations: repository.OrganizationTable,
	Users:         repository.UserTable,
}

// Set is one named list of fixture records destined for a single table
type Set struct {
	Name    string
	Table   string
	records []model.Record
}

// NewSet builds a set from records. The records are copied.
func NewSet(name string, records []model.Record) Set {
	return Set{Name: name, Table: TableFor(name), records: model.CloneRecords(records)}
}

// Records returns a copy of the set's records
func (s Set) Records() []model.Record {
	return model.CloneRecords(s.records)
}

// Len returns the number of records in the set
func (s Set) Len() int {
	return len(s.records)
}

// Validate checks every record against the entity rules for the set.
// Sets without a known entity only need non-empty records.
func (s Set) Validate() error {
	for i, rec := range s.records {
		if err := ValidateRecord(s.Name, rec); err != nil {
			return fmt.Errorf("%s[%d]: %w", s.Name, i, err)
		}
	}
	return nil
}

// TableFor returns the store table a fixture set is written to
func TableFor(name string) string {
	if table, ok := knownTables[name]; ok {
		return table
	}
	return name
}

// ValidateRecord checks a single fixture record against the rules for its set
func ValidateRecord(setName string, rec model.Record) error {
	var errs []model.FieldError
	switch setName {
	case Organizations:
		org, err := model.OrganizationFromRecord(rec)
		if err != nil {
			return err
		}
		errs = org.Validate()
	case Users:
		user, err := model.UserFromRecord(rec)
		if err != nil {
			return err
		}
		errs = user.Validate()
	default:
		if len(rec) == 0 {
			errs = append(errs, model.FieldError{Field: "*", Message: "record has no fields"})
		}
	}
	if len(errs) > 0 {
		return model.NewValidationError(errs)
	}
	return nil
}

// Load returns the fixture sets from dir, or the embedded sets when dir is empty
func Load(dir string) ([]Set, error) {
	if dir == "" {
		return Default()
	}
	return LoadDir(dir)
}

// Default returns the embedded organizations and users sets
func Default() ([]Set, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return loadFS(sub)
}

// LoadDir reads one set per *.json, *.yaml or *.yml file in dir.
// JSON files may contain comments and trailing commas.
func LoadDir(dir string) ([]Set, error) {
	return loadFS(os.DirFS(dir))
}

// Names returns the set names in order
func Names(sets []Set) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}

func loadFS(fsys fs.FS) ([]Set, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	seen := make(map[string]string)
	var sets []Set
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		file := e.Name()
		ext := path.Ext(file)
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		name := strings.TrimSuffix(file, ext)
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("fixture set %q defined by both %s and %s", name, prev, file)
		}
		seen[name] = file

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}

		var records []model.Record
		if ext == ".json" {
			records, err = parseJSON(data)
		} else {
			records, err = parseYAML(data)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}

		set := Set{Name: name, Table: TableFor(name), records: records}
		if err := set.Validate(); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("no fixture files found")
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

func parseJSON(data []byte) ([]model.Record, error) {
	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(standard))
	dec.UseNumber()
	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	records := make([]model.Record, len(raw))
	for i, r := range raw {
		records[i] = model.Record(normalizeNumbers(r).(map[string]interface{}))
	}
	return records, nil
}

func parseYAML(data []byte) ([]model.Record, error) {
	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	records := make([]model.Record, len(raw))
	for i, r := range raw {
		records[i] = model.Record(r)
	}
	return records, nil
}

// normalizeNumbers turns json.Number into int64 when integral, float64 otherwise
func normalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	default:
		return v
	}
}
