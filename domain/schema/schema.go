// Package schema declares the metadata schema the cleaned table is validated
// against, and the casting strategies that enforce it.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ColumnType is the closed set of declared column types. Casting strategies
// are selected by this tag, never by free-form matching on the raw type name.
type ColumnType string

const (
	TypeInt    ColumnType = "int"
	TypeFloat  ColumnType = "float"
	TypeString ColumnType = "string"
)

// ParseColumnType normalizes the type names that appear in metadata files
// ("Int64", "float64", "string", ...) onto the closed tag set
func ParseColumnType(raw string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "int64", "integer":
		return TypeInt, nil
	case "float", "float64", "double":
		return TypeFloat, nil
	case "string", "str", "text":
		return TypeString, nil
	default:
		return "", fmt.Errorf("unknown column type %q", raw)
	}
}

// UnmarshalJSON parses and validates the declared type tag
func (ct *ColumnType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseColumnType(raw)
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// Entry declares the target type for one canonical base column name and
// whether the column repeats per timepoint
type Entry struct {
	Type          ColumnType `json:"type"`
	TimeDependent bool       `json:"time_dependent"`
}

// Schema maps canonical base column names to their declarations
type Schema map[string]Entry

// Load reads a schema from a JSON metadata file
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("schema file %s declares no columns", path)
	}
	return s, nil
}

// SortedNames returns the declared base column names in deterministic order
func (s Schema) SortedNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the schema of the current perfusion-mimick template,
// matching the external metadata.json shipped under references/
func Default() Schema {
	s := Schema{
		"Date":                     {Type: TypeString},
		"Run":                      {Type: TypeInt},
		"Donor":                    {Type: TypeInt},
		"Type":                     {Type: TypeString},
		"Static_Run":               {Type: TypeString},
		"AMBR15_Run":               {Type: TypeString},
		"Conditions":               {Type: TypeString},
		"Agitation_Strategy":       {Type: TypeString},
		"System":                   {Type: TypeString},
		"Volume":                   {Type: TypeFloat},
		"pH_Strategy":              {Type: TypeString},
		"Feeding_Strategy":         {Type: TypeString},
		"Agitation":                {Type: TypeString},
		"Activation_Reagent":       {Type: TypeString},
		"Activation_Time":          {Type: TypeString},
		"Cells_per_Microbeads":     {Type: TypeFloat},
		"DO_Activation":            {Type: TypeFloat},
		"DO_Expansion":             {Type: TypeFloat},
		"Cytokine_Supplementation": {Type: TypeString},
		"Inoculum":                 {Type: TypeFloat},
		"Notes":                    {Type: TypeString},
	}
	for _, metric := range []string{
		"VCD", "Viability", "Lac", "Glc",
		"CD25", "CD69", "PD-1", "TIM-3", "LAG-3",
		"Naive_Memory", "Central_Memory", "Effector_Memory", "Effector",
		"IFN-y", "TNF-a", "IFN-y_TNF-a", "CD4_CD8_ratio",
	} {
		s[metric] = Entry{Type: TypeFloat, TimeDependent: true}
	}
	return s
}
