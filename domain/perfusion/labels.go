// Package perfusion holds the domain vocabulary of the perfusion-mimick
// experiment sheets: the raw-label dictionaries, the composite column naming
// for per-timepoint metrics, and the default metadata schema.
package perfusion

import (
	"encoding/json"
	"fmt"
	"os"
)

// LabelMap maps raw, human-written header text to a canonical identifier.
// Lookups are exact; unmatched labels pass through unchanged.
type LabelMap map[string]string

// Canonical returns the canonical identifier for a raw label. Applying it to
// an already-canonical name returns the name unchanged, so renaming is
// idempotent.
func (m LabelMap) Canonical(raw string) string {
	if canon, ok := m[raw]; ok {
		return canon
	}
	return raw
}

// CanonicalSet returns the set of canonical identifiers the map produces
func (m LabelMap) CanonicalSet() map[string]bool {
	set := make(map[string]bool, len(m))
	for _, canon := range m {
		set[canon] = true
	}
	return set
}

// Labels bundles the two disjoint dictionaries: one for single-value run
// attributes, one for metrics repeated per timepoint.
type Labels struct {
	TimeIndependent LabelMap `json:"time_independent"`
	TimeDependent   LabelMap `json:"time_dependent"`
}

// DefaultLabels returns the vocabulary of the current sheet template
func DefaultLabels() Labels {
	return Labels{
		TimeIndependent: LabelMap{
			"Date":                     "Date",
			"Donor":                    "Donor",
			"Static run":               "Static_Run",
			"ambr15 run":               "AMBR15_Run",
			"Conditions":               "Conditions",
			"Agitation_Strategy":       "Agitation_Strategy",
			"System":                   "System",
			"Agitation":                "Agitation",
			"Activation reagent":       "Activation_Reagent",
			"Activation time":          "Activation_Time",
			"Cells/Microbeads":         "Cells_per_Microbeads",
			"DO - activation":          "DO_Activation",
			"DO - expansion":           "DO_Expansion",
			"Cytokine supplementation": "Cytokine_Supplementation",
			"Inoculum (M cell/mL)":     "Inoculum",
			"Notes":                    "Notes",
		},
		TimeDependent: LabelMap{
			"Viable cell density (cell/mL)": "VCD",
			"Viability (%)":                 "Viability",
			"Lactate Concentration":         "Lac",
			"Glucose Concentration":         "Glc",
			"CD25+ %":                       "CD25",
			"CD69+ %":                       "CD69",
			"PD-1+ %":                       "PD-1",
			"TIM-3+ %":                      "TIM-3",
			"LAG-3+ %":                      "LAG-3",
			"Naïve/Memory Stem T-cells %":   "Naive_Memory",
			"Central Memory T-cells %":      "Central_Memory",
			"Effector Memory T cells %":     "Effector_Memory",
			"Effector T cells %":            "Effector",
			"IFN-y+ (%)":                    "IFN-y",
			"TNF-a+ (%)":                    "TNF-a",
			"IFN-y+ TNF-a+​ (%)":       "IFN-y_TNF-a",
			"CD4:CD8 ratio":                 "CD4_CD8_ratio",
		},
	}
}

// LoadLabels reads a label vocabulary from a JSON file, so the system
// tolerates sheet template drift without a rebuild
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Labels{}, fmt.Errorf("failed to read label file: %w", err)
	}
	var labels Labels
	if err := json.Unmarshal(data, &labels); err != nil {
		return Labels{}, fmt.Errorf("failed to parse label file %s: %w", path, err)
	}
	if len(labels.TimeIndependent) == 0 || len(labels.TimeDependent) == 0 {
		return Labels{}, fmt.Errorf("label file %s must declare both time_independent and time_dependent maps", path)
	}
	return labels, nil
}
