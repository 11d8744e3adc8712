package form

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("number is not finite")

// ValidationErrors maps a field name to its message. It is returned as a
// value from step checks, it only becomes an error at the API boundary.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type requiredRule struct {
	field   string
	message string
}

// categoryRules is the conditional layer shared by both modes. Adding a
// category means adding a row here.
var categoryRules = map[string][]requiredRule{
	CategoryLand: {
		{FieldPlotSize, "plot size is required"},
		{FieldUnit, "measurement unit is required"},
	},
	CategoryRealEstate: {
		{FieldRooms, "number of rooms is required"},
		{FieldToilets, "number of toilets is required"},
	},
	CategoryVehicles:    {{FieldCondition, "condition is required"}},
	CategoryPhones:      {{FieldCondition, "condition is required"}},
	CategoryElectronics: {{FieldCondition, "condition is required"}},
	CategoryFashion:     {{FieldCondition, "condition is required"}},
	CategoryJobs:        {{FieldJobType, "job type is required"}},
}

var baseRules = map[int][]requiredRule{
	1: {
		{FieldCategory, "category is required"},
		{FieldSubcategory, "subcategory is required"},
		{FieldLocation, "location is required"},
	},
	2: {
		{FieldTitle, "title is required"},
		{FieldDescription, "description is required"},
	},
	3: {
		{FieldPrice, "price is required"},
	},
}

// numericFields must parse as non-negative numbers when filled in.
var numericFields = map[string]string{
	FieldPrice:    "price must be a valid number",
	FieldPlotSize: "plot size must be a valid number",
	FieldRooms:    "number of rooms must be a valid number",
	FieldToilets:  "number of toilets must be a valid number",
	FieldYear:     "year must be a valid number",
}

// Schema is the ruleset for one mode.
type Schema struct {
	mode          Mode
	requireImages bool
	requireTerms  bool
}

func NewSchema(mode Mode) *Schema {
	if mode == ModeEdit {
		return &Schema{mode: ModeEdit}
	}
	return &Schema{mode: ModeCreate, requireImages: true, requireTerms: true}
}

func (sc *Schema) Mode() Mode {
	return sc.mode
}

// ValidateStep checks only the fields that belong to step.
func (sc *Schema) ValidateStep(s State, step int) ValidationErrors {
	errs := ValidationErrors{}
	for _, r := range baseRules[step] {
		if s.Value(r.field) == "" {
			errs[r.field] = r.message
		}
	}

	switch step {
	case 2:
		category := s.Value(FieldCategory)
		for _, r := range categoryRules[category] {
			if s.Value(r.field) == "" {
				errs[r.field] = r.message
			}
		}
		if s.Value(FieldRentalType) != "" && s.Value(FieldRentalPeriod) == "" {
			errs[FieldRentalPeriod] = "rental period is required"
		}
		for _, f := range categoryAttributeFields[category] {
			checkNumeric(s, f, errs)
		}
	case 3:
		checkNumeric(s, FieldPrice, errs)
		if sc.requireImages && !s.HasImages() {
			errs[FieldImages] = "at least one image is required"
		}
		if sc.requireTerms && !s.TermsAccepted {
			errs[FieldTerms] = "you must accept the terms"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate runs every step, used before submission.
func (sc *Schema) Validate(s State) ValidationErrors {
	all := ValidationErrors{}
	for step := FirstStep; step <= LastStep; step++ {
		for f, msg := range sc.ValidateStep(s, step) {
			all[f] = msg
		}
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

func checkNumeric(s State, field string, errs ValidationErrors) {
	msg, ok := numericFields[field]
	if !ok {
		return
	}
	raw := s.Value(field)
	if raw == "" || errs[field] != "" {
		return
	}
	n, err := ParseNumber(raw)
	if err != nil || n < 0 {
		errs[field] = msg
	}
}

// ParseNumber reads a numeric form value the same way validation does.
// NaN and infinities are rejected.
func ParseNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errNotFinite
	}
	return n, nil
}
