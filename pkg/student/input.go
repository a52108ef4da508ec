package student

import (
	"fmt"
	"strings"
)

// RawInput holds one student's form values as entered.
type RawInput struct {
	Age                   int     `json:"age" yaml:"age" csv:"age"`
	Gender                string  `json:"gender" yaml:"gender" csv:"gender"`
	MaritalStatus         string  `json:"marital_status" yaml:"marital_status" csv:"marital_status"`
	PreviousQualification string  `json:"previous_qualification" yaml:"previous_qualification" csv:"previous_qualification"`
	PreviousGrade         float64 `json:"previous_qualification_grade" yaml:"previous_qualification_grade" csv:"previous_qualification_grade"`
	Course                string  `json:"course" yaml:"course" csv:"course"`

	Scholarship         string `json:"scholarship_holder" yaml:"scholarship_holder" csv:"scholarship_holder"`
	Debtor              string `json:"debtor" yaml:"debtor" csv:"debtor"`
	TuitionFeesUpToDate string `json:"tuition_fees_up_to_date" yaml:"tuition_fees_up_to_date" csv:"tuition_fees_up_to_date"`

	Attendance    string `json:"attendance" yaml:"attendance" csv:"attendance"`
	Displaced     string `json:"displaced" yaml:"displaced" csv:"displaced"`
	SpecialNeeds  string `json:"educational_special_needs" yaml:"educational_special_needs" csv:"educational_special_needs"`
	International string `json:"international" yaml:"international" csv:"international"`

	FirstSemEnrolled    int     `json:"first_sem_enrolled" yaml:"first_sem_enrolled" csv:"first_sem_enrolled"`
	FirstSemEvaluations int     `json:"first_sem_evaluations" yaml:"first_sem_evaluations" csv:"first_sem_evaluations"`
	FirstSemApproved    int     `json:"first_sem_approved" yaml:"first_sem_approved" csv:"first_sem_approved"`
	FirstSemGrade       float64 `json:"first_sem_grade" yaml:"first_sem_grade" csv:"first_sem_grade"`

	SecondSemEnrolled    int     `json:"second_sem_enrolled" yaml:"second_sem_enrolled" csv:"second_sem_enrolled"`
	SecondSemEvaluations int     `json:"second_sem_evaluations" yaml:"second_sem_evaluations" csv:"second_sem_evaluations"`
	SecondSemApproved    int     `json:"second_sem_approved" yaml:"second_sem_approved" csv:"second_sem_approved"`
	SecondSemGrade       float64 `json:"second_sem_grade" yaml:"second_sem_grade" csv:"second_sem_grade"`

	UnemploymentRate float64 `json:"unemployment_rate" yaml:"unemployment_rate" csv:"unemployment_rate"`
	InflationRate    float64 `json:"inflation_rate" yaml:"inflation_rate" csv:"inflation_rate"`
	GDP              float64 `json:"gdp" yaml:"gdp" csv:"gdp"`
}

// Bounds is an inclusive numeric range accepted by an input control.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

func (b Bounds) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

var (
	AgeBounds           = Bounds{Min: 16, Max: 80}
	PreviousGradeBounds = Bounds{Min: 0, Max: 200}
	UnitsBounds         = Bounds{Min: 0, Max: 20}
	EvaluationsBounds   = Bounds{Min: 0, Max: 30}
	SemesterGradeBounds = Bounds{Min: 0, Max: 20}
	UnemploymentBounds  = Bounds{Min: 5, Max: 20}
	InflationBounds     = Bounds{Min: -2, Max: 5}
	GDPBounds           = Bounds{Min: -5, Max: 5}
)

// DefaultInput returns the values the dashboard form starts with.
func DefaultInput() RawInput {
	return RawInput{
		Age:                   20,
		Gender:                Male,
		MaritalStatus:         maritalStatusTable.options[0].Label,
		PreviousQualification: previousQualificationTable.options[0].Label,
		PreviousGrade:         120.0,
		Course:                courseTable.options[0].Label,
		Scholarship:           Yes,
		Debtor:                Yes,
		TuitionFeesUpToDate:   Yes,
		Attendance:            Daytime,
		Displaced:             Yes,
		SpecialNeeds:          Yes,
		International:         Yes,
		FirstSemEnrolled:      6,
		FirstSemEvaluations:   6,
		FirstSemApproved:      5,
		FirstSemGrade:         12.0,
		SecondSemEnrolled:     6,
		SecondSemEvaluations:  6,
		SecondSemApproved:     5,
		SecondSemGrade:        12.0,
		UnemploymentRate:      12.0,
		InflationRate:         1.0,
		GDP:                   0.0,
	}
}

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields" yaml:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Messages returns the field errors keyed by field name.
func (e *ValidationError) Messages() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

type validator struct {
	errs []FieldError
}

func (v *validator) category(field string, t *Table, value string) {
	if !t.Contains(value) {
		v.errs = append(v.errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%q is not one of: %s", value, strings.Join(t.Labels(), ", ")),
		})
	}
}

func (v *validator) number(field string, b Bounds, value float64) {
	if !b.contains(value) {
		v.errs = append(v.errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%g is outside of [%g, %g]", value, b.Min, b.Max),
		})
	}
}

// Validate checks the whole submission at once and reports every failing field.
func (r RawInput) Validate() error {
	v := &validator{}

	v.number("age", AgeBounds, float64(r.Age))
	v.category("gender", genderTable, r.Gender)
	v.category("marital_status", maritalStatusTable, r.MaritalStatus)
	v.category("previous_qualification", previousQualificationTable, r.PreviousQualification)
	v.number("previous_qualification_grade", PreviousGradeBounds, r.PreviousGrade)
	v.category("course", courseTable, r.Course)

	v.category("scholarship_holder", yesNoTable, r.Scholarship)
	v.category("debtor", yesNoTable, r.Debtor)
	v.category("tuition_fees_up_to_date", yesNoTable, r.TuitionFeesUpToDate)
	v.category("attendance", attendanceTable, r.Attendance)
	v.category("displaced", yesNoTable, r.Displaced)
	v.category("educational_special_needs", yesNoTable, r.SpecialNeeds)
	v.category("international", yesNoTable, r.International)

	v.number("first_sem_enrolled", UnitsBounds, float64(r.FirstSemEnrolled))
	v.number("first_sem_evaluations", EvaluationsBounds, float64(r.FirstSemEvaluations))
	v.number("first_sem_approved", UnitsBounds, float64(r.FirstSemApproved))
	v.number("first_sem_grade", SemesterGradeBounds, r.FirstSemGrade)

	v.number("second_sem_enrolled", UnitsBounds, float64(r.SecondSemEnrolled))
	v.number("second_sem_evaluations", EvaluationsBounds, float64(r.SecondSemEvaluations))
	v.number("second_sem_approved", UnitsBounds, float64(r.SecondSemApproved))
	v.number("second_sem_grade", SemesterGradeBounds, r.SecondSemGrade)

	v.number("unemployment_rate", UnemploymentBounds, r.UnemploymentRate)
	v.number("inflation_rate", InflationBounds, r.InflationRate)
	v.number("gdp", GDPBounds, r.GDP)

	if len(v.errs) > 0 {
		return &ValidationError{Fields: v.errs}
	}
	return nil
}
