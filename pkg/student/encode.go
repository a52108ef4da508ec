package student

import (
	"fmt"
	"slices"
)

// Column names in the order the classifier was fit on. The order is part of
// the model contract: the classifier reads features positionally.
const (
	ColMaritalStatus         = "Marital_status"
	ColCourse                = "Course"
	ColAttendance            = "Daytime_evening_attendance"
	ColPreviousQualification = "Previous_qualification"
	ColPreviousGrade         = "Previous_qualification_grade"
	ColNationality           = "Nacionality"
	ColMothersQualification  = "Mothers_qualification"
	ColFathersQualification  = "Fathers_qualification"
	ColMothersOccupation     = "Mothers_occupation"
	ColFathersOccupation     = "Fathers_occupation"
	ColDisplaced             = "Displaced"
	ColSpecialNeeds          = "Educational_special_needs"
	ColDebtor                = "Debtor"
	ColTuitionFeesUpToDate   = "Tuition_fees_up_to_date"
	ColGender                = "Gender"
	ColScholarship           = "Scholarship_holder"
	ColAge                   = "Age_at_enrollment"
	ColInternational         = "International"
	ColFirstSemCredited      = "Curricular_units_1st_sem_credited"
	ColFirstSemEnrolled      = "Curricular_units_1st_sem_enrolled"
	ColFirstSemEvaluations   = "Curricular_units_1st_sem_evaluations"
	ColFirstSemApproved      = "Curricular_units_1st_sem_approved"
	ColFirstSemGrade         = "Curricular_units_1st_sem_grade"
	ColFirstSemWithoutEvals  = "Curricular_units_1st_sem_without_evaluations"
	ColSecondSemCredited     = "Curricular_units_2nd_sem_credited"
	ColSecondSemEnrolled     = "Curricular_units_2nd_sem_enrolled"
	ColSecondSemEvaluations  = "Curricular_units_2nd_sem_evaluations"
	ColSecondSemApproved     = "Curricular_units_2nd_sem_approved"
	ColSecondSemGrade        = "Curricular_units_2nd_sem_grade"
	ColSecondSemWithoutEvals = "Curricular_units_2nd_sem_without_evaluations"
	ColUnemploymentRate      = "Unemployment_rate"
	ColInflationRate         = "Inflation_rate"
	ColGDP                   = "GDP"
)

var columns = []string{
	ColMaritalStatus,
	ColCourse,
	ColAttendance,
	ColPreviousQualification,
	ColPreviousGrade,
	ColNationality,
	ColMothersQualification,
	ColFathersQualification,
	ColMothersOccupation,
	ColFathersOccupation,
	ColDisplaced,
	ColSpecialNeeds,
	ColDebtor,
	ColTuitionFeesUpToDate,
	ColGender,
	ColScholarship,
	ColAge,
	ColInternational,
	ColFirstSemCredited,
	ColFirstSemEnrolled,
	ColFirstSemEvaluations,
	ColFirstSemApproved,
	ColFirstSemGrade,
	ColFirstSemWithoutEvals,
	ColSecondSemCredited,
	ColSecondSemEnrolled,
	ColSecondSemEvaluations,
	ColSecondSemApproved,
	ColSecondSemGrade,
	ColSecondSemWithoutEvals,
	ColUnemploymentRate,
	ColInflationRate,
	ColGDP,
}

// Columns returns a copy of the training-time column order.
func Columns() []string {
	return slices.Clone(columns)
}

// defaultColumns are never sourced from the form and always carry these values.
var defaultColumns = map[string]float64{
	ColNationality:           1,
	ColMothersQualification:  19,
	ColFathersQualification:  19,
	ColMothersOccupation:     9,
	ColFathersOccupation:     9,
	ColFirstSemCredited:      0,
	ColFirstSemWithoutEvals:  0,
	ColSecondSemCredited:     0,
	ColSecondSemWithoutEvals: 0,
}

// DefaultColumns returns the constant-valued columns keyed by name.
func DefaultColumns() map[string]float64 {
	m := make(map[string]float64, len(defaultColumns))
	for k, v := range defaultColumns {
		m[k] = v
	}
	return m
}

// Feature is a single named column value.
type Feature struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// FeatureVector is one row of model input in column order.
type FeatureVector []Feature

// Names returns the column names in order.
func (v FeatureVector) Names() []string {
	list := make([]string, len(v))
	for i, f := range v {
		list[i] = f.Name
	}
	return list
}

// Values returns the positional values the classifier consumes.
func (v FeatureVector) Values() []float64 {
	list := make([]float64, len(v))
	for i, f := range v {
		list[i] = f.Value
	}
	return list
}

// Get returns the value of the named column.
func (v FeatureVector) Get(name string) (float64, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Map returns the vector keyed by column name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for _, f := range v {
		m[f.Name] = f.Value
	}
	return m
}

type encoder struct {
	values map[string]float64
	err    error
}

func (e *encoder) code(col string, t *Table, label string) {
	if e.err != nil {
		return
	}
	c, err := t.Code(label)
	if err != nil {
		e.err = err
		return
	}
	e.values[col] = float64(c)
}

// Encode maps a submission to the model's feature vector. Any categorical
// value without a code is an error; raw values are never passed through.
func Encode(r RawInput) (FeatureVector, error) {
	e := &encoder{values: DefaultColumns()}

	e.code(ColMaritalStatus, maritalStatusTable, r.MaritalStatus)
	e.code(ColCourse, courseTable, r.Course)
	e.code(ColAttendance, attendanceTable, r.Attendance)
	e.code(ColPreviousQualification, previousQualificationTable, r.PreviousQualification)
	e.code(ColDisplaced, yesNoTable, r.Displaced)
	e.code(ColSpecialNeeds, yesNoTable, r.SpecialNeeds)
	e.code(ColDebtor, yesNoTable, r.Debtor)
	e.code(ColTuitionFeesUpToDate, yesNoTable, r.TuitionFeesUpToDate)
	e.code(ColGender, genderTable, r.Gender)
	e.code(ColScholarship, yesNoTable, r.Scholarship)
	e.code(ColInternational, yesNoTable, r.International)
	if e.err != nil {
		return nil, fmt.Errorf("encoding input: %w", e.err)
	}

	e.values[ColPreviousGrade] = r.PreviousGrade
	e.values[ColAge] = float64(r.Age)
	e.values[ColFirstSemEnrolled] = float64(r.FirstSemEnrolled)
	e.values[ColFirstSemEvaluations] = float64(r.FirstSemEvaluations)
	e.values[ColFirstSemApproved] = float64(r.FirstSemApproved)
	e.values[ColFirstSemGrade] = r.FirstSemGrade
	e.values[ColSecondSemEnrolled] = float64(r.SecondSemEnrolled)
	e.values[ColSecondSemEvaluations] = float64(r.SecondSemEvaluations)
	e.values[ColSecondSemApproved] = float64(r.SecondSemApproved)
	e.values[ColSecondSemGrade] = r.SecondSemGrade
	e.values[ColUnemploymentRate] = r.UnemploymentRate
	e.values[ColInflationRate] = r.InflationRate
	e.values[ColGDP] = r.GDP

	vec := make(FeatureVector, 0, len(columns))
	for _, c := range columns {
		v, ok := e.values[c]
		if !ok {
			return nil, fmt.Errorf("encoding input: column %s has no value", c)
		}
		vec = append(vec, Feature{Name: c, Value: v})
	}
	return vec, nil
}
