package student

import (
	"errors"
	"fmt"
)

const (
	Yes     = "Yes"
	No      = "No"
	Male    = "Male"
	Female  = "Female"
	Daytime = "Daytime"
	Evening = "Evening"
)

// ErrUnknownCategory is returned when a categorical value has no code in its table.
var ErrUnknownCategory = errors.New("unknown category")

// Option is a single selectable value and the code the model was trained on.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Code  int    `json:"code" yaml:"code"`
}

// Table is an ordered, read-only category lookup.
type Table struct {
	name    string
	options []Option
	index   map[string]int
}

func newTable(name string, options ...Option) *Table {
	t := &Table{
		name:    name,
		options: options,
		index:   make(map[string]int, len(options)),
	}
	for _, o := range options {
		t.index[o.Label] = o.Code
	}
	return t
}

// Options returns a copy of the options in display order.
func (t *Table) Options() []Option {
	list := make([]Option, len(t.options))
	copy(list, t.options)
	return list
}

// Labels returns the option labels in display order.
func (t *Table) Labels() []string {
	list := make([]string, 0, len(t.options))
	for _, o := range t.options {
		list = append(list, o.Label)
	}
	return list
}

// Len returns the number of options.
func (t *Table) Len() int {
	return len(t.options)
}

// Contains reports whether label is one of the options.
func (t *Table) Contains(label string) bool {
	_, ok := t.index[label]
	return ok
}

// Code returns the model code for label. Unmapped labels are an error.
func (t *Table) Code(label string) (int, error) {
	code, ok := t.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, t.name, label)
	}
	return code, nil
}

var (
	yesNoTable = newTable("yes_no",
		Option{Label: Yes, Code: 1},
		Option{Label: No, Code: 0},
	)

	genderTable = newTable("gender",
		Option{Label: Male, Code: 1},
		Option{Label: Female, Code: 0},
	)

	attendanceTable = newTable("attendance",
		Option{Label: Daytime, Code: 1},
		Option{Label: Evening, Code: 0},
	)

	maritalStatusTable = newTable("marital_status",
		Option{Label: "Single", Code: 1},
		Option{Label: "Married", Code: 2},
		Option{Label: "Widower", Code: 3},
		Option{Label: "Divorced", Code: 4},
		Option{Label: "Facto Union", Code: 5},
		Option{Label: "Legally Separated", Code: 6},
	)

	previousQualificationTable = newTable("previous_qualification",
		Option{Label: "Secondary education", Code: 1},
		Option{Label: "Higher education - bachelor's degree", Code: 2},
		Option{Label: "Higher education - degree", Code: 3},
		Option{Label: "Higher education - master's", Code: 4},
		Option{Label: "Higher education - doctorate", Code: 5},
		Option{Label: "Frequency of higher education", Code: 6},
		Option{Label: "12th year of schooling - not completed", Code: 9},
		Option{Label: "11th year of schooling - not completed", Code: 10},
		Option{Label: "Other - 11th year of schooling", Code: 12},
		Option{Label: "10th year of schooling", Code: 14},
		Option{Label: "10th year of schooling - not completed", Code: 15},
		Option{Label: "Basic education 3rd cycle (9th/10th/11th year) or equiv.", Code: 19},
		Option{Label: "Basic education 2nd cycle (6th/7th/8th year) or equiv.", Code: 38},
		Option{Label: "Technological specialization course", Code: 39},
		Option{Label: "Higher education - degree (1st cycle)", Code: 40},
		Option{Label: "Professional higher technical course", Code: 42},
		Option{Label: "Higher education - master (2nd cycle)", Code: 43},
	)

	courseTable = newTable("course",
		Option{Label: "Biofuel Production Technologies", Code: 33},
		Option{Label: "Animation and Multimedia Design", Code: 171},
		Option{Label: "Social Service (evening attendance)", Code: 8014},
		Option{Label: "Agronomy", Code: 9003},
		Option{Label: "Communication Design", Code: 9070},
		Option{Label: "Veterinary Nursing", Code: 9085},
		Option{Label: "Informatics Engineering", Code: 9119},
		Option{Label: "Equinculture", Code: 9130},
		Option{Label: "Management", Code: 9147},
		Option{Label: "Social Service", Code: 9238},
		Option{Label: "Tourism", Code: 9254},
		Option{Label: "Nursing", Code: 9500},
		Option{Label: "Oral Hygiene", Code: 9556},
		Option{Label: "Advertising and Marketing Management", Code: 9670},
		Option{Label: "Journalism and Communication", Code: 9773},
		Option{Label: "Basic Education", Code: 9853},
		Option{Label: "Management (evening attendance)", Code: 9991},
	)
)

// Accessors for the shared option tables. Options returns a copy, so callers
// cannot mutate a table.

// YesNo encodes the binary Yes/No controls.
func YesNo() *Table { return yesNoTable }

// Genders encodes Male=1, Female=0.
func Genders() *Table { return genderTable }

// Attendances encodes Daytime=1, Evening=0.
func Attendances() *Table { return attendanceTable }

// MaritalStatuses lists the six marital status codes.
func MaritalStatuses() *Table { return maritalStatusTable }

// PreviousQualifications lists the 17 prior qualification codes.
func PreviousQualifications() *Table { return previousQualificationTable }

// Courses lists the 17 degree course codes.
func Courses() *Table { return courseTable }

// Catalog groups every option table by the input field it serves.
type Catalog struct {
	Gender                []Option `json:"gender" yaml:"gender"`
	MaritalStatus         []Option `json:"marital_status" yaml:"marital_status"`
	PreviousQualification []Option `json:"previous_qualification" yaml:"previous_qualification"`
	Course                []Option `json:"course" yaml:"course"`
	Attendance            []Option `json:"attendance" yaml:"attendance"`
	YesNo                 []Option `json:"yes_no" yaml:"yes_no"`
}

// GetCatalog returns copies of all option tables.
func GetCatalog() *Catalog {
	return &Catalog{
		Gender:                genderTable.Options(),
		MaritalStatus:         maritalStatusTable.Options(),
		PreviousQualification: previousQualificationTable.Options(),
		Course:                courseTable.Options(),
		Attendance:            attendanceTable.Options(),
		YesNo:                 yesNoTable.Options(),
	}
}
