package risk

import "github.com/mchmarny/dropout/pkg/student"

const (
	// MaxFactors caps how many flagged factors are reported.
	MaxFactors = 5

	// NoFactorsMessage is shown when no factor is flagged.
	NoFactorsMessage = "No significant risk factors identified."

	lowApprovedUnits = 3
	lowGrade         = 10.0
	olderAge         = 30
)

type factor struct {
	message string
	applies func(r student.RawInput) bool
}

// factors are rules of thumb over the raw input, evaluated in this order.
// They are not derived from the classifier and do not explain its output.
var factors = []factor{
	{
		message: "Very low number of approved units in second semester",
		applies: func(r student.RawInput) bool { return r.SecondSemApproved < lowApprovedUnits },
	},
	{
		message: "Low grade average in second semester",
		applies: func(r student.RawInput) bool { return r.SecondSemGrade < lowGrade },
	},
	{
		message: "Very low number of approved units in first semester",
		applies: func(r student.RawInput) bool { return r.FirstSemApproved < lowApprovedUnits },
	},
	{
		message: "Tuition fees not up to date",
		applies: func(r student.RawInput) bool { return r.TuitionFeesUpToDate == student.No },
	},
	{
		message: "Low grade average in first semester",
		applies: func(r student.RawInput) bool { return r.FirstSemGrade < lowGrade },
	},
	{
		message: "Higher age at enrollment",
		applies: func(r student.RawInput) bool { return r.Age > olderAge },
	},
	{
		message: "Student has debt",
		applies: func(r student.RawInput) bool { return r.Debtor == student.Yes },
	},
}

// Factors returns up to MaxFactors heuristic risk factors in declaration
// order. The result is empty, not nil, when nothing is flagged.
func Factors(r student.RawInput) []string {
	list := make([]string, 0, MaxFactors)
	for _, f := range factors {
		if len(list) == MaxFactors {
			break
		}
		if f.applies(r) {
			list = append(list, f.message)
		}
	}
	return list
}
