package cli

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mchmarny/dropout/pkg/assess"
	"github.com/mchmarny/dropout/pkg/model"
	"github.com/mchmarny/dropout/pkg/risk"
	"github.com/mchmarny/dropout/pkg/student"
)

const (
	unitStep  = 1
	gradeStep = 0.1
)

type selectField struct {
	Name    string
	Label   string
	Value   string
	Options []student.Option
	Error   string
}

type numberField struct {
	Name  string
	Label string
	Value string
	Min   float64
	Max   float64
	Step  float64
	Error string
}

type formSection struct {
	Title   string
	Selects []*selectField
	Numbers []*numberField
}

type homeView struct {
	Version   string
	Commit    string
	BuildDate string
	Model     *model.Status
	Sections  []*formSection
	Result    *assess.Assessment
	NoFactors string
	Err       string
}

func faviconHandler(w http.ResponseWriter, r *http.Request) {
	file, err := embedFS.ReadFile("assets/img/favicon.ico")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/x-icon")
	if _, err = w.Write(file); err != nil {
		slog.Error("failed to write favicon", "error", err)
	}
}

func newHomeView(cfg *appConfig, in student.RawInput, fieldErrs map[string]string) *homeView {
	return &homeView{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		Model:     cfg.Model.Status(),
		Sections:  formSections(in, fieldErrs),
		NoFactors: risk.NoFactorsMessage,
	}
}

func renderHome(w http.ResponseWriter, tmpl *template.Template, status int, v *homeView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "home", v); err != nil {
		slog.Error("template render failed", "error", err)
	}
}

func homeViewHandler(tmpl *template.Template, cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		renderHome(w, tmpl, http.StatusOK, newHomeView(cfg, student.DefaultInput(), nil))
	}
}

// assessViewHandler scores the submitted form as a whole and renders the
// result below it. Nothing is scored unless every field parses and validates,
// and every failing field is reported at once.
func assessViewHandler(tmpl *template.Template, cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, serverMaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		in, perr := parseForm(r)
		if perr != nil {
			v := newHomeView(cfg, in, perr.Messages())
			v.Err = "Please correct the highlighted fields."
			renderHome(w, tmpl, http.StatusUnprocessableEntity, v)
			return
		}

		res, err := cfg.Assessor.Assess(r.Context(), in)
		if err != nil {
			var ve *student.ValidationError
			switch {
			case errors.As(err, &ve):
				v := newHomeView(cfg, in, ve.Messages())
				v.Err = "Please correct the highlighted fields."
				renderHome(w, tmpl, http.StatusUnprocessableEntity, v)
			case errors.Is(err, model.ErrModelUnavailable):
				v := newHomeView(cfg, in, nil)
				v.Err = "The prediction model is unavailable. Please train the model first."
				renderHome(w, tmpl, http.StatusServiceUnavailable, v)
			default:
				slog.Error("failed to assess student", "error", err)
				v := newHomeView(cfg, in, nil)
				v.Err = "Error making prediction."
				renderHome(w, tmpl, http.StatusInternalServerError, v)
			}
			return
		}

		v := newHomeView(cfg, in, nil)
		v.Result = res
		renderHome(w, tmpl, http.StatusOK, v)
	}
}

// formParser reads typed form values and collects every parse failure.
type formParser struct {
	r    *http.Request
	errs []student.FieldError
}

func (p *formParser) str(name string) string {
	return strings.TrimSpace(p.r.PostFormValue(name))
}

func (p *formParser) intValue(name string) int {
	v := p.str(name)
	i, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, student.FieldError{Field: name, Message: "must be a whole number"})
		return 0
	}
	return i
}

func (p *formParser) floatValue(name string) float64 {
	v := p.str(name)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, student.FieldError{Field: name, Message: "must be a number"})
		return 0
	}
	return f
}

func parseForm(r *http.Request) (student.RawInput, *student.ValidationError) {
	p := &formParser{r: r}
	in := student.RawInput{
		Age:                   p.intValue("age"),
		Gender:                p.str("gender"),
		MaritalStatus:         p.str("marital_status"),
		PreviousQualification: p.str("previous_qualification"),
		PreviousGrade:         p.floatValue("previous_qualification_grade"),
		Course:                p.str("course"),
		Scholarship:           p.str("scholarship_holder"),
		Debtor:                p.str("debtor"),
		TuitionFeesUpToDate:   p.str("tuition_fees_up_to_date"),
		Attendance:            p.str("attendance"),
		Displaced:             p.str("displaced"),
		SpecialNeeds:          p.str("educational_special_needs"),
		International:         p.str("international"),
		FirstSemEnrolled:      p.intValue("first_sem_enrolled"),
		FirstSemEvaluations:   p.intValue("first_sem_evaluations"),
		FirstSemApproved:      p.intValue("first_sem_approved"),
		FirstSemGrade:         p.floatValue("first_sem_grade"),
		SecondSemEnrolled:     p.intValue("second_sem_enrolled"),
		SecondSemEvaluations:  p.intValue("second_sem_evaluations"),
		SecondSemApproved:     p.intValue("second_sem_approved"),
		SecondSemGrade:        p.floatValue("second_sem_grade"),
		UnemploymentRate:      p.floatValue("unemployment_rate"),
		InflationRate:         p.floatValue("inflation_rate"),
		GDP:                   p.floatValue("gdp"),
	}
	if len(p.errs) == 0 {
		return in, nil
	}

	// report the remaining field problems in the same pass; a field that did
	// not parse keeps its parse message
	var ve *student.ValidationError
	if errors.As(in.Validate(), &ve) {
		failed := make(map[string]bool, len(p.errs))
		for _, e := range p.errs {
			failed[e.Field] = true
		}
		for _, e := range ve.Fields {
			if !failed[e.Field] {
				p.errs = append(p.errs, e)
			}
		}
	}
	return in, &student.ValidationError{Fields: p.errs}
}

func formSections(in student.RawInput, errs map[string]string) []*formSection {
	sel := func(name, label, value string, t *student.Table) *selectField {
		return &selectField{Name: name, Label: label, Value: value, Options: t.Options(), Error: errs[name]}
	}
	num := func(name, label string, value float64, b student.Bounds, step float64) *numberField {
		return &numberField{
			Name:  name,
			Label: label,
			Value: strconv.FormatFloat(value, 'f', -1, 64),
			Min:   b.Min,
			Max:   b.Max,
			Step:  step,
			Error: errs[name],
		}
	}

	return []*formSection{
		{
			Title: "Demographics",
			Numbers: []*numberField{
				num("age", "Age at enrollment", float64(in.Age), student.AgeBounds, unitStep),
			},
			Selects: []*selectField{
				sel("gender", "Gender", in.Gender, student.Genders()),
				sel("marital_status", "Marital status", in.MaritalStatus, student.MaritalStatuses()),
			},
		},
		{
			Title: "Academic Background",
			Selects: []*selectField{
				sel("previous_qualification", "Previous qualification", in.PreviousQualification, student.PreviousQualifications()),
				sel("course", "Course", in.Course, student.Courses()),
			},
			Numbers: []*numberField{
				num("previous_qualification_grade", "Previous qualification grade", in.PreviousGrade, student.PreviousGradeBounds, gradeStep),
			},
		},
		{
			Title: "Financial Status",
			Selects: []*selectField{
				sel("scholarship_holder", "Scholarship holder", in.Scholarship, student.YesNo()),
				sel("debtor", "Debtor", in.Debtor, student.YesNo()),
				sel("tuition_fees_up_to_date", "Tuition fees up to date", in.TuitionFeesUpToDate, student.YesNo()),
			},
		},
		{
			Title: "Other Information",
			Selects: []*selectField{
				sel("attendance", "Daytime/evening attendance", in.Attendance, student.Attendances()),
				sel("displaced", "Displaced", in.Displaced, student.YesNo()),
				sel("educational_special_needs", "Educational special needs", in.SpecialNeeds, student.YesNo()),
				sel("international", "International student", in.International, student.YesNo()),
			},
		},
		{
			Title: "First Semester Performance",
			Numbers: []*numberField{
				num("first_sem_enrolled", "Units enrolled (1st sem)", float64(in.FirstSemEnrolled), student.UnitsBounds, unitStep),
				num("first_sem_evaluations", "Evaluations (1st sem)", float64(in.FirstSemEvaluations), student.EvaluationsBounds, unitStep),
				num("first_sem_approved", "Units approved (1st sem)", float64(in.FirstSemApproved), student.UnitsBounds, unitStep),
				num("first_sem_grade", "Grade average (1st sem)", in.FirstSemGrade, student.SemesterGradeBounds, gradeStep),
			},
		},
		{
			Title: "Second Semester Performance",
			Numbers: []*numberField{
				num("second_sem_enrolled", "Units enrolled (2nd sem)", float64(in.SecondSemEnrolled), student.UnitsBounds, unitStep),
				num("second_sem_evaluations", "Evaluations (2nd sem)", float64(in.SecondSemEvaluations), student.EvaluationsBounds, unitStep),
				num("second_sem_approved", "Units approved (2nd sem)", float64(in.SecondSemApproved), student.UnitsBounds, unitStep),
				num("second_sem_grade", "Grade average (2nd sem)", in.SecondSemGrade, student.SemesterGradeBounds, gradeStep),
			},
		},
		{
			Title: "Economic Context",
			Numbers: []*numberField{
				num("unemployment_rate", "Unemployment rate (%)", in.UnemploymentRate, student.UnemploymentBounds, gradeStep),
				num("inflation_rate", "Inflation rate (%)", in.InflationRate, student.InflationBounds, gradeStep),
				num("gdp", "GDP", in.GDP, student.GDPBounds, gradeStep),
			},
		},
	}
}
