package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"

	StepBasicInfo  = "basic_info"
	StepDailyTasks = "daily_tasks"
	StepMetrics    = "metrics"
	StepReview     = "review"
)

type BasicInfo struct {
	Name          string `json:"name" validate:"min=5,max=200"`
	Description   string `json:"description" validate:"min=20,max=5000"`
	DurationDays  int    `json:"duration_days" validate:"min=1"`
	ImageURL      string `json:"image_url" validate:"omitempty,url"`
	ChallengeType string `json:"challenge_type" validate:"max=50"`
	StartDate     string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
}

type TaskInput struct {
	DayNumber   int    `json:"day_number" validate:"min=1"`
	Title       string `json:"title" validate:"min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	ResourceURL string `json:"resource_url" validate:"omitempty,url"`
}

type MetricInput struct {
	MetricName          string   `json:"metric_name" validate:"min=2,max=100"`
	MetricType          string   `json:"metric_type" validate:"metric_type"`
	Description         string   `json:"description" validate:"max=500"`
	CollectionFrequency []string `json:"collection_frequency" validate:"dive,oneof=initial daily final"`
}

// ChallengeForm is everything a host enters to create a challenge.
type ChallengeForm struct {
	BasicInfo
	Tasks   []TaskInput   `json:"tasks" validate:"dive"`
	Metrics []MetricInput `json:"metrics" validate:"dive"`
}

func NewChallengeForm() ChallengeForm {
	return ChallengeForm{
		BasicInfo: BasicInfo{DurationDays: DefaultDurationDays},
		Tasks:     []TaskInput{},
		Metrics:   []MetricInput{},
	}
}

// Normalize trims free text and fills the metric frequency default.
func (f ChallengeForm) Normalize() ChallengeForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.ChallengeType = strings.TrimSpace(f.ChallengeType)
	f.StartDate = strings.TrimSpace(f.StartDate)

	tasks := make([]TaskInput, len(f.Tasks))
	for i, t := range f.Tasks {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		t.VideoURL = strings.TrimSpace(t.VideoURL)
		t.ResourceURL = strings.TrimSpace(t.ResourceURL)
		tasks[i] = t
	}
	f.Tasks = tasks

	metrics := make([]MetricInput, len(f.Metrics))
	for i, m := range f.Metrics {
		m.MetricName = strings.TrimSpace(m.MetricName)
		m.Description = strings.TrimSpace(m.Description)
		m.MetricType = strings.TrimSpace(m.MetricType)
		m.CollectionFrequency = normalizeFrequency(m.CollectionFrequency)
		metrics[i] = m
	}
	f.Metrics = metrics

	return f
}

type WizardStep struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

var ChallengeWizardSteps = []WizardStep{
	{ID: StepBasicInfo, Title: "Basic Info", Fields: []string{"name", "description", "duration_days", "image_url", "challenge_type", "start_date"}},
	{ID: StepDailyTasks, Title: "Daily Tasks", Fields: []string{"tasks"}},
	{ID: StepMetrics, Title: "Metrics", Fields: []string{"metrics"}},
	{ID: StepReview, Title: "Review", Fields: []string{}},
}

// FormValidator checks challenge forms, either whole or one wizard step at a time.
type FormValidator struct {
	v *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("metric_type", func(fl validator.FieldLevel) bool {
		return IsKnownMetricType(fl.Field().String())
	})

	return &FormValidator{v: v}
}

func (fv *FormValidator) ValidateAll(form ChallengeForm) FieldErrors {
	return fv.validate(form, nil)
}

func (fv *FormValidator) ValidateStep(form ChallengeForm, step WizardStep) FieldErrors {
	include := make(map[string]bool, len(step.Fields))
	for _, f := range step.Fields {
		include[f] = true
	}
	return fv.validate(form, include)
}

// ValidateBasicInfo is used when editing an existing challenge.
func (fv *FormValidator) ValidateBasicInfo(info BasicInfo) FieldErrors {
	return fv.ValidateStep(ChallengeForm{BasicInfo: info}, ChallengeWizardSteps[0])
}

func (fv *FormValidator) validate(form ChallengeForm, include map[string]bool) FieldErrors {
	form = form.Normalize()

	var err error
	if include == nil {
		err = fv.v.Struct(&form)
	} else {
		err = fv.v.StructFiltered(&form, func(ns []byte) bool {
			name, ok := formFieldName(string(ns))
			return ok && !include[name]
		})
	}

	errs := translateValidationErrors(err)
	if include == nil || include["tasks"] {
		errs = append(errs, checkTaskDays(form)...)
	}
	return errs
}

var formFieldNames = map[string]string{
	"Name":          "name",
	"Description":   "description",
	"DurationDays":  "duration_days",
	"ImageURL":      "image_url",
	"ChallengeType": "challenge_type",
	"StartDate":     "start_date",
	"Tasks":         "tasks",
	"Metrics":       "metrics",
}

// formFieldName maps a validator namespace such as "ChallengeForm.Tasks[0].Title"
// to its top-level form field ("tasks"). ok is false for the embedded header group.
func formFieldName(ns string) (string, bool) {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.TrimPrefix(ns, "BasicInfo")
	ns = strings.TrimPrefix(ns, ".")
	if ns == "" {
		return "", false
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return formFieldNames[ns], true
}

func translateValidationErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "form", Code: CodeInvalid, Message: err.Error()}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		field = strings.TrimPrefix(field, "BasicInfo.")

		out = append(out, FieldError{Field: field, Code: validationCode(fe), Param: fe.Param()})
	}
	return out
}

func validationCode(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return CodeRequired
	case "min":
		if isString {
			if fe.Value() == "" {
				return CodeRequired
			}
			return CodeMinLength
		}
		return CodeMin
	case "max":
		if isString {
			return CodeMaxLength
		}
		return CodeMax
	case "url":
		return CodeURL
	case "datetime":
		return CodeDate
	case "oneof", "metric_type":
		return CodeOneOf
	}
	return CodeInvalid
}

func checkTaskDays(form ChallengeForm) FieldErrors {
	var errs FieldErrors
	seen := make(map[int]bool, len(form.Tasks))

	for i, t := range form.Tasks {
		field := fmt.Sprintf("tasks[%d].day_number", i)
		if t.DayNumber < 1 {
			continue
		}
		if form.DurationDays >= 1 && t.DayNumber > form.DurationDays {
			errs = append(errs, FieldError{Field: field, Code: CodeLteDuration, Param: strconv.Itoa(form.DurationDays)})
			continue
		}
		if seen[t.DayNumber] {
			errs = append(errs, FieldError{Field: field, Code: CodeUnique})
			continue
		}
		seen[t.DayNumber] = true
	}
	return errs
}

// ChallengeDraft is the server-side state of a host's creation wizard.
type ChallengeDraft struct {
	ID        string        `json:"id"`
	HostID    string        `json:"host_id"`
	Step      int           `json:"step"`
	Form      ChallengeForm `json:"form"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewChallengeDraft(hostID string) *ChallengeDraft {
	now := time.Now().UTC()
	return &ChallengeDraft{
		ID:        uuid.NewString(),
		HostID:    hostID,
		Form:      NewChallengeForm(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (d *ChallengeDraft) CurrentStep() WizardStep {
	return ChallengeWizardSteps[d.clampedStep()]
}

func (d *ChallengeDraft) IsTerminal() bool {
	return d.clampedStep() == len(ChallengeWizardSteps)-1
}

func (d *ChallengeDraft) clampedStep() int {
	switch {
	case d.Step < 0:
		return 0
	case d.Step >= len(ChallengeWizardSteps):
		return len(ChallengeWizardSteps) - 1
	}
	return d.Step
}

// Next validates the current step and advances. At the terminal step it runs
// the full validation instead and reports readyToSubmit; the caller submits.
func (d *ChallengeDraft) Next(v *FormValidator) (readyToSubmit bool, errs FieldErrors) {
	d.Step = d.clampedStep()

	if d.IsTerminal() {
		if errs := v.ValidateAll(d.Form); len(errs) > 0 {
			return false, errs
		}
		return true, nil
	}

	if errs := v.ValidateStep(d.Form, d.CurrentStep()); len(errs) > 0 {
		return false, errs
	}

	d.Step++
	d.touch()
	return false, nil
}

func (d *ChallengeDraft) Previous() {
	d.Step = d.clampedStep()
	if d.Step > 0 {
		d.Step--
		d.touch()
	}
}

// ReplaceForm stores edited values without validating them.
func (d *ChallengeDraft) ReplaceForm(form ChallengeForm) {
	if form.Tasks == nil {
		form.Tasks = []TaskInput{}
	}
	if form.Metrics == nil {
		form.Metrics = []MetricInput{}
	}
	d.Form = form
	d.touch()
}

// AppendTask adds a row; a nil row gets the next day number by position.
func (d *ChallengeDraft) AppendTask(t *TaskInput) {
	row := TaskInput{DayNumber: len(d.Form.Tasks) + 1}
	if t != nil {
		row = *t
	}
	d.Form.Tasks = append(d.Form.Tasks, row)
	d.touch()
}

// RemoveTask drops a row; remaining day numbers are left as they are.
func (d *ChallengeDraft) RemoveTask(index int) error {
	if index < 0 || index >= len(d.Form.Tasks) {
		return ErrRowIndexOutOfRange
	}
	d.Form.Tasks = append(d.Form.Tasks[:index], d.Form.Tasks[index+1:]...)
	d.touch()
	return nil
}

func (d *ChallengeDraft) AppendMetric(m *MetricInput) {
	row := MetricInput{
		MetricType:          MetricTypeNumberInput,
		CollectionFrequency: append([]string(nil), defaultFrequency...),
	}
	if m != nil {
		row = *m
	}
	d.Form.Metrics = append(d.Form.Metrics, row)
	d.touch()
}

func (d *ChallengeDraft) RemoveMetric(index int) error {
	if index < 0 || index >= len(d.Form.Metrics) {
		return ErrRowIndexOutOfRange
	}
	d.Form.Metrics = append(d.Form.Metrics[:index], d.Form.Metrics[index+1:]...)
	d.touch()
	return nil
}

func (d *ChallengeDraft) touch() {
	d.UpdatedAt = time.Now().UTC()
}
