package http

import (
	"strings"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"golang.org/x/text/language"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.TraditionalChinese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// fieldMessages holds one template per validation code; {param} is replaced.
var fieldMessages = map[language.Tag]map[string]string{
	language.English: {
		domain.CodeRequired:    "This field is required.",
		domain.CodeNumber:      "Must be a number.",
		domain.CodeString:      "Must be text.",
		domain.CodeMin:         "Must be at least {param}.",
		domain.CodeMax:         "Must be at most {param}.",
		domain.CodeMinLength:   "Must be at least {param} characters.",
		domain.CodeMaxLength:   "Must be at most {param} characters.",
		domain.CodeURL:         "Must be a valid URL.",
		domain.CodeDate:        "Must be a date in YYYY-MM-DD format.",
		domain.CodeOneOf:       "Must be one of: {param}.",
		domain.CodeUnique:      "Must be unique.",
		domain.CodeLteDuration: "Must not exceed the challenge duration of {param} days.",
		domain.CodeInvalid:     "Invalid value.",
		domain.CodeMissingDays: "Every day needs a task. Missing days: {param}.",
	},
	language.TraditionalChinese: {
		domain.CodeRequired:    "此欄位為必填。",
		domain.CodeNumber:      "必須是數字。",
		domain.CodeString:      "必須是文字。",
		domain.CodeMin:         "不得小於 {param}。",
		domain.CodeMax:         "不得大於 {param}。",
		domain.CodeMinLength:   "至少需要 {param} 個字元。",
		domain.CodeMaxLength:   "最多 {param} 個字元。",
		domain.CodeURL:         "必須是有效的網址。",
		domain.CodeDate:        "日期格式必須為 YYYY-MM-DD。",
		domain.CodeOneOf:       "必須是下列之一：{param}。",
		domain.CodeUnique:      "不可重複。",
		domain.CodeLteDuration: "不可超過挑戰天數（{param} 天）。",
		domain.CodeInvalid:     "無效的值。",
		domain.CodeMissingDays: "每一天都需要任務，缺少第 {param} 天。",
	},
}

// matchLanguage picks the best supported language for an Accept-Language header.
func matchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, index, _ := languageMatcher.Match(tags...)
	return supportedLanguages[index]
}

func localizeFieldErrors(errs domain.FieldErrors, lang language.Tag) domain.FieldErrors {
	catalog := fieldMessages[lang]
	out := make(domain.FieldErrors, len(errs))
	for i, fe := range errs {
		switch tmpl, ok := catalog[fe.Code]; {
		case fe.Message != "":
		case ok:
			fe.Message = strings.ReplaceAll(tmpl, "{param}", fe.Param)
		default:
			fe.Message = fe.Code
		}
		out[i] = fe
	}
	return out
}
