package nodes

import (
	"net/url"
	"sort"
	"strings"

	"eaisdo/model"
)

// Form is the create/edit modal as submitted by the browser.
type Form struct {
	RegionCode        string
	Region            string
	District          string
	NodeName          string
	TechnicalSolution string
	Status            string
}

// FormFromValues reads a submitted HTML form.
func FormFromValues(v url.Values) Form {
	return Form{
		RegionCode:        strings.TrimSpace(v.Get("regionCode")),
		Region:            strings.TrimSpace(v.Get("region")),
		District:          strings.TrimSpace(v.Get("district")),
		NodeName:          strings.TrimSpace(v.Get("nodeName")),
		TechnicalSolution: strings.TrimSpace(v.Get("technicalSolution")),
		Status:            strings.TrimSpace(v.Get("status")),
	}
}

// FormFromNode pre-fills the edit form.
func FormFromNode(n model.Node) Form {
	return Form{
		RegionCode:        n.RegionCode,
		Region:            n.Region,
		District:          n.District,
		NodeName:          n.NodeName,
		TechnicalSolution: n.TechnicalSolution,
		Status:            string(n.Status),
	}
}

func (f Form) Fields() model.Fields {
	return model.Fields{
		Region:            f.Region,
		District:          f.District,
		NodeName:          f.NodeName,
		TechnicalSolution: f.TechnicalSolution,
		Status:            model.Status(f.Status),
		RegionCode:        f.RegionCode,
	}
}

// ValidationErrors maps a form field to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f + ": " + v[f]
	}
	return "invalid node form: " + strings.Join(msgs, "; ")
}

// Validate checks the required fields. It returns nil or a ValidationErrors.
func (f Form) Validate() error {
	errs := ValidationErrors{}
	required := func(field, value, msg string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = msg
		}
	}
	required("regionCode", f.RegionCode, "Пожалуйста, введите код региона")
	required("region", f.Region, "Пожалуйста, введите регион")
	required("district", f.District, "Пожалуйста, выберите округ")
	required("nodeName", f.NodeName, "Пожалуйста, введите имя узла")
	required("technicalSolution", f.TechnicalSolution, "Пожалуйста, введите техническое решение")
	required("status", f.Status, "Пожалуйста, выберите статус")

	if _, ok := errs["district"]; !ok && !model.IsDistrict(f.District) {
		errs["district"] = "Неизвестный округ"
	}
	if _, ok := errs["status"]; !ok && !model.Status(f.Status).Valid() {
		errs["status"] = "Неизвестный статус"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
