package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"employee-management/internal/repositories"
	"employee-management/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type valueKind int

const (
	kindString valueKind = iota
	kindEmail
	kindInt
)

type fieldRule struct {
	rule     string
	kind     valueKind
	nullable bool
}

// profileSchema is the set of users columns a profile update accepts, with
// the validator rule applied to each value.
var profileSchema = map[string]fieldRule{
	"first_name":                    {rule: "required,max=100"},
	"last_name":                     {rule: "required,max=100"},
	"email":                         {rule: "required,email,max=255", kind: kindEmail},
	"gender":                        {rule: "oneof=male female other", nullable: true},
	"blood_group":                   {rule: "max=5", nullable: true},
	"mobile_number":                 {rule: "phone", nullable: true},
	"emergency_contact_number":      {rule: "phone", nullable: true},
	"emergency_contact_person_info": {rule: "max=500", nullable: true},
	"address":                       {rule: "max=500", nullable: true},
	"dob":                           {rule: "datetime=2006-01-02", nullable: true},
	"designation":                   {rule: "max=100", nullable: true},
	"designation_type":              {rule: "max=100", nullable: true},
	"joining_date":                  {rule: "datetime=2006-01-02", nullable: true},
	"experience":                    {rule: "max=100", nullable: true},
	"completed_projects":            {rule: "gte=0", kind: kindInt, nullable: true},
	"performance":                   {rule: "max=100", nullable: true},
	"teams":                         {rule: "max=255", nullable: true},
	"client_report":                 {rule: "max=2000", nullable: true},
}

var errWrongType = errors.New("wrong type")

// normalizeProfileFields validates fields against profileSchema and returns
// the values ready for the update builder. All problems are reported at once.
func normalizeProfileFields(v *validator.Validate, fields repositories.Fields) (repositories.Fields, []utils.FieldError) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(repositories.Fields, len(fields))
	var problems []utils.FieldError
	for _, key := range keys {
		rule, ok := profileSchema[key]
		if !ok {
			problems = append(problems, utils.NewFieldError(key, "unknown", ""))
			continue
		}

		value, err := coerce(fields[key], rule)
		if err != nil {
			problems = append(problems, utils.NewFieldError(key, "type", ""))
			continue
		}
		if value == nil {
			if !rule.nullable {
				problems = append(problems, utils.NewFieldError(key, "required", ""))
				continue
			}
			out[key] = nil
			continue
		}

		if err := v.Var(value, rule.rule); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				problems = append(problems, utils.NewFieldError(key, verrs[0].Tag(), verrs[0].Param()))
				continue
			}
			problems = append(problems, utils.NewFieldError(key, "invalid", ""))
			continue
		}
		out[key] = value
	}
	return out, problems
}

// coerce converts a JSON or form value into the column's Go type. Blank
// strings become nil.
func coerce(raw interface{}, rule fieldRule) (interface{}, error) {
	var text string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		text = strings.TrimSpace(v)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case bool:
		return nil, errWrongType
	default:
		return nil, fmt.Errorf("%w: %T", errWrongType, raw)
	}
	if text == "" {
		return nil, nil
	}

	switch rule.kind {
	case kindInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, errWrongType
		}
		return n, nil
	case kindEmail:
		return strings.ToLower(text), nil
	default:
		return text, nil
	}
}
