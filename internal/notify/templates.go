package notify

import (
	"fmt"
	"strings"
	"text/template"
)

const (
	defaultSurveySubject = "Fast Food Job Application - Next Steps"
	defaultSurveyBody    = `Hello {{.Name}},

Thank you for your interest in joining our team. Your resume has been
reviewed and we would like to invite you to complete a short survey to help
us better understand your availability and qualifications.

Please complete the survey at the following link:
{{.SurveyURL}}

We look forward to learning more about you.

Best regards,
The HR Team
`

	defaultInterviewSubject = "Fast Food Job Application - Interview Invitation"
	defaultInterviewBody    = `Hello {{.Name}},

Thank you for completing our survey. We are pleased to invite you to an
interview for the position.

Interview Details:
Date: {{.InterviewDate}}
Time: {{.InterviewTime}}
Location: {{.Location}}

Please confirm your attendance by replying to this email.

Best regards,
The HR Team

Priority: {{.Priority}}
`
)

// TemplateData is the value set available to notification templates.
type TemplateData struct {
	Name          string
	Priority      string
	InterviewDate string
	InterviewTime string
	Location      string
	SurveyURL     string
}

// Overrides replaces individual default templates. Empty fields keep the
// built-in text.
type Overrides struct {
	SurveySubject    string
	SurveyBody       string
	InterviewSubject string
	InterviewBody    string
}

// TemplateSet holds the parsed notification templates for both kinds.
type TemplateSet struct {
	surveySubject    *template.Template
	surveyBody       *template.Template
	interviewSubject *template.Template
	interviewBody    *template.Template
}

// ParseTemplates builds the template set, applying any overrides. Malformed
// override templates are a configuration error and fail the batch up front.
func ParseTemplates(o Overrides) (*TemplateSet, error) {
	set := &TemplateSet{}

	var err error
	if set.surveySubject, err = parse("survey-subject", o.SurveySubject, defaultSurveySubject); err != nil {
		return nil, err
	}
	if set.surveyBody, err = parse("survey-body", o.SurveyBody, defaultSurveyBody); err != nil {
		return nil, err
	}
	if set.interviewSubject, err = parse("interview-subject", o.InterviewSubject, defaultInterviewSubject); err != nil {
		return nil, err
	}
	if set.interviewBody, err = parse("interview-body", o.InterviewBody, defaultInterviewBody); err != nil {
		return nil, err
	}

	return set, nil
}

// Render produces the message for the given kind. The recipient is filled in
// by the caller.
func (s *TemplateSet) Render(kind Kind, data TemplateData) (Message, error) {
	var subjectTmpl, bodyTmpl *template.Template
	switch kind {
	case KindSurvey:
		subjectTmpl, bodyTmpl = s.surveySubject, s.surveyBody
	case KindInterview:
		subjectTmpl, bodyTmpl = s.interviewSubject, s.interviewBody
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	subject, err := render(subjectTmpl, data)
	if err != nil {
		return Message{}, err
	}
	body, err := render(bodyTmpl, data)
	if err != nil {
		return Message{}, err
	}

	return Message{Subject: strings.TrimSpace(subject), Body: body}, nil
}

func parse(name, override, fallback string) (*template.Template, error) {
	text := fallback
	if strings.TrimSpace(override) != "" {
		text = override
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data TemplateData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
