package response

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

// TemplateResponse is a response that renders HTML templates with data.
type TemplateResponse struct {
	Response
}

func render(tmpl *template.Template, data any) (Response, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("response: render %s: %w", tmpl.Name(), err)
	}

	br := NewBaseResponse().
		WithHeader("content-type", "text/html; charset=utf-8").
		WithHeader("content-length", strconv.Itoa(buf.Len())).
		WithBody(bytes.NewReader(buf.Bytes()))

	return &TemplateResponse{Response: br}, nil
}

// NewTemplateResponse renders templateContent, a Go html/template source,
// with data.
func NewTemplateResponse(templateContent string, data any) (Response, error) {
	return NewTemplateResponseWithFuncs(templateContent, nil, data)
}

// NewTemplateResponseWithFuncs is NewTemplateResponse with extra template
// functions.
func NewTemplateResponseWithFuncs(templateContent string, funcMap template.FuncMap, data any) (Response, error) {
	tmpl, err := template.New("response").Funcs(funcMap).Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("response: parse template: %w", err)
	}
	return render(tmpl, data)
}

// NewTemplateResponseFromTemplate renders an already parsed template. Parse
// once at startup and call this per request.
func NewTemplateResponseFromTemplate(tmpl *template.Template, data any) (Response, error) {
	return render(tmpl, data)
}
