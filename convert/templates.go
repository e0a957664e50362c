package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"storyexp/config"
	"storyexp/content"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Author     string
	Language   string
	Date       string
	Format     string
	SourceFile string
	ID         string
}

func newValues(c *content.Content, name config.TemplateFieldName, sourceFile string) Values {
	return Values{
		Context:    string(name),
		Title:      c.Title,
		Author:     c.Author,
		Language:   c.Lang(),
		Date:       c.Created.Format("2006-01-02"),
		Format:     c.Format.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile)),
		ID:         c.Identifier,
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
