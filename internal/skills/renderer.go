package skills

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/mwhitfield/skillforge/pkg/models"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var funcMap = template.FuncMap{
	"field":   lookupField,
	"str":     asString,
	"bullets": asBullets,
}

var templates = template.Must(
	template.New("skills").Funcs(funcMap).ParseFS(templateFS, "templates/*.md.tmpl"),
)

// templateSet maps a content type to its main document template and the
// reference documents that accompany it. Reference keys are file names inside
// the bundle's references directory.
type templateSet struct {
	main       string
	references map[string]string
}

var templateSets = map[models.ContentType]templateSet{
	models.ContentTypeProcess: {
		main: "process.md.tmpl",
		references: map[string]string{
			"workflow.md":       "process_workflow.md.tmpl",
			"best-practices.md": "process_best_practices.md.tmpl",
		},
	},
	models.ContentTypeExpertise: {
		main: "expertise.md.tmpl",
		references: map[string]string{
			"domain.md":    "expertise_domain.md.tmpl",
			"resources.md": "expertise_resources.md.tmpl",
		},
	},
	models.ContentTypeCreative: {
		main: "creative.md.tmpl",
		references: map[string]string{
			"style.md":      "creative_style.md.tmpl",
			"techniques.md": "creative_techniques.md.tmpl",
		},
	},
	models.ContentTypeTechnical: {
		main: "technical.md.tmpl",
		references: map[string]string{
			"stack.md":    "technical_stack.md.tmpl",
			"pitfalls.md": "technical_pitfalls.md.tmpl",
		},
	},
}

// RenderInput carries everything the templates can see.
type RenderInput struct {
	Name        string
	Description string
	ContentType models.ContentType
	Data        map[string]any
	Confidence  float64
	Notes       string
	GeneratedAt time.Time
}

// Bundle is a rendered skill document set: the main document plus reference
// documents keyed by file name.
type Bundle struct {
	MainContent string
	References  map[string]string
}

// Render produces the document bundle for the given analysis data. Fields the
// analysis did not extract render as empty sections rather than failing.
func Render(in RenderInput) (*Bundle, error) {
	set, ok := templateSets[in.ContentType]
	if !ok {
		return nil, fmt.Errorf("no templates for content type %q", in.ContentType)
	}
	if in.Data == nil {
		in.Data = map[string]any{}
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	main, err := execute(set.main, in)
	if err != nil {
		return nil, err
	}

	refs := make(map[string]string, len(set.references))
	for name, tmplName := range set.references {
		body, err := execute(tmplName, in)
		if err != nil {
			return nil, err
		}
		refs[name] = body
	}

	return &Bundle{MainContent: main, References: refs}, nil
}

func execute(name string, in RenderInput) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, in); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// lookupField walks a path of keys through nested maps, returning nil when any
// segment is absent.
func lookupField(data map[string]any, path ...string) any {
	var cur any = data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// asBullets coerces a decoded JSON value into a list of display strings.
func asBullets(v any) []string {
	switch items := v.(type) {
	case nil:
		return nil
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, asString(item))
		}
		return out
	default:
		return []string{asString(v)}
	}
}
