package models

// FieldKind is the expected semantic kind of a framework field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindList   FieldKind = "list"
	KindNested FieldKind = "nested"
)

// Field describes one expected field of a framework's extracted data.
// Nested fields carry their children in Fields.
type Field struct {
	Name   string
	Kind   FieldKind
	Hint   string
	Fields []Field
}

// Framework is the static schema describing the expected shape of extracted
// data for one content type. One framework per content type, read-only at
// runtime, never persisted per-instance.
type Framework struct {
	ContentType ContentType
	Description string
	Fields      []Field
}

var frameworks = map[ContentType]Framework{
	ContentTypeProcess: {
		ContentType: ContentTypeProcess,
		Description: "A repeatable process or workflow someone follows to get a result.",
		Fields: []Field{
			{Name: "summary", Kind: KindString, Hint: "one-paragraph summary of the process"},
			{Name: "workflow", Kind: KindNested, Fields: []Field{
				{Name: "steps", Kind: KindList, Hint: "ordered steps of the workflow"},
				{Name: "inputs", Kind: KindList, Hint: "what the process needs to start"},
				{Name: "outputs", Kind: KindList, Hint: "what the process produces"},
			}},
			{Name: "tools", Kind: KindList, Hint: "tools or systems used"},
			{Name: "bestPractices", Kind: KindList, Hint: "practices that make the process reliable"},
		},
	},
	ContentTypeExpertise: {
		ContentType: ContentTypeExpertise,
		Description: "Domain expertise: concepts, principles and judgment in a subject area.",
		Fields: []Field{
			{Name: "summary", Kind: KindString, Hint: "one-paragraph summary of the expertise"},
			{Name: "domain", Kind: KindNested, Fields: []Field{
				{Name: "concepts", Kind: KindList, Hint: "core concepts of the domain"},
				{Name: "principles", Kind: KindList, Hint: "guiding principles"},
			}},
			{Name: "heuristics", Kind: KindList, Hint: "rules of thumb experts apply"},
			{Name: "resources", Kind: KindList, Hint: "references or sources worth consulting"},
		},
	},
	ContentTypeCreative: {
		ContentType: ContentTypeCreative,
		Description: "A creative practice: style, techniques and illustrative examples.",
		Fields: []Field{
			{Name: "summary", Kind: KindString, Hint: "one-paragraph summary of the practice"},
			{Name: "style", Kind: KindNested, Fields: []Field{
				{Name: "tone", Kind: KindString, Hint: "overall tone"},
				{Name: "voice", Kind: KindString, Hint: "narrative voice"},
				{Name: "influences", Kind: KindList, Hint: "notable influences"},
			}},
			{Name: "techniques", Kind: KindList, Hint: "concrete techniques used"},
			{Name: "examples", Kind: KindList, Hint: "short illustrative examples"},
		},
	},
	ContentTypeTechnical: {
		ContentType: ContentTypeTechnical,
		Description: "Technical knowledge: stack, patterns and pitfalls of a system or craft.",
		Fields: []Field{
			{Name: "summary", Kind: KindString, Hint: "one-paragraph summary"},
			{Name: "stack", Kind: KindNested, Fields: []Field{
				{Name: "languages", Kind: KindList, Hint: "languages involved"},
				{Name: "frameworks", Kind: KindList, Hint: "frameworks and libraries"},
			}},
			{Name: "patterns", Kind: KindList, Hint: "design or usage patterns"},
			{Name: "pitfalls", Kind: KindList, Hint: "common mistakes and how to avoid them"},
		},
	},
}

// FrameworkFor returns the framework for a content type.
func FrameworkFor(ct ContentType) (Framework, bool) {
	f, ok := frameworks[ct]
	return f, ok
}
