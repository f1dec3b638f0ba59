package ai

import (
	"fmt"
	"strings"

	"github.com/mwhitfield/skillforge/pkg/models"
)

// systemPrompt builds the system instructions for a content type, embedding
// the framework schema the provider must fill.
func systemPrompt(fw models.Framework) string {
	var b strings.Builder
	b.WriteString("You are a content analyst. ")
	b.WriteString(fw.Description)
	b.WriteString("\n\nAnalyze the user's content and respond with a single JSON object of the form:\n\n")
	b.WriteString("{\n  \"extractedData\": {\n")
	writeSchema(&b, fw.Fields, 2)
	b.WriteString("  },\n  \"confidence\": <number between 0 and 1>,\n  \"notes\": \"<optional free-text observations>\"\n}\n\n")
	b.WriteString("Respond with JSON only. Omit fields you cannot extract rather than inventing them.")
	return b.String()
}

func writeSchema(b *strings.Builder, fields []models.Field, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, f := range fields {
		switch f.Kind {
		case models.KindNested:
			fmt.Fprintf(b, "%s\"%s\": {\n", pad, f.Name)
			writeSchema(b, f.Fields, indent+1)
			fmt.Fprintf(b, "%s},\n", pad)
		case models.KindList:
			fmt.Fprintf(b, "%s\"%s\": [\"<%s>\"],\n", pad, f.Name, f.Hint)
		default:
			fmt.Fprintf(b, "%s\"%s\": \"<%s>\",\n", pad, f.Name, f.Hint)
		}
	}
}

// userPrompt wraps the raw content for analysis.
func userPrompt(content string) string {
	return "Content to analyze:\n\n" + content
}
