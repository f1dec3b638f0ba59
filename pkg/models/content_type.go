package models

// ContentType classifies the raw content handed to the analysis pipeline.
// Each type has a fixed framework schema and template set.
type ContentType string

const (
	ContentTypeProcess   ContentType = "process"
	ContentTypeExpertise ContentType = "expertise"
	ContentTypeCreative  ContentType = "creative"
	ContentTypeTechnical ContentType = "technical"
)

// ContentTypes lists every supported content type.
var ContentTypes = []ContentType{
	ContentTypeProcess,
	ContentTypeExpertise,
	ContentTypeCreative,
	ContentTypeTechnical,
}

// Valid reports whether ct is one of the supported content types.
func (ct ContentType) Valid() bool {
	for _, t := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}
