package ai

// EntityTypes defines the valid categories for extracted entities.
// These types are used by entity extractors to classify what a value
// refers to.
var EntityTypes = []string{
	"person",
	"location",
	"date",
	"activity",
	"emotion",
	"organization",
	"event",
}
