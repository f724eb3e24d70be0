package model

import "encoding/json"

// Category is a trivia topic the user can pick.
type Category string

const (
	CategoryHistory            Category = "history"
	CategoryGeography          Category = "geography"
	CategoryEntertainment      Category = "entertainment"
	CategoryCuisine            Category = "cuisine"
	CategoryCulture            Category = "culture"
	CategoryGovernmentPolitics Category = "government-politics"
	CategoryEconomy            Category = "economy"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryHistory,
	CategoryGeography,
	CategoryEntertainment,
	CategoryCuisine,
	CategoryCulture,
	CategoryGovernmentPolitics,
	CategoryEconomy,
}

// ChoiceCount is the number of options every question must carry.
const ChoiceCount = 4

// GeoFeature is one country boundary with its display metadata.
type GeoFeature struct {
	Name     string          `json:"name"`
	Region   string          `json:"region"`
	Geometry json.RawMessage `json:"geometry"`
}

// TriviaRequest is the body of POST /api/trivia.
type TriviaRequest struct {
	Location string `json:"location"`
	Category string `json:"category"`
}

// TriviaQuestion is one multiple-choice question returned by the relay.
type TriviaQuestion struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
}

// ExclusionKey partitions the duplicate-avoidance cache.
// Both parts are compared verbatim; "France" and "france" are different keys.
type ExclusionKey struct {
	Location string `json:"location"`
	Category string `json:"category"`
}

// String renders the key the way it is logged.
func (k ExclusionKey) String() string {
	return k.Location + ":" + k.Category
}

// ExclusionStat reports how many questions have been issued for one key.
type ExclusionStat struct {
	Key   ExclusionKey `json:"key"`
	Count int          `json:"count"`
}

// GeneratedQuestion is a question produced by a batch run.
type GeneratedQuestion struct {
	ID       string         `json:"id"`
	Location string         `json:"location"`
	Region   string         `json:"region"`
	Category string         `json:"category"`
	Trivia   TriviaQuestion `json:"trivia"`
}

// QuestionSet is the file written by the generate command.
type QuestionSet struct {
	Region      string              `json:"region"`
	Category    string              `json:"category"`
	Model       string              `json:"model"`
	Questions   []GeneratedQuestion `json:"questions"`
	GeneratedAt string              `json:"generated_at"`
}
