package trivia

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/btaeng/trivia-map/internal/model"
)

var (
	ErrNoJSON       = errors.New("no JSON object in oracle response")
	ErrInvalidJSON  = errors.New("oracle response is not valid JSON")
	ErrMalformed    = errors.New("trivia payload is missing required keys")
	ErrInvalidShape = errors.New("trivia payload has wrong shape")
)

var jsonFence = regexp.MustCompile("(?i)```json")

// ExtractJSON pulls the JSON object out of a model response. Code fences are
// removed, then everything from the first '{' to the last '}' is kept. A
// response without such a pair fails with ErrNoJSON.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if loc := jsonFence.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + text[loc[1]:]
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "```", ""))

	start := strings.Index(text, "{")
	if start < 0 {
		return "", ErrNoJSON
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// rawQuestion uses pointers so absent keys can be told apart from zero values.
type rawQuestion struct {
	Question    *string  `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex *float64 `json:"answerIndex"`
}

// ParseQuestion extracts and decodes a question from a raw model response.
// It does not check the choice count or answer range; see Validate.
func ParseQuestion(text string) (*model.TriviaQuestion, error) {
	obj, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var raw rawQuestion
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var missing []string
	if raw.Question == nil {
		missing = append(missing, "question")
	}
	if raw.Choices == nil {
		missing = append(missing, "choices")
	}
	if raw.AnswerIndex == nil {
		missing = append(missing, "answerIndex")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(missing, ", "))
	}

	idx := *raw.AnswerIndex
	if idx != math.Trunc(idx) {
		return nil, fmt.Errorf("%w: answerIndex %v is not an integer", ErrMalformed, idx)
	}

	return &model.TriviaQuestion{
		Question:    *raw.Question,
		Choices:     raw.Choices,
		AnswerIndex: int(idx),
	}, nil
}

// Validate enforces the four-choice contract.
func Validate(q *model.TriviaQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidShape)
	}
	if len(q.Choices) != model.ChoiceCount {
		return fmt.Errorf("%w: %d choices, want %d", ErrInvalidShape, len(q.Choices), model.ChoiceCount)
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= model.ChoiceCount {
		return fmt.Errorf("%w: answerIndex %d out of range", ErrInvalidShape, q.AnswerIndex)
	}
	return nil
}
