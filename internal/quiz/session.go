// Package quiz models what the player sees: the selected category and
// region, the country last clicked, the question in the popup and the
// feedback after answering.
package quiz

import (
	"fmt"

	"github.com/btaeng/trivia-map/internal/model"
)

// State is where a session is in the click → answer cycle.
type State int

const (
	Idle State = iota
	AwaitingResponse
	ShowingQuestion
	Answered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting-response"
	case ShowingQuestion:
		return "showing-question"
	case Answered:
		return "answered"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	// ErrorQuestion replaces the question when the relay could not be reached.
	ErrorQuestion = "Error fetching trivia."
	// CorrectFeedback is shown when the chosen index matches answerIndex.
	CorrectFeedback = "Correct!"
	// IncorrectPrefix precedes the correct choice text on a wrong answer.
	IncorrectPrefix = "Incorrect. The correct answer was: "
)

// Ticket identifies one outstanding trivia request.
type Ticket struct {
	Seq     uint64
	Request model.TriviaRequest
}

// Session is a single player's selection state. It is not safe for
// concurrent use; the UI drives it from one goroutine.
type Session struct {
	category string
	region   string
	location string
	state    State
	seq      uint64
	question model.TriviaQuestion
	feedback string
}

// NewSession starts idle with the given category.
func NewSession(category model.Category) *Session {
	return &Session{category: string(category)}
}

func (s *Session) State() State                   { return s.state }
func (s *Session) Category() string               { return s.category }
func (s *Session) Region() string                 { return s.region }
func (s *Session) Location() string               { return s.location }
func (s *Session) Question() model.TriviaQuestion { return s.question }
func (s *Session) Feedback() string               { return s.feedback }

// SetCategory changes the category used by the next click.
func (s *Session) SetCategory(c model.Category) error {
	if !ValidCategory(string(c)) {
		return fmt.Errorf("unknown category %q", c)
	}
	s.category = string(c)
	return nil
}

// SetRegion changes the region filter. Choosing a region dismisses any
// open question.
func (s *Session) SetRegion(region string) {
	s.region = region
	s.reset()
}

// Click starts a request for location. Any earlier outstanding request is
// superseded; its response will be dropped by Deliver.
func (s *Session) Click(location string) Ticket {
	s.seq++
	s.location = location
	s.state = AwaitingResponse
	s.question = model.TriviaQuestion{}
	s.feedback = ""
	return Ticket{
		Seq:     s.seq,
		Request: model.TriviaRequest{Location: location, Category: s.category},
	}
}

// Deliver shows q if seq belongs to the latest click. It reports whether
// the response was applied.
func (s *Session) Deliver(seq uint64, q model.TriviaQuestion) bool {
	if seq != s.seq || s.state != AwaitingResponse {
		return false
	}
	s.question = q
	s.state = ShowingQuestion
	return true
}

// Fail shows the placeholder question with no choices.
func (s *Session) Fail(seq uint64) bool {
	return s.Deliver(seq, model.TriviaQuestion{Question: ErrorQuestion, Choices: []string{}})
}

// Answer checks choice against the shown question and sets the feedback.
// Only the first answer per question counts.
func (s *Session) Answer(choice int) (string, error) {
	if s.state != ShowingQuestion {
		return "", fmt.Errorf("no question awaiting an answer (state %s)", s.state)
	}
	if choice < 0 || choice >= len(s.question.Choices) {
		return "", fmt.Errorf("choice %d out of range", choice)
	}
	s.feedback = Feedback(s.question, choice)
	s.state = Answered
	return s.feedback, nil
}

func (s *Session) reset() {
	s.seq++
	s.location = ""
	s.state = Idle
	s.question = model.TriviaQuestion{}
	s.feedback = ""
}

// Feedback renders the result of choosing index choice.
func Feedback(q model.TriviaQuestion, choice int) string {
	if choice == q.AnswerIndex {
		return CorrectFeedback
	}
	correct := ""
	if q.AnswerIndex >= 0 && q.AnswerIndex < len(q.Choices) {
		correct = q.Choices[q.AnswerIndex]
	}
	return IncorrectPrefix + correct
}

// ValidCategory reports whether c is one of the selectable categories.
func ValidCategory(c string) bool {
	for _, known := range model.Categories {
		if string(known) == c {
			return true
		}
	}
	return false
}
