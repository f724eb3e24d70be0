package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btaeng/trivia-map/internal/model"
)

var kenyaQuestion = model.TriviaQuestion{
	Question:    "Which language is widely spoken in Kenya?",
	Choices:     []string{"Amharic", "Swahili", "Zulu", "Hausa"},
	AnswerIndex: 1,
}

func TestClickBuildsRequest(t *testing.T) {
	s := NewSession(model.CategoryCulture)

	ticket := s.Click("Kenya")
	assert.Equal(t, AwaitingResponse, s.State())

	body, err := json.Marshal(ticket.Request)
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Kenya","category":"culture"}`, string(body))
}

func TestCorrectAnswer(t *testing.T) {
	s := NewSession(model.CategoryCulture)
	ticket := s.Click("Kenya")
	require.True(t, s.Deliver(ticket.Seq, kenyaQuestion))
	assert.Equal(t, ShowingQuestion, s.State())

	fb, err := s.Answer(kenyaQuestion.AnswerIndex)
	require.NoError(t, err)
	assert.Equal(t, "Correct!", fb)
	assert.Equal(t, Answered, s.State())
}

func TestIncorrectAnswer(t *testing.T) {
	s := NewSession(model.CategoryCulture)
	ticket := s.Click("Kenya")
	require.True(t, s.Deliver(ticket.Seq, kenyaQuestion))

	fb, err := s.Answer(3)
	require.NoError(t, err)
	assert.Equal(t, "Incorrect. The correct answer was: Swahili", fb)
}

func TestAnswerOnlyOnce(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	ticket := s.Click("Kenya")
	require.True(t, s.Deliver(ticket.Seq, kenyaQuestion))

	_, err := s.Answer(0)
	require.NoError(t, err)
	_, err = s.Answer(1)
	assert.Error(t, err)
	assert.Equal(t, "Incorrect. The correct answer was: Swahili", s.Feedback())
}

func TestStaleResponseDiscarded(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	first := s.Click("Kenya")
	second := s.Click("Egypt")

	assert.False(t, s.Deliver(first.Seq, kenyaQuestion), "stale response must not apply")
	assert.Equal(t, AwaitingResponse, s.State())
	assert.Equal(t, "Egypt", s.Location())

	egypt := model.TriviaQuestion{Question: "Q", Choices: []string{"a", "b", "c", "d"}, AnswerIndex: 0}
	assert.True(t, s.Deliver(second.Seq, egypt))
	assert.Equal(t, "Q", s.Question().Question)
}

func TestReclickWhileShowingResets(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	ticket := s.Click("Kenya")
	require.True(t, s.Deliver(ticket.Seq, kenyaQuestion))

	s.Click("Somalia")
	assert.Equal(t, AwaitingResponse, s.State())
	assert.Empty(t, s.Question().Question)
	assert.Empty(t, s.Feedback())
}

func TestFailShowsPlaceholderWithoutChoices(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	ticket := s.Click("Kenya")
	require.True(t, s.Fail(ticket.Seq))

	assert.Equal(t, "Error fetching trivia.", s.Question().Question)
	assert.Empty(t, s.Question().Choices)
	_, err := s.Answer(0)
	assert.Error(t, err, "placeholder has no selectable answers")
}

func TestSetRegionClearsQuestion(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	ticket := s.Click("Kenya")
	s.SetRegion("Western Europe")

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, "Western Europe", s.Region())
	assert.False(t, s.Deliver(ticket.Seq, kenyaQuestion))
}

func TestSetCategory(t *testing.T) {
	s := NewSession(model.CategoryHistory)
	require.NoError(t, s.SetCategory(model.CategoryEconomy))
	assert.Equal(t, "economy", s.Click("Japan").Request.Category)
	assert.Error(t, s.SetCategory("sports"))
}

func TestFeedbackOutOfRangeIndex(t *testing.T) {
	q := model.TriviaQuestion{Question: "Q", Choices: []string{"a"}, AnswerIndex: 7}
	assert.Equal(t, IncorrectPrefix, Feedback(q, 0))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-response", AwaitingResponse.String())
	assert.Equal(t, "State(9)", State(9).String())
}
