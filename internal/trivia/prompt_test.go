package trivia

import (
	"strings"
	"testing"
)

func TestBuildPromptNoneYet(t *testing.T) {
	p := BuildPrompt("France", "history", nil)
	for _, want := range []string{"France", "history", "(none yet)", `"answerIndex"`, "array of 4 strings"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestBuildPromptListsAskedQuestions(t *testing.T) {
	p := BuildPrompt("Kenya", "culture", []string{"Q1", "Q2"})
	if strings.Contains(p, "(none yet)") {
		t.Error("prompt should not say none yet when questions exist")
	}
	if !strings.Contains(p, "- Q1\n- Q2") {
		t.Errorf("expected bulleted list in prompt:\n%s", p)
	}
}
