package interview

import "strings"

// Prefixes of the line-oriented evaluation format the model is asked for.
const (
	feedbackPrefix         = "FEEDBACK:"
	followUpNeededPrefix   = "FOLLOW_UP_NEEDED:"
	followUpQuestionPrefix = "FOLLOW_UP_QUESTION:"
)

// Evaluation is the parsed judgment of one answer.
type Evaluation struct {
	Feedback         string
	FollowUpNeeded   bool
	FollowUpQuestion string
}

// ParseEvaluation reads the FEEDBACK / FOLLOW_UP_NEEDED / FOLLOW_UP_QUESTION
// lines out of a model reply. Unrecognized lines are ignored and missing
// fields stay empty, so malformed output degrades to "no feedback, no
// follow-up" instead of failing.
func ParseEvaluation(text string) Evaluation {
	var ev Evaluation
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, feedbackPrefix):
			ev.Feedback = strings.TrimSpace(strings.TrimPrefix(line, feedbackPrefix))
		case strings.HasPrefix(line, followUpNeededPrefix):
			v := strings.TrimPrefix(line, followUpNeededPrefix)
			ev.FollowUpNeeded = strings.Contains(strings.ToLower(v), "yes")
		case strings.HasPrefix(line, followUpQuestionPrefix):
			ev.FollowUpQuestion = strings.TrimSpace(strings.TrimPrefix(line, followUpQuestionPrefix))
		}
	}
	return ev
}

// wantsFollowUp is the first routing predicate after evaluation.
func (e Evaluation) wantsFollowUp() bool {
	return e.FollowUpNeeded && e.FollowUpQuestion != ""
}
