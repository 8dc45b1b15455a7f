package interview

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
)

const promptFile = "interview.json"

// Completer is the model gateway as seen by the engine.
type Completer interface {
	Complete(ctx context.Context, tier llm.ModelTier, messages []llm.Message) (string, error)
}

// Emitter receives every assistant message the engine produces, in order.
type Emitter interface {
	Publish(sessionID, message string)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(sessionID, message string)

func (f EmitterFunc) Publish(sessionID, message string) { f(sessionID, message) }

type nopEmitter struct{}

func (nopEmitter) Publish(string, string) {}

// Turn is what one engine cycle produced.
type Turn struct {
	// Messages holds the assistant messages emitted this cycle, in order.
	Messages      []string
	VoiceFeedback string
	Ended         bool
}

// Last returns the final emitted message, or "".
func (t Turn) Last() string {
	if len(t.Messages) == 0 {
		return ""
	}
	return t.Messages[len(t.Messages)-1]
}

// Engine advances interview sessions through the stage graph. It holds no
// session state of its own and is safe for concurrent use; callers must
// serialize cycles on the same State.
type Engine struct {
	llm     Completer
	emitter Emitter
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine creates an engine. A nil emitter or logger is replaced by a no-op.
func NewEngine(c Completer, emitter Emitter, logger *zap.Logger) *Engine {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{llm: c, emitter: emitter, logger: logger, now: time.Now}
}

// Start greets the candidate and asks the first question.
func (e *Engine) Start(ctx context.Context, st *State) (Turn, error) {
	var turn Turn
	if st.Stage != StageStart {
		return turn, ErrAlreadyStarted
	}

	st.MaxQuestions = MaxQuestionsFor(st.DurationMinutes)
	st.Started = true
	e.emit(st, &turn, prompts.Format(prompts.MustGet(promptFile, "greeting"), e.vars(st, nil)))

	if err := e.advance(ctx, st, &turn); err != nil {
		return turn, err
	}
	return turn, nil
}

// Respond evaluates an answer to the pending question and routes to a
// follow-up, the next question or the closing.
func (e *Engine) Respond(ctx context.Context, st *State, answer string) (Turn, error) {
	var turn Turn
	answer = strings.TrimSpace(answer)
	switch {
	case answer == "":
		return turn, ErrEmptyResponse
	case st.Stage == StageEnd:
		return turn, ErrInterviewEnded
	case st.Stage != StageAwaitingResponse:
		return turn, ErrNotAwaitingResponse
	}

	st.appendMessage(RoleUser, answer)

	ev, voice, err := e.evaluate(ctx, st, answer)
	if err != nil {
		return turn, err
	}

	feedback := ev.Feedback
	if voice != "" {
		feedback += "\n\nVoice Feedback: " + voice
		st.LastVoiceFeedback = voice
		turn.VoiceFeedback = voice
	}
	e.emit(st, &turn, "Feedback: "+feedback)

	st.FollowUpNeeded = ev.FollowUpNeeded
	if ev.wantsFollowUp() {
		st.FollowUpNeeded = false
		st.CurrentQuestion = ev.FollowUpQuestion
		e.transition(st, StageAwaitingResponse)
		e.emit(st, &turn, ev.FollowUpQuestion)
		return turn, nil
	}
	st.FollowUpNeeded = false

	if err := e.advance(ctx, st, &turn); err != nil {
		return turn, err
	}
	return turn, nil
}

// End closes the interview early. Ending an already finished interview is a
// no-op returning an empty Turn.
func (e *Engine) End(ctx context.Context, st *State) (Turn, error) {
	var turn Turn
	if st.Stage == StageEnd {
		turn.Ended = true
		return turn, nil
	}
	if err := e.close(ctx, st, &turn); err != nil {
		return turn, err
	}
	return turn, nil
}

// advance applies the question-budget predicate: end when the budget is
// spent, otherwise ask the next question.
func (e *Engine) advance(ctx context.Context, st *State, turn *Turn) error {
	if nextStage(st) == StageEnd {
		return e.close(ctx, st, turn)
	}
	e.transition(st, StageAskQuestion)
	return e.askQuestion(ctx, st, turn)
}

// nextStage is the pure routing function used once follow-ups are ruled out.
func nextStage(st *State) Stage {
	if st.QuestionCount >= st.MaxQuestions {
		return StageEnd
	}
	return StageAskQuestion
}

func (e *Engine) askQuestion(ctx context.Context, st *State, turn *Turn) error {
	prompt := prompts.Format(prompts.MustGet(promptFile, "next-question"), e.vars(st, nil))
	question, err := e.llm.Complete(ctx, llm.TierStandard, []llm.Message{
		llm.System(e.systemPrompt(st)),
		llm.User(prompt),
	})
	if err != nil {
		return fmt.Errorf("failed to generate question: %w", err)
	}
	question = strings.TrimSpace(question)

	st.QuestionCount++
	st.CurrentQuestion = question
	e.transition(st, StageAwaitingResponse)
	e.emit(st, turn, question)
	return nil
}

func (e *Engine) close(ctx context.Context, st *State, turn *Turn) error {
	prompt := prompts.Format(prompts.MustGet(promptFile, "closing"), e.vars(st, nil))
	closing, err := e.llm.Complete(ctx, llm.TierStandard, []llm.Message{
		llm.System(e.systemPrompt(st)),
		llm.User(prompt),
	})
	if err != nil {
		return fmt.Errorf("failed to generate closing: %w", err)
	}

	st.CurrentQuestion = ""
	e.transition(st, StageEnd)
	e.emit(st, turn, strings.TrimSpace(closing))
	turn.Ended = true
	return nil
}

// evaluate runs answer evaluation and, when enabled, delivery analysis
// concurrently. Only an evaluation failure is returned.
func (e *Engine) evaluate(ctx context.Context, st *State, answer string) (Evaluation, string, error) {
	vars := e.vars(st, map[string]string{
		"Question": st.CurrentQuestion,
		"Answer":   answer,
	})

	var raw, voice string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := e.llm.Complete(gctx, llm.TierStandard, []llm.Message{
			llm.System(e.systemPrompt(st)),
			llm.User(prompts.Format(prompts.MustGet(promptFile, "evaluate-answer"), vars)),
		})
		if err != nil {
			return fmt.Errorf("failed to evaluate answer: %w", err)
		}
		raw = out
		return nil
	})
	if st.VoiceAnalysisEnabled {
		g.Go(func() error {
			out, err := e.llm.Complete(gctx, llm.TierLite, []llm.Message{
				llm.User(prompts.Format(prompts.MustGet(promptFile, "voice-analysis"), vars)),
			})
			if err != nil {
				e.logger.Warn("voice analysis failed",
					zap.String("interview_id", st.ID),
					zap.Error(err))
				return nil
			}
			voice = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Evaluation{}, "", err
	}

	ev := ParseEvaluation(raw)
	if ev.Feedback == "" && ev.FollowUpQuestion == "" {
		e.logger.Debug("evaluation had no recognizable fields",
			zap.String("interview_id", st.ID))
	}
	return ev, voice, nil
}

func (e *Engine) emit(st *State, turn *Turn, text string) {
	st.appendMessage(RoleAssistant, text)
	st.UpdatedAt = e.now()
	turn.Messages = append(turn.Messages, text)
	e.emitter.Publish(st.ID, text)
}

func (e *Engine) transition(st *State, to Stage) {
	e.logger.Debug("stage transition",
		zap.String("interview_id", st.ID),
		zap.String("from", string(st.Stage)),
		zap.String("to", string(to)),
		zap.Int("question_count", st.QuestionCount),
		zap.Int("max_questions", st.MaxQuestions))
	st.Stage = to
}

func (e *Engine) systemPrompt(st *State) string {
	instructions, err := prompts.Get(promptFile, "instructions-"+string(st.Kind))
	if err != nil {
		instructions = prompts.MustGet(promptFile, "instructions-mixed")
	}
	return prompts.Format(prompts.MustGet(promptFile, "system"), e.vars(st, map[string]string{
		"TypeInstructions": prompts.Format(instructions, e.vars(st, nil)),
	}))
}

func (e *Engine) vars(st *State, extra map[string]string) map[string]string {
	jd := st.JobDescription
	if strings.TrimSpace(jd) == "" {
		jd = "Not provided"
	}
	v := map[string]string{
		"InterviewType":   string(st.Kind),
		"JobTitle":        st.JobTitle,
		"Company":         st.Company,
		"ExperienceLevel": string(st.Level),
		"Duration":        strconv.Itoa(st.DurationMinutes),
		"JobDescription":  jd,
		"History":         st.history(),
	}
	for k, val := range extra {
		v[k] = val
	}
	return v
}
