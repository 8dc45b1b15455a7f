// Package interview implements the mock-interview conversation engine: the
// per-session state record and the stage graph that advances it one
// stimulus at a time.
package interview

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the position of a session in the conversation graph.
type Stage string

const (
	StageStart            Stage = "start"
	StageAwaitingResponse Stage = "awaiting_response"
	StageAskQuestion      Stage = "ask_question"
	StageEnd              Stage = "end"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageStart, StageAwaitingResponse, StageAskQuestion, StageEnd:
		return true
	}
	return false
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %q", string(s))
	}
	return []byte(s), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	v := Stage(b)
	if !v.Valid() {
		return fmt.Errorf("invalid stage %q", string(b))
	}
	*s = v
	return nil
}

// Kind is the flavor of interview being conducted.
type Kind string

const (
	KindTechnical  Kind = "technical"
	KindBehavioral Kind = "behavioral"
	KindMixed      Kind = "mixed"
)

// ParseKind accepts a case-insensitive kind name; empty means mixed.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "":
		return KindMixed, nil
	case KindTechnical, KindBehavioral, KindMixed:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown interview type %q", ErrInvalidConfig, s)
}

// Level is the candidate's declared seniority.
type Level string

const (
	LevelEntry     Level = "entry"
	LevelJunior    Level = "junior"
	LevelMid       Level = "mid"
	LevelSenior    Level = "senior"
	LevelPrincipal Level = "principal"
)

// ParseLevel accepts a case-insensitive level name; empty means mid.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case "":
		return LevelMid, nil
	case LevelEntry, LevelJunior, LevelMid, LevelSenior, LevelPrincipal:
		return l, nil
	}
	return "", fmt.Errorf("%w: unknown experience level %q", ErrInvalidConfig, s)
}

// Role of a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Defaults applied to missing Config fields.
const (
	DefaultJobTitle = "Software Engineer"
	DefaultCompany  = "TechCorp"
	DefaultDuration = 30
)

// Config is the fixed interview setup chosen at creation.
type Config struct {
	UserID          string
	JobTitle        string
	Company         string
	JobDescription  string
	Kind            Kind
	Level           Level
	DurationMinutes int
	VoiceAnalysis   bool
}

// WithDefaults fills empty fields. A zero duration becomes DefaultDuration;
// negative durations are left for Validate to reject.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.JobTitle) == "" {
		c.JobTitle = DefaultJobTitle
	}
	if strings.TrimSpace(c.Company) == "" {
		c.Company = DefaultCompany
	}
	if c.Kind == "" {
		c.Kind = KindMixed
	}
	if c.Level == "" {
		c.Level = LevelMid
	}
	if c.DurationMinutes == 0 {
		c.DurationMinutes = DefaultDuration
	}
	return c
}

// Validate checks enum membership and a positive duration.
func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if _, err := ParseLevel(string(c.Level)); err != nil {
		return err
	}
	if c.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidConfig, c.DurationMinutes)
	}
	return nil
}

// MaxQuestionsFor maps an interview duration in minutes to its question
// budget. Bucket edges belong to the lower bucket.
func MaxQuestionsFor(durationMinutes int) int {
	switch {
	case durationMinutes <= 15:
		return 5
	case durationMinutes <= 30:
		return 8
	case durationMinutes <= 45:
		return 12
	default:
		return 15
	}
}

// State is the full record of one interview session.
type State struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Stage      Stage     `json:"stage"`
	Started    bool      `json:"interview_started"`
	Transcript []Message `json:"transcript"`

	JobTitle        string `json:"job_title"`
	Company         string `json:"company"`
	JobDescription  string `json:"job_description"`
	Kind            Kind   `json:"interview_type"`
	Level           Level  `json:"experience_level"`
	DurationMinutes int    `json:"duration"`

	MaxQuestions    int    `json:"max_questions"`
	QuestionCount   int    `json:"question_count"`
	CurrentQuestion string `json:"current_question"`
	FollowUpNeeded  bool   `json:"follow_up_needed"`

	VoiceAnalysisEnabled bool   `json:"voice_analysis_enabled"`
	LastVoiceFeedback    string `json:"last_voice_feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates a session in the start stage. cfg should already have
// defaults applied and be validated.
func NewState(id string, cfg Config, now time.Time) *State {
	return &State{
		ID:                   id,
		UserID:               cfg.UserID,
		Stage:                StageStart,
		JobTitle:             cfg.JobTitle,
		Company:              cfg.Company,
		JobDescription:       cfg.JobDescription,
		Kind:                 cfg.Kind,
		Level:                cfg.Level,
		DurationMinutes:      cfg.DurationMinutes,
		MaxQuestions:         MaxQuestionsFor(cfg.DurationMinutes),
		VoiceAnalysisEnabled: cfg.VoiceAnalysis,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Active reports whether the session still accepts answers.
func (s *State) Active() bool {
	return s.Stage != StageEnd
}

// LastAssistantMessage returns the most recent assistant turn, if any.
func (s *State) LastAssistantMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return s.Transcript[i].Content
		}
	}
	return ""
}

// Clone returns a deep copy so callers can mutate without sharing the transcript.
func (s *State) Clone() *State {
	c := *s
	c.Transcript = append([]Message(nil), s.Transcript...)
	return &c
}

func (s *State) appendMessage(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content})
}

// history renders the transcript for prompt context.
func (s *State) history() string {
	var sb strings.Builder
	for _, m := range s.Transcript {
		switch m.Role {
		case RoleAssistant:
			sb.WriteString("Interviewer: ")
		case RoleUser:
			sb.WriteString("Candidate: ")
		default:
			continue
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
