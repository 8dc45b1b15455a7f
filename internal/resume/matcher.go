package resume

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
)

// MatchResult scores a résumé against a job. Scores are 0-100 and the lists
// are never nil.
type MatchResult struct {
	OverallMatch            int      `json:"overallMatch"`
	SkillsMatch             int      `json:"skillsMatch"`
	ExperienceMatch         int      `json:"experienceMatch"`
	EducationMatch          int      `json:"educationMatch"`
	MissingKeywords         []string `json:"missingKeywords"`
	RecommendedImprovements []string `json:"recommendedImprovements"`
}

// Matcher runs match analysis and remembers recent results.
type Matcher struct {
	llm    Completer
	cache  *lru.Cache[string, MatchResult]
	logger *zap.Logger
}

// NewMatcher creates a Matcher keeping up to cacheSize results.
func NewMatcher(c Completer, cacheSize int, logger *zap.Logger) (*Matcher, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, MatchResult](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{llm: c, cache: cache, logger: logger}, nil
}

// Analyze scores resumeData (any JSON value) against jobDescription.
func (m *Matcher) Analyze(ctx context.Context, resumeData json.RawMessage, jobDescription string) (*MatchResult, error) {
	resumeText := compactJSON(resumeData)
	if resumeText == "" || resumeText == "null" || strings.TrimSpace(jobDescription) == "" {
		return nil, &ValidationError{Message: "Both resume_data and job_description are required"}
	}

	key := cacheKey(resumeText, jobDescription)
	if cached, ok := m.cache.Get(key); ok {
		m.logger.Debug("match analysis cache hit", zap.String("key", key[:12]))
		return cached.clone(), nil
	}

	reply, err := m.llm.Complete(ctx, llm.TierAdvanced, []llm.Message{
		llm.System(prompts.MustGet(promptFile, "match-system")),
		llm.User(prompts.Format(prompts.MustGet(promptFile, "match-analysis"), map[string]string{
			"ResumeData":     resumeText,
			"JobDescription": jobDescription,
		})),
	})
	if err != nil {
		return nil, upstream(err)
	}

	doc, raw, err := decodeObject(reply)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.Match, raw); err != nil {
		return nil, &UpstreamError{Err: "Match analysis failed validation", Message: err.Error(), Raw: raw, Cause: err}
	}

	result := normalizeMatch(doc)
	m.cache.Add(key, *result)
	return result.clone(), nil
}

// normalizeMatch fills every field, defaulting scores to 0 and lists to empty.
func normalizeMatch(doc map[string]any) *MatchResult {
	return &MatchResult{
		OverallMatch:            score(doc["overallMatch"]),
		SkillsMatch:             score(doc["skillsMatch"]),
		ExperienceMatch:         score(doc["experienceMatch"]),
		EducationMatch:          score(doc["educationMatch"]),
		MissingKeywords:         stringList(doc["missingKeywords"]),
		RecommendedImprovements: stringList(doc["recommendedImprovements"]),
	}
}

func score(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%")), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func stringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func (r MatchResult) clone() *MatchResult {
	r.MissingKeywords = append([]string{}, r.MissingKeywords...)
	r.RecommendedImprovements = append([]string{}, r.RecommendedImprovements...)
	return &r
}

// compactJSON accepts either a JSON document or a JSON string holding text.
func compactJSON(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

func cacheKey(resume, job string) string {
	h := sha256.New()
	h.Write([]byte(resume))
	h.Write([]byte{0})
	h.Write([]byte(job))
	return hex.EncodeToString(h.Sum(nil))
}
