package analytics

import "time"

// EventType identifies the kind of analytics event.
type EventType string

const EventAnalysis EventType = "analysis"

// AnalysisEvent summarizes one completed analysis. It carries counts and the
// missing skill names only, never the submitted texts.
type AnalysisEvent struct {
	Type          EventType `json:"type"`
	RequestID     string    `json:"request_id,omitempty"`
	JDSkills      int       `json:"jd_skills"`
	ResumeSkills  int       `json:"resume_skills"`
	MatchedSkills int       `json:"matched_skills"`
	MissingSkills []string  `json:"missing_skills"`
	Score         float64   `json:"score"`
	LLMRequested  bool      `json:"llm_requested"`
	LLMHint       bool      `json:"llm_hint"`
	CacheStatus   string    `json:"cache_status"`
	LatencyMs     float64   `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
}
