// Package analysis runs the job/résumé comparison pipeline: keyword ranking,
// skill extraction, overlap scoring and bullet composition, plus an optional
// generative hint.
package analysis

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis/bullets"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis/scorer"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis/skills"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/tracing"
)

// Request is one analysis input. A nil UseLLM defers to the configured
// default.
type Request struct {
	JobText    string
	ResumeText string
	UseLLM     *bool
}

// Notes carries auxiliary scores.
type Notes struct {
	SkillMatch float64 `json:"skill_match"`
}

// Report is the analysis result. Slices are never nil.
type Report struct {
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	JDKeywords      []string `json:"jd_keywords"`
	ResumeKeywords  []string `json:"resume_keywords"`
	TailoredBullets []string `json:"tailored_bullets"`
	Notes           Notes    `json:"notes"`
}

// Profile is the deterministic part of a Report, which is what gets cached.
type Profile struct {
	JDSkills       []string      `json:"jd_skills"`
	ResumeSkills   []string      `json:"resume_skills"`
	Comparison     scorer.Result `json:"comparison"`
	JDKeywords     []string      `json:"jd_keywords"`
	ResumeKeywords []string      `json:"resume_keywords"`
	Bullets        []string      `json:"bullets"`
}

// Hinter produces an optional extra bullet. It returns "" on any failure.
type Hinter interface {
	Hint(ctx context.Context, jobText, resumeText string) string
}

// Tracker receives a summary of every completed analysis.
type Tracker interface {
	Track(event analytics.AnalysisEvent)
}

// Options configure an Analyzer. Hinter, Cache and Tracker may be nil.
type Options struct {
	KeywordLimit int
	LLMDefault   bool
	Hinter       Hinter
	Cache        *cache.Cache[Profile]
	Tracker      Tracker
	Metrics      *metrics.Metrics
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	keywordLimit int
	llmDefault   bool
	hinter       Hinter
	cache        *cache.Cache[Profile]
	tracker      Tracker
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New creates an Analyzer. A nil Cache, Hinter or Tracker disables that
// stage; a non-positive KeywordLimit falls back to the default.
func New(opts Options) *Analyzer {
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = tokenizer.DefaultKeywordLimit
	}
	return &Analyzer{
		keywordLimit: opts.KeywordLimit,
		llmDefault:   opts.LLMDefault,
		hinter:       opts.Hinter,
		cache:        opts.Cache,
		tracker:      opts.Tracker,
		metrics:      opts.Metrics,
		logger:       logger.WithComponent("analyzer"),
	}
}

// Analyze compares req.JobText against req.ResumeText. It never fails: empty
// texts produce an empty comparison, and a failed hint is simply omitted.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Report {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "analyze")

	useLLM := a.llmDefault
	if req.UseLLM != nil {
		useLLM = *req.UseLLM
	}

	profile, cacheStatus := a.profile(ctx, req)

	tailored := profile.Bullets
	hinted := false
	if useLLM && a.hinter != nil {
		_, hintSpan := tracing.StartChildSpan(ctx, "hint")
		hint := a.hinter.Hint(ctx, req.JobText, req.ResumeText)
		hintSpan.SetAttr("hinted", hint != "")
		hintSpan.End()
		tailored = bullets.WithHint(hint, profile.Bullets)
		hinted = len(tailored) > len(profile.Bullets)
	}

	report := Report{
		MatchedSkills:   profile.Comparison.Matched,
		MissingSkills:   profile.Comparison.Missing,
		JDKeywords:      profile.JDKeywords,
		ResumeKeywords:  profile.ResumeKeywords,
		TailoredBullets: tailored,
		Notes:           Notes{SkillMatch: profile.Comparison.Score},
	}

	elapsed := time.Since(start)
	span.SetAttr("cache", string(cacheStatus))
	span.SetAttr("score", report.Notes.SkillMatch)
	span.End()
	span.Log(ctx)

	a.record(ctx, profile, report, useLLM, hinted, cacheStatus, elapsed)
	return report
}

func (a *Analyzer) profile(ctx context.Context, req Request) (Profile, cache.Status) {
	compute := func() Profile { return a.computeProfile(ctx, req.JobText, req.ResumeText) }
	if a.cache == nil {
		return compute(), cache.StatusDisabled
	}
	return a.cache.Fetch(ctx, cache.Key(req.JobText, req.ResumeText, a.keywordLimit), compute)
}

func (a *Analyzer) computeProfile(ctx context.Context, jobText, resumeText string) Profile {
	_, span := tracing.StartChildSpan(ctx, "keywords")
	jdKeywords := tokenizer.TopKeywords(tokenizer.Normalize(jobText), a.keywordLimit)
	resumeKeywords := tokenizer.TopKeywords(tokenizer.Normalize(resumeText), a.keywordLimit)
	span.End()

	_, span = tracing.StartChildSpan(ctx, "skills")
	jdSkills := skills.Extract(jobText)
	resumeSkills := skills.Extract(resumeText)
	span.SetAttr("jd_skills", len(jdSkills))
	span.SetAttr("resume_skills", len(resumeSkills))
	span.End()

	_, span = tracing.StartChildSpan(ctx, "score")
	cmp := scorer.Compare(jdSkills, resumeSkills)
	span.End()

	return Profile{
		JDSkills:       jdSkills,
		ResumeSkills:   resumeSkills,
		Comparison:     cmp,
		JDKeywords:     jdKeywords,
		ResumeKeywords: resumeKeywords,
		Bullets:        bullets.Compose(cmp.Matched, cmp.Missing),
	}
}

func (a *Analyzer) record(ctx context.Context, p Profile, r Report, useLLM, hinted bool, status cache.Status, elapsed time.Duration) {
	a.metrics.AnalysesTotal.WithLabelValues(strconv.FormatBool(useLLM), string(status)).Inc()
	a.metrics.AnalysisLatency.Observe(elapsed.Seconds())
	a.metrics.SkillMatchScore.Observe(r.Notes.SkillMatch)
	a.metrics.SkillsExtracted.WithLabelValues("job").Observe(float64(len(p.JDSkills)))
	a.metrics.SkillsExtracted.WithLabelValues("resume").Observe(float64(len(p.ResumeSkills)))

	logger.FromContext(ctx).Info("analysis completed",
		"jd_skills", len(p.JDSkills),
		"resume_skills", len(p.ResumeSkills),
		"matched", len(r.MatchedSkills),
		"score", r.Notes.SkillMatch,
		"llm", useLLM,
		"hinted", hinted,
		"cache", status,
		"duration", elapsed,
	)

	if a.tracker == nil {
		return
	}
	a.tracker.Track(analytics.AnalysisEvent{
		Type:          analytics.EventAnalysis,
		RequestID:     logger.RequestID(ctx),
		JDSkills:      len(p.JDSkills),
		ResumeSkills:  len(p.ResumeSkills),
		MatchedSkills: len(r.MatchedSkills),
		MissingSkills: r.MissingSkills,
		Score:         r.Notes.SkillMatch,
		LLMRequested:  useLLM,
		LLMHint:       hinted,
		CacheStatus:   string(status),
		LatencyMs:     float64(elapsed.Microseconds()) / 1000,
		Timestamp:     time.Now().UTC(),
	})
}
