package records

import (
	"time"
)

// JobDescription is a parsed job description. Fields tagged "-" are storage
// metadata and never come from the generator.
type JobDescription struct {
	ID          string    `json:"-"`
	FileName    string    `json:"-"`
	ContentHash string    `json:"-"`
	CreatedAt   time.Time `json:"-"`

	Role               string      `json:"role"`
	Location           *string     `json:"location"`
	ExperienceRequired *Experience `json:"experience_required"`
	MandatorySkills    []string    `json:"mandatory_skills"`
	SupportingSkills   []string    `json:"supporting_skills"`
	Tools              []string    `json:"tools"`
	DomainKnowledge    []string    `json:"domain_knowledge"`
	Responsibilities   []string    `json:"responsibilities"`
}

// Skills returns mandatory skills followed by supporting ones.
func (jd *JobDescription) Skills() []string {
	skills := make([]string, 0, len(jd.MandatorySkills)+len(jd.SupportingSkills))
	skills = append(skills, jd.MandatorySkills...)
	return append(skills, jd.SupportingSkills...)
}

type WorkHistory struct {
	Title        string  `json:"title"`
	Organization string  `json:"organization"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
}

type SkillContext struct {
	Skill   string `json:"skill"`
	Context string `json:"context"`
}

type ToolContext struct {
	Tool    string `json:"tool"`
	Context string `json:"context"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Resume is a parsed resume scoped to a single job description.
type Resume struct {
	ID          string       `json:"-"`
	JDID        string       `json:"-"`
	FileName    string       `json:"-"`
	ContentHash string       `json:"-"`
	Status      ReviewStatus `json:"-"`
	CreatedAt   time.Time    `json:"-"`

	CandidateName             *string        `json:"candidate_name"`
	TotalExperienceYears      *float64       `json:"total_experience_years"`
	Location                  *string        `json:"location"`
	TitlesWithDates           []WorkHistory  `json:"titles_with_dates"`
	CareerProgression         []string       `json:"career_progression"`
	SkillsWithContext         []SkillContext `json:"skills_with_context"`
	ToolsWithContext          []ToolContext  `json:"tools_with_context"`
	DomainExperience          []string       `json:"domain_experience"`
	Projects                  []Project      `json:"projects"`
	LeadershipSignals         []string       `json:"leadership_signals"`
	ImpactMetrics             []string       `json:"impact_metrics"`
	ProfessionalPresenceLinks []string       `json:"professional_presence_links"`
}

// Name returns the candidate name or an empty string when none was extracted.
func (r *Resume) Name() string {
	if r == nil || r.CandidateName == nil {
		return ""
	}
	return *r.CandidateName
}

// MaskedResume is the part of a resume that may leave the trust boundary.
// It has no fields for names, contacts or profile links.
type MaskedResume struct {
	TotalExperienceYears *float64       `json:"total_experience_years"`
	Location             *string        `json:"location"`
	TitlesWithDates      []WorkHistory  `json:"titles_with_dates"`
	CareerProgression    []string       `json:"career_progression"`
	SkillsWithContext    []SkillContext `json:"skills_with_context"`
	ToolsWithContext     []ToolContext  `json:"tools_with_context"`
	DomainExperience     []string       `json:"domain_experience"`
	Projects             []Project      `json:"projects"`
	LeadershipSignals    []string       `json:"leadership_signals"`
	ImpactMetrics        []string       `json:"impact_metrics"`
}

// Evaluation is the persisted outcome of scoring one resume against one job description.
type Evaluation struct {
	ID                   string             `json:"id"`
	JDID                 string             `json:"jd_id"`
	ResumeID             string             `json:"resume_id"`
	CandidateName        string             `json:"candidate_name,omitempty"`
	RubricVersion        string             `json:"rubric_version"`
	CategoryScores       map[string]float64 `json:"category_scores"`
	CategoryExplanations map[string]string  `json:"category_explanations"`
	OverallScore         float64            `json:"overall_score"`
	Tier                 Tier               `json:"candidate_tier"`
	Signals              map[string]float64 `json:"embedding_signals,omitempty"`
	Model                string             `json:"model,omitempty"`
	EvaluatedAt          time.Time          `json:"evaluated_at"`
}
