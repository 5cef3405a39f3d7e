package scoring

import (
	"slices"

	"github.com/spigell/resume-evaluator/internal/records"
)

// Mask returns a copy of the resume without the candidate name, contact
// details and profile links. The input is not modified.
func Mask(resume *records.Resume) records.MaskedResume {
	if resume == nil {
		return records.MaskedResume{}
	}

	masked := records.MaskedResume{
		TitlesWithDates:   slices.Clone(resume.TitlesWithDates),
		CareerProgression: slices.Clone(resume.CareerProgression),
		SkillsWithContext: slices.Clone(resume.SkillsWithContext),
		ToolsWithContext:  slices.Clone(resume.ToolsWithContext),
		DomainExperience:  slices.Clone(resume.DomainExperience),
		LeadershipSignals: slices.Clone(resume.LeadershipSignals),
		ImpactMetrics:     slices.Clone(resume.ImpactMetrics),
	}

	if resume.TotalExperienceYears != nil {
		years := *resume.TotalExperienceYears
		masked.TotalExperienceYears = &years
	}
	if resume.Location != nil {
		location := *resume.Location
		masked.Location = &location
	}

	if resume.Projects != nil {
		masked.Projects = make([]records.Project, len(resume.Projects))
		for i, p := range resume.Projects {
			p.Technologies = slices.Clone(p.Technologies)
			masked.Projects[i] = p
		}
	}

	return masked
}
