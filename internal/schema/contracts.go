package schema

const (
	JobDescriptionName = "job_description"
	ResumeName         = "resume"
)

func text(name string) Field { return Field{Name: name, Kind: String} }

func nullableText(name string) Field { return Field{Name: name, Kind: String, Nullable: true} }

func textList(name string) Field {
	return Field{Name: name, Kind: List, Items: &Field{Kind: String}}
}

func objectList(name string, fields ...Field) Field {
	return Field{Name: name, Kind: List, Items: &Field{Kind: Object, Fields: fields}}
}

// JobDescription is the contract for a parsed job description.
func JobDescription() Contract {
	return Contract{
		Name:    JobDescriptionName,
		Subject: "Job Description",
		Role:    "You are an enterprise HR data extraction engine.",
		Rules: []string{
			"Do NOT include candidate-related data",
		},
		Fields: []Field{
			text("role"),
			nullableText("location"),
			{Name: "experience_required", Kind: StringOrNumber, Hint: "(years)", Nullable: true},
			textList("mandatory_skills"),
			textList("supporting_skills"),
			textList("tools"),
			textList("domain_knowledge"),
			textList("responsibilities"),
		},
	}
}

// Resume is the contract for a parsed resume.
func Resume() Contract {
	return Contract{
		Name:    ResumeName,
		Subject: "Resume",
		Role:    "You are an enterprise resume parsing engine.",
		Rules: []string{
			"Do NOT compare against any job description",
			"Extract only what is explicitly stated in the resume",
		},
		Fields: []Field{
			nullableText("candidate_name"),
			{Name: "total_experience_years", Kind: Number, Nullable: true},
			nullableText("location"),
			objectList("titles_with_dates",
				text("title"),
				text("organization"),
				nullableText("start_date"),
				nullableText("end_date"),
			),
			textList("career_progression"),
			objectList("skills_with_context", text("skill"), text("context")),
			objectList("tools_with_context", text("tool"), text("context")),
			textList("domain_experience"),
			objectList("projects",
				text("name"),
				text("description"),
				textList("technologies"),
			),
			textList("leadership_signals"),
			textList("impact_metrics"),
			textList("professional_presence_links"),
		},
	}
}
