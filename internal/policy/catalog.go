package policy

// The catalog is fixed: seven policy areas, three options each, option cost
// equal to the option ordinal. Only the cost matters to the rules; the text
// fields exist for prompts and reports.

type AreaID string

const (
	AreaAccess        AreaID = "access"
	AreaLanguage      AreaID = "language"
	AreaTraining      AreaID = "training"
	AreaCurriculum    AreaID = "curriculum"
	AreaSupport       AreaID = "support"
	AreaFinancial     AreaID = "financial"
	AreaCertification AreaID = "certification"
)

// AreaOrder gives the canonical display and serialization order.
var AreaOrder = []AreaID{
	AreaAccess,
	AreaLanguage,
	AreaTraining,
	AreaCurriculum,
	AreaSupport,
	AreaFinancial,
	AreaCertification,
}

func (a AreaID) Title() string {
	switch a {
	case AreaAccess:
		return "Access to Education"
	case AreaLanguage:
		return "Language Instruction"
	case AreaTraining:
		return "Teacher Training"
	case AreaCurriculum:
		return "Curriculum Adaptation"
	case AreaSupport:
		return "Psychosocial Support"
	case AreaFinancial:
		return "Financial Support"
	case AreaCertification:
		return "Certification/Accreditation"
	}
	return ""
}

type OptionID string

const (
	Option1 OptionID = "option1"
	Option2 OptionID = "option2"
	Option3 OptionID = "option3"
)

// Cost returns the option's budget cost, which always equals its ordinal.
// Unknown options cost 0 so a malformed selection never inflates the total.
func (o OptionID) Cost() int {
	switch o {
	case Option1:
		return 1
	case Option2:
		return 2
	case Option3:
		return 3
	}
	return 0
}

type Option struct {
	ID           OptionID `json:"id"`
	Cost         int      `json:"cost"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Advantage    string   `json:"advantage"`
	Disadvantage string   `json:"disadvantage"`
}

type Area struct {
	ID      AreaID    `json:"id"`
	Name    string    `json:"name"`
	Options [3]Option `json:"options"`
}

func AreaByID(id AreaID) (Area, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

func area(id AreaID, titles, descs, advs, disadvs [3]string) Area {
	a := Area{ID: id, Name: id.Title()}
	for i := 0; i < 3; i++ {
		a.Options[i] = Option{
			ID:           OptionID("option" + string(rune('1'+i))),
			Cost:         i + 1,
			Title:        titles[i],
			Description:  descs[i],
			Advantage:    advs[i],
			Disadvantage: disadvs[i],
		}
	}
	return a
}

var Catalog = []Area{
	area(AreaAccess,
		[3]string{"Limited Access", "Separate Facilities", "Equal Access & Integration"},
		[3]string{
			"Allow a small percentage of refugees into mainstream schools.",
			"Establish separate schools for refugee students.",
			"Integrate all refugee students into mainstream schools.",
		},
		[3]string{
			"Eases pressure on existing infrastructure.",
			"Dedicated education that considers unique needs.",
			"Promotes integration and social cohesion.",
		},
		[3]string{
			"Excludes many children and hinders their prospects.",
			"Fosters segregation and limits integration.",
			"Requires significant resources, training and support.",
		}),
	area(AreaLanguage,
		[3]string{"Teanish Only", "Basic Teanish Courses", "Bilingual Education"},
		[3]string{
			"Instruction exclusively in Teanish.",
			"Primary Teanish courses covering essential services.",
			"Instruction in both Teanish and the refugee mother tongue.",
		},
		[3]string{
			"Linguistic unity and simple administration.",
			"Basic communication proficiency.",
			"Better communication, inclusivity and cultural preservation.",
		},
		[3]string{
			"Hinders communication and integration, creates disparities.",
			"Limits educational and academic progress.",
			"Resource intensive with implementation challenges.",
		}),
	area(AreaTraining,
		[3]string{"Minimal Training", "Basic Training Sessions", "Comprehensive & Ongoing Training"},
		[3]string{
			"No specific training for refugee education.",
			"Familiarize teachers with the basics of refugee education.",
			"Equip teachers with the full skill set for refugee classrooms.",
		},
		[3]string{
			"Fewer resources, minimal changes.",
			"A foundational understanding for teachers.",
			"Enhances teacher capacity and promotes student success.",
		},
		[3]string{
			"Limits teacher effectiveness and support.",
			"May not equip teachers for complex challenges.",
			"Substantial investment needed.",
		}),
	area(AreaCurriculum,
		[3]string{"Maintain Existing Curriculum", "Supplementary Materials", "Adapt National Curriculum"},
		[3]string{
			"No modifications to the current curriculum.",
			"Add materials acknowledging refugee experiences.",
			"Include diverse perspectives and histories nationwide.",
		},
		[3]string{
			"Continuity with the existing curriculum.",
			"Some recognition that fosters empathy.",
			"Promotes cultural exchange and mutual respect.",
		},
		[3]string{
			"Neglects refugee experiences, hinders integration.",
			"May not fully address refugee needs.",
			"Requires a major redesign and faces resistance.",
		}),
	area(AreaSupport,
		[3]string{"Limited Support", "Basic Support Services", "Comprehensive & Specialized Programs"},
		[3]string{
			"No specific psychosocial support.",
			"Basic counseling and peer support.",
			"Tailored assistance for students and families.",
		},
		[3]string{
			"Reduces the immediate financial burden.",
			"Some level of support is provided.",
			"Prioritizes mental health and facilitates integration.",
		},
		[3]string{
			"Negatively impacts well-being and educational success.",
			"May require additional resources and personnel.",
			"Significant investment and trained professionals required.",
		}),
	area(AreaFinancial,
		[3]string{"Minimal Funds", "Increased but Insufficient Funds", "Significant Financial Resources"},
		[3]string{
			"Allocate minimal funds to refugee education.",
			"Increase funding without meeting every need.",
			"Ensure adequate funding across the board.",
		},
		[3]string{
			"Minimizes the burden on taxpayers.",
			"Provides additional resources.",
			"Enables high-quality education and services.",
		},
		[3]string{
			"Limits quality and accessibility of support.",
			"May not fully address the complexities.",
			"Substantial commitment and potential reallocation.",
		}),
	area(AreaCertification,
		[3]string{"Recognize Bean Only", "Comprehensive Evaluation", "Tailored Programs"},
		[3]string{
			"Disregard previous education from origin countries.",
			"Evaluate and recognize prior education by universal standards.",
			"Combine recognition with additional training and assessments.",
		},
		[3]string{
			"Simplifies the process, ensures national standards.",
			"Values prior achievements, enhances opportunities.",
			"A pathway for recognition while addressing gaps.",
		},
		[3]string{
			"Overlooks valuable skills, hinders employment.",
			"Requires resources, expertise and time.",
			"Requires resources and coordination.",
		}),
}
