package types

// ResumeRecord is the canonical structured resume in Harvard format.
// All list-valued fields are never nil after Normalize, so serialization
// and rendering never have to distinguish null from empty.
type ResumeRecord struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         Skills          `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Volunteer      []Volunteer     `json:"volunteer"`
	Publications   []Publication   `json:"publications"`
}

// PersonalInfo holds contact details. Name and Email are required by the
// response schema; the rest are optional.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Education struct {
	Institution     string   `json:"institution"`
	Degree          string   `json:"degree"`
	Field           string   `json:"field,omitempty"`
	GraduationDate  string   `json:"graduationDate,omitempty"`
	GPA             string   `json:"gpa,omitempty"`
	Honors          string   `json:"honors,omitempty"`
	RelevantCourses []string `json:"relevantCourses"`
}

type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Location     string   `json:"location,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
}

// Skills groups three independent ordered lists.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Languages []string `json:"languages"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
	GithubURL    string   `json:"githubUrl,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

type Certification struct {
	Name       string `json:"name"`
	Issuer     string `json:"issuer,omitempty"`
	Date       string `json:"date,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	URL        string `json:"url,omitempty"`
}

type Volunteer struct {
	Organization string `json:"organization"`
	Role         string `json:"role,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Publication struct {
	Title   string `json:"title"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	Date    string `json:"date,omitempty"`
	URL     string `json:"url,omitempty"`
}

// NewResumeRecord returns an empty record with all list fields initialized.
func NewResumeRecord() ResumeRecord {
	r := ResumeRecord{}
	r.Normalize()
	return r
}

// Normalize replaces every nil list field with an empty slice, including
// lists nested inside entries. Entry order is left untouched.
func (r *ResumeRecord) Normalize() {
	if r.Education == nil {
		r.Education = []Education{}
	}
	for i := range r.Education {
		if r.Education[i].RelevantCourses == nil {
			r.Education[i].RelevantCourses = []string{}
		}
	}

	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	for i := range r.Experience {
		if r.Experience[i].Achievements == nil {
			r.Experience[i].Achievements = []string{}
		}
		if r.Experience[i].Technologies == nil {
			r.Experience[i].Technologies = []string{}
		}
	}

	if r.Skills.Technical == nil {
		r.Skills.Technical = []string{}
	}
	if r.Skills.Soft == nil {
		r.Skills.Soft = []string{}
	}
	if r.Skills.Languages == nil {
		r.Skills.Languages = []string{}
	}

	if r.Projects == nil {
		r.Projects = []Project{}
	}
	for i := range r.Projects {
		if r.Projects[i].Technologies == nil {
			r.Projects[i].Technologies = []string{}
		}
	}

	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Volunteer == nil {
		r.Volunteer = []Volunteer{}
	}
	if r.Publications == nil {
		r.Publications = []Publication{}
	}
}
