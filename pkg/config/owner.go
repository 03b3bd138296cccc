package config

// Contact is one way to reach the owner.
type Contact struct {
	Label string `toml:"label" json:"label"`
	Value string `toml:"value" json:"value"`
	URL   string `toml:"url" json:"url,omitempty"`
}

// Certification is a completed course and who issued it.
type Certification struct {
	Name   string `toml:"name" json:"name"`
	Issuer string `toml:"issuer" json:"issuer"`
}

// OwnerConfig is the "About" page content.
type OwnerConfig struct {
	Name           string          `toml:"name" json:"name"`
	Headline       string          `toml:"headline" json:"headline"`
	Bio            string          `toml:"bio" json:"bio"`
	Certifications []Certification `toml:"certifications" json:"certifications"`
	Interests      []string        `toml:"interests" json:"interests"`
	Skills         []string        `toml:"skills" json:"skills"`
	Contacts       []Contact       `toml:"contacts" json:"contacts"`
}

// DefaultOwner is the content the site launched with.
func DefaultOwner() OwnerConfig {
	return OwnerConfig{
		Name:     "Claire Namusoke",
		Headline: "Welcome to My Portfolio",
		Bio: "Hi, I am Claire, a data analytics enthusiast and International Shipping and " +
			"chartering student at Hochschule Bremen, with practical experience in analyzing " +
			"shipping data, environmental impacts, and global trade trends. I specialize in " +
			"transforming complex datasets into actionable insights through SQL, Python, Power BI, " +
			"and interactive dashboards, while integrating AI for smarter analysis. Passionate about " +
			"applying data to real-world shipping and business environments to drive informed " +
			"decision-making and sustainability initiatives.",
		Certifications: []Certification{
			{Name: "Supply Chain Management and Analytics", Issuer: "Coursera"},
			{Name: "Introduction to Data Analytics", Issuer: "Coursera"},
			{Name: "SQL & Databases", Issuer: "Udemy"},
			{Name: "Power BI", Issuer: "Udemy"},
		},
		Interests: []string{
			"Data Analysis",
			"Logistics and Supply Chain",
			"Maritime Analytics",
			"Chartering Practises",
		},
		Skills: []string{"Python", "SQL", "Power BI", "Streamlit", "Git/GitHub", "MS Office"},
		Contacts: []Contact{
			{Label: "LinkedIn", Value: "LinkedIn", URL: "https://www.linkedin.com/in/namusoke-claire-129711335"},
			{Label: "GitHub", Value: "claire-namusoke", URL: "https://github.com/claire-namusoke"},
			{Label: "Email", Value: "clairenamusoke1@gmail.com", URL: "mailto:clairenamusoke1@gmail.com"},
		},
	}
}

// FirstName is what the assistant calls its owner.
func (o OwnerConfig) FirstName() string {
	for i, r := range o.Name {
		if r == ' ' {
			return o.Name[:i]
		}
	}
	return o.Name
}
