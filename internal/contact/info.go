package contact

// Detail is one line of the contact panel, e.g. an email address.
type Detail struct {
	Label string
	Value string
}

// SocialLink points at an external profile.
type SocialLink struct {
	Label string
	Href  string
}

// Info is the static contact panel shown beside the form.
type Info struct {
	Details []Detail
	Social  []SocialLink
}

// DefaultInfo returns the site's contact details.
func DefaultInfo() Info {
	return Info{
		Details: []Detail{
			{Label: "Email", Value: "hello@devshop.com"},
			{Label: "Phone", Value: "+1 (555) 123-4567"},
			{Label: "Location", Value: "San Francisco, CA"},
		},
		Social: []SocialLink{
			{Label: "LinkedIn", Href: "https://linkedin.com"},
			{Label: "GitHub", Href: "https://github.com"},
			{Label: "Twitter", Href: "https://twitter.com"},
			{Label: "Email", Href: "mailto:hello@devshop.com"},
		},
	}
}
