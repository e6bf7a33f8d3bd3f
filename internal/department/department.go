package department

// Department is one of the club's recruiting departments.
type Department string

const (
	Logistics Department = "Logistics"
	Events    Department = "Events"
	Marketing Department = "Marketing"
	Media     Department = "Media"
	Design    Department = "Design"
	Finance   Department = "Finance"
)

// Info pairs a department with the blurb shown on the application form.
type Info struct {
	Name        Department `json:"name"`
	Description string     `json:"description"`
}

// catalog is the only place departments are declared. All, Valid and
// Describe are derived from it.
var catalog = []Info{
	{Logistics, "Ensures smooth coordination of resources, schedules, and venue management."},
	{Events, "Plans, organizes, and executes cultural and literary activities."},
	{Marketing, "Creates visibility and engages the student community through campaigns."},
	{Media, "Documents events through photography, videography, and editing."},
	{Design, "Develops visual content, posters, and creative assets for the club."},
	{Finance, "Manages budgeting, accounts, and financial planning for events."},
}

// All returns the departments in display order.
func All() []Department {
	out := make([]Department, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d.Name)
	}
	return out
}

// Catalog returns a copy of the department descriptions in display order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether s names a known department. Matching is exact.
func Valid(s string) bool {
	for _, d := range catalog {
		if string(d.Name) == s {
			return true
		}
	}
	return false
}

// Describe returns the description for d, or "" for an unknown department.
func Describe(d Department) string {
	for _, info := range catalog {
		if info.Name == d {
			return info.Description
		}
	}
	return ""
}

func (d Department) String() string { return string(d) }
