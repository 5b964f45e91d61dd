package models

// Course represents a course of the academy
type Course struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Module represents an ordered group of classes within a course
type Module struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// Class represents a single video unit, the unit of progress tracking
type Class struct {
	ID          int    `json:"id"`
	ModuleID    int    `json:"moduleId"`
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Order       int    `json:"order"`
	Description string `json:"description,omitempty"`
}

// Resource represents a supplementary file attached to a class
type Resource struct {
	ID      int    `json:"id"`
	ClassID int    `json:"classId"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// ModuleContent is a module with its classes sorted by order
type ModuleContent struct {
	ModuleID int     `json:"moduleId"`
	Title    string  `json:"title"`
	Order    int     `json:"order"`
	Classes  []Class `json:"classes"`
}

// CourseContent is the loaded structure of a course
type CourseContent struct {
	CourseID  int             `json:"courseId"`
	Modules   []ModuleContent `json:"modules"`
	Resources []Resource      `json:"resources"`
}

// ResourcesFor returns the resources attached to a class
func (c *CourseContent) ResourcesFor(classID int) []Resource {
	out := make([]Resource, 0)
	for _, r := range c.Resources {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out
}
