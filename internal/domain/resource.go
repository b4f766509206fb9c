package domain

// Resource is a capacity-constrained worker or machine.
// Capacity is effort units per leveling window (e.g. minutes per day).
// Fields are ordered to minimize memory padding.
type Resource struct {
	ID                string   `json:"-"`                // Resource ID (stored as map key, not in value)
	Skills            []string `json:"skills,omitempty"` // Skill tags
	CapacityPerWindow int64    `json:"capacityPerWindow"`
}

// Assignment allocates effort from a resource to a task.
// Fields are ordered to minimize memory padding.
type Assignment struct {
	TaskID          string `json:"task"`
	ResourceID      string `json:"resource"`
	EffortPerWindow int64  `json:"effortPerWindow"` // Effort consumed in each occupied window
}

// ResourcePool is the read-only snapshot of resources and assignments
// consumed by one leveling call.
type ResourcePool struct {
	Resources   []Resource   `json:"resources"`
	Assignments []Assignment `json:"assignments"`
}

// Resource returns the resource with the given ID, or nil.
func (p *ResourcePool) Resource(id string) *Resource {
	for i := range p.Resources {
		if p.Resources[i].ID == id {
			return &p.Resources[i]
		}
	}
	return nil
}

// AssignmentsFor returns all assignments allocating the given task.
func (p *ResourcePool) AssignmentsFor(taskID string) []Assignment {
	var out []Assignment
	for _, a := range p.Assignments {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out
}
