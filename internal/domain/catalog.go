package domain

// Model is a deployable model known to the catalog. Its ID namespace is
// unrelated to InvocationRecord.ModelID.
type Model struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Organization struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Models []Model `json:"models"`
}

// AddModel appends m unless an equal model is already attached.
func (o *Organization) AddModel(m Model) {
	for _, existing := range o.Models {
		if existing == m {
			return
		}
	}
	o.Models = append(o.Models, m)
}

// RemoveModel drops the first model with the given id and reports whether
// one was removed.
func (o *Organization) RemoveModel(modelID int64) bool {
	for i, m := range o.Models {
		if m.ID == modelID {
			o.Models = append(o.Models[:i], o.Models[i+1:]...)
			return true
		}
	}
	return false
}

// RefreshModel overwrites the attached copy of m's ID with m and reports
// whether one was attached.
func (o *Organization) RefreshModel(m Model) bool {
	for i := range o.Models {
		if o.Models[i].ID == m.ID {
			o.Models[i] = m
			return true
		}
	}
	return false
}

func (o *Organization) GetModel(modelID int64) (Model, bool) {
	for _, m := range o.Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{}, false
}

// Clone returns a copy that shares no memory with o.
func (o *Organization) Clone() *Organization {
	if o == nil {
		return nil
	}
	models := make([]Model, len(o.Models))
	copy(models, o.Models)
	return &Organization{ID: o.ID, Name: o.Name, Models: models}
}
