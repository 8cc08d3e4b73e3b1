package employee

import (
	"bytes"
	"encoding/json"
)

// Ref is a reference to a person that the backend sends either as a bare id
// or as a populated document.
type Ref struct {
	ID         string `json:"_id,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	var doc struct {
		ID           string       `json:"_id"`
		AltID        string       `json:"id"`
		EmployeeID   string       `json:"employeeId"`
		Name         string       `json:"name"`
		FullName     string       `json:"fullName"`
		Role         string       `json:"role"`
		PersonalInfo PersonalInfo `json:"personalInfo"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.ID = doc.ID
	if r.ID == "" {
		r.ID = doc.AltID
	}
	r.EmployeeID = doc.EmployeeID
	r.Role = doc.Role
	switch {
	case doc.PersonalInfo.FullName != "":
		r.Name = doc.PersonalInfo.FullName
	case doc.FullName != "":
		r.Name = doc.FullName
	default:
		r.Name = doc.Name
	}
	return nil
}

func (r Ref) Display() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.EmployeeID != "":
		return r.EmployeeID
	default:
		return r.ID
	}
}
