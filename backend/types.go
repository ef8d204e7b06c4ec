package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string or number into its string form. The
// backend is not consistent about numeric identifiers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /api/login
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	Admin       AdminRecord `json:"admin"`
}

// AdminRecord is the backend's user record as returned at login. The role can
// arrive in several shapes; see auth.ResolveRole.
type AdminRecord struct {
	ID       FlexString      `json:"id"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	FullName string          `json:"full_name"`
	Role     json.RawMessage `json:"role,omitempty"`
	UserType string          `json:"userType,omitempty"`
	RoleID   *FlexString     `json:"roleId,omitempty"`
}

// DisplayName returns the first populated name field
func (a AdminRecord) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	return a.FullName
}

// DonorProfile is returned by GET /donors/profile
type DonorProfile struct {
	ID               FlexString `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	BloodType        string     `json:"bloodType,omitempty"`
	City             string     `json:"city,omitempty"`
	LastDonationDate string     `json:"lastDonationDate,omitempty"`
}

// ProfileUpdate is the body of PATCH /donors/profile. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	City  *string `json:"city,omitempty"`
}

// Donation is one entry of GET /donors/{id}/history
type Donation struct {
	ID       FlexString `json:"id"`
	Date     string     `json:"date"`
	Location string     `json:"location"`
	Units    int        `json:"units"`
	Status   string     `json:"status"`
}

// BloodRequest is one entry of GET /requests
type BloodRequest struct {
	ID        FlexString `json:"id"`
	BloodType string     `json:"bloodType"`
	Units     int        `json:"units"`
	Hospital  string     `json:"hospital"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"createdAt"`
}
