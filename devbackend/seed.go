package devbackend

import (
	"fmt"

	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/users"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "Password123"

// Demo account emails
const (
	DemoAdminEmail   = "admin@donors.local"
	DemoManagerEmail = "manager@donors.local"
	DemoDonorEmail   = "donor@donors.local"
	DemoUserEmail    = "user@donors.local"
)

// Seed registers one account per role, each answering login with a
// different role shape, plus sample history and requests.
func (s *Server) Seed() error {
	demo := []*Account{
		{ID: "1", Email: DemoAdminEmail, Name: "Ada Admin", Role: users.RoleAdmin, RoleShape: ShapeRoleObject},
		{ID: "2", Email: DemoManagerEmail, Name: "Mo Manager", Role: users.RoleManager, RoleShape: ShapeRoleID},
		{
			ID: "3", Email: DemoDonorEmail, Name: "Dana Donor", Role: users.RoleDonor, RoleShape: ShapeUserType,
			Profile: backend.DonorProfile{BloodType: "O-", City: "Lyon", Phone: "+33 6 00 00 00 00", LastDonationDate: "2024-02-11"},
			History: []backend.Donation{
				{ID: "d-1", Date: "2023-08-02", Location: "Lyon Central", Units: 1, Status: "completed"},
				{ID: "d-2", Date: "2023-11-20", Location: "Lyon Central", Units: 1, Status: "completed"},
				{ID: "d-3", Date: "2024-02-11", Location: "Mobile Unit 4", Units: 1, Status: "completed"},
			},
		},
		{ID: "4", Email: DemoUserEmail, Name: "Uma User", Role: users.RoleUser, RoleShape: ShapeRoleString},
	}
	for _, account := range demo {
		if err := s.accounts.Register(account, DemoPassword); err != nil {
			return fmt.Errorf("[Seed] register %s: %w", account.Email, err)
		}
	}

	s.requestsLock.Lock()
	defer s.requestsLock.Unlock()
	s.requests = []backend.BloodRequest{
		{ID: "r-1", BloodType: "O-", Units: 4, Hospital: "Hôpital Edouard Herriot", Status: "open", CreatedAt: "2024-03-01"},
		{ID: "r-2", BloodType: "AB+", Units: 2, Hospital: "Clinique du Parc", Status: "fulfilled", CreatedAt: "2024-02-25"},
	}
	return nil
}
