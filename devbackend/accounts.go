package devbackend

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-donor-portal/backend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/users"
	"golang.org/x/crypto/bcrypt"
)

// RoleShape selects how an account's role is encoded in the login response.
// Real backends disagree on this, so every shape is served.
type RoleShape string

const (
	ShapeRoleObject RoleShape = "role_object" // "role": {"name": "admin"}
	ShapeRoleString RoleShape = "role_string" // "role": "admin"
	ShapeUserType   RoleShape = "user_type"   // "userType": "admin"
	ShapeRoleID     RoleShape = "role_id"     // "roleId": 1
	ShapeNone       RoleShape = "none"        // no role information at all
)

// Account is a backend user
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         users.Role
	RoleShape    RoleShape
	Profile      backend.DonorProfile
	History      []backend.Donation
}

// roleIDs mirrors the numeric role ids of the platform
var roleIDs = map[users.Role]int{
	users.RoleAdmin:   1,
	users.RoleManager: 2,
	users.RoleDonor:   3,
	users.RoleUser:    4,
}

// adminRecord renders the account the way the login endpoint returns it
func (a *Account) adminRecord() map[string]any {
	rec := map[string]any{
		"id":    a.ID,
		"email": a.Email,
		"name":  a.Name,
	}
	switch a.RoleShape {
	case ShapeRoleObject:
		rec["role"] = map[string]any{"id": roleIDs[a.Role], "name": string(a.Role)}
	case ShapeRoleString:
		rec["role"] = string(a.Role)
	case ShapeUserType:
		rec["userType"] = string(a.Role)
	case ShapeRoleID:
		rec["roleId"] = roleIDs[a.Role]
	}
	return rec
}

// AccountRepo is an in-memory account store
type AccountRepo struct {
	accounts map[string]*Account
	emailIDs map[string]string // email to account id
	lock     sync.RWMutex
	cost     int
}

// NewAccountRepo creates an empty repo hashing passwords with the given bcrypt cost
func NewAccountRepo(cost int) *AccountRepo {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AccountRepo{
		accounts: make(map[string]*Account),
		emailIDs: make(map[string]string),
		cost:     cost,
	}
}

// Register hashes password and stores the account
func (r *AccountRepo) Register(account *Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hash)
	r.Upsert(account)
	return nil
}

func (r *AccountRepo) Upsert(account *Account) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Email = strings.ToLower(account.Email)
	account.Profile.ID = backend.FlexString(account.ID)
	account.Profile.Email = account.Email
	if account.Profile.Name == "" {
		account.Profile.Name = account.Name
	}
	r.accounts[account.ID] = account
	r.emailIDs[account.Email] = account.ID
}

func (r *AccountRepo) GetByEmail(email string) (*Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIDs[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrUserNotFound, "email %q", email)
	}
	return r.accounts[id], nil
}

func (r *AccountRepo) GetByID(id string) (*Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return account, nil
}

// Authenticate checks the password of the account registered under email
func (r *AccountRepo) Authenticate(email, password string) (*Account, error) {
	account, err := r.GetByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return account, nil
}

// UpdateProfile applies a partial update under the repo lock
func (r *AccountRepo) UpdateProfile(id string, update backend.ProfileUpdate) (backend.DonorProfile, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return backend.DonorProfile{}, apperrors.ErrUserNotFound
	}
	if update.Name != nil {
		account.Profile.Name = *update.Name
		account.Name = *update.Name
	}
	if update.Phone != nil {
		account.Profile.Phone = *update.Phone
	}
	if update.City != nil {
		account.Profile.City = *update.City
	}
	return account.Profile, nil
}

// Donors lists the profiles of every donor account sorted by name
func (r *AccountRepo) Donors() []backend.DonorProfile {
	r.lock.RLock()
	defer r.lock.RUnlock()

	donors := make([]backend.DonorProfile, 0)
	for _, a := range r.accounts {
		if a.Role == users.RoleDonor {
			donors = append(donors, a.Profile)
		}
	}
	sort.Slice(donors, func(i, j int) bool {
		return donors[i].Name < donors[j].Name
	})
	return donors
}
