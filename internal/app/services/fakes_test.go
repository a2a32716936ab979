package services

import (
	"context"
	"sync"
	"time"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/notify"
	"github.com/jmwangi/bursaryhub/internal/pkg/verification"
)

// memStudentRepo is an in-memory StudentRepository. It enforces identifier
// uniqueness the same way the database's unique indexes do.
type memStudentRepo struct {
	mu       sync.Mutex
	students map[int64]*models.StudentAccount
	users    map[int64]*models.User
	nextID   int64
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{
		students: make(map[int64]*models.StudentAccount),
		users:    make(map[int64]*models.User),
		nextID:   1,
	}
}

func (r *memStudentRepo) CreateWithUser(_ context.Context, user *models.User, student *models.StudentAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.students {
		if student.NemisNumber != nil && existing.NemisNumber != nil && *existing.NemisNumber == *student.NemisNumber {
			return apperrors.ErrDuplicateIdentifier
		}
		if student.NationalID != nil && existing.NationalID != nil && *existing.NationalID == *student.NationalID {
			return apperrors.ErrDuplicateIdentifier
		}
	}

	user.ID = r.nextID
	student.ID = r.nextID
	student.UserID = user.ID
	student.CreatedAt = time.Now()
	r.nextID++

	// Store copies so later mutations go through repository methods
	userCopy := *user
	studentCopy := *student
	r.users[user.ID] = &userCopy
	r.students[student.ID] = &studentCopy
	return nil
}

func (r *memStudentRepo) FindByIdentifier(_ context.Context, identifier string) (*models.StudentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.students {
		if (s.NemisNumber != nil && *s.NemisNumber == identifier) ||
			(s.NationalID != nil && *s.NationalID == identifier) {
			return r.attachUser(s), nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (r *memStudentRepo) FindByUserID(_ context.Context, userID int64) (*models.StudentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.students {
		if s.UserID == userID {
			return r.attachUser(s), nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (r *memStudentRepo) FindByID(_ context.Context, id int64) (*models.StudentAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return r.attachUser(s), nil
}

func (r *memStudentRepo) AttachNationalID(_ context.Context, studentID int64, nationalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[studentID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}

	// Same guard as the database UPDATE predicate: only a NEMIS account
	// can take the upgrade, a second attempt loses.
	if student.ActiveCredential != models.CredentialNEMIS {
		return apperrors.ErrAlreadyUpgraded
	}

	for id, existing := range r.students {
		if id != studentID && existing.NationalID != nil && *existing.NationalID == nationalID {
			return apperrors.ErrDuplicateIdentifier
		}
	}

	now := time.Now()
	student.NationalID = &nationalID
	student.ActiveCredential = models.CredentialNationalID
	student.UpgradedAt = &now
	r.users[student.UserID].Username = nationalID
	return nil
}

func (r *memStudentRepo) SetVerificationStatus(_ context.Context, studentID int64, status models.VerificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	student, ok := r.students[studentID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	student.VerificationStatus = status
	return nil
}

// attachUser returns a copy with the user relation populated, caller holds the lock
func (r *memStudentRepo) attachUser(s *models.StudentAccount) *models.StudentAccount {
	copied := *s
	if u, ok := r.users[s.UserID]; ok {
		userCopy := *u
		copied.User = &userCopy
	}
	return &copied
}

// memUserRepo is an in-memory UserRepository sharing state with memStudentRepo
type memUserRepo struct {
	students *memStudentRepo
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.students.mu.Lock()
	defer r.students.mu.Unlock()

	for _, u := range r.students.users {
		if u.Username == user.Username {
			return apperrors.ErrConflict
		}
	}
	user.ID = r.students.nextID
	r.students.nextID++
	r.students.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.students.mu.Lock()
	defer r.students.mu.Unlock()

	u, ok := r.students.users[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.students.mu.Lock()
	defer r.students.mu.Unlock()

	for _, u := range r.students.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.students.mu.Lock()
	defer r.students.mu.Unlock()

	u, ok := r.students.users[userID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	r.students.mu.Lock()
	defer r.students.mu.Unlock()

	if u, ok := r.students.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

// memTokenRepo is an in-memory TokenRepository
type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]memToken
}

type memToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]memToken)}
}

func (r *memTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = memToken{userID: userID, expiry: expiryDate}
	return nil
}

func (r *memTokenRepo) GetTokenUser(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	if t.revoked {
		return 0, apperrors.ErrTokenRevoked
	}
	if t.expiry.Before(time.Now()) {
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (r *memTokenRepo) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	r.tokens[token] = t
	return nil
}

func (r *memTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.tokens {
		if t.userID == userID {
			t.revoked = true
			r.tokens[k] = t
		}
	}
	return nil
}

func (r *memTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	return 0, nil
}

// stubVerifier returns a scripted result or error per identifier
type stubVerifier struct {
	mu      sync.Mutex
	results map[string]verification.Result
	errs    map[string]error
	calls   int
}

func newStubVerifier() *stubVerifier {
	return &stubVerifier{
		results: make(map[string]verification.Result),
		errs:    make(map[string]error),
	}
}

func (v *stubVerifier) set(identifier string, result verification.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results[identifier] = result
}

func (v *stubVerifier) setErr(identifier string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errs[identifier] = err
}

func (v *stubVerifier) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *stubVerifier) Verify(_ context.Context, _ models.CredentialType, identifier string) (verification.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if err, ok := v.errs[identifier]; ok {
		return verification.Result{}, err
	}
	if result, ok := v.results[identifier]; ok {
		return result, nil
	}
	return verification.Result{Verified: true}, nil
}

// recordingNotifier captures sent messages
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

// memApplicationRepo is an in-memory ApplicationRepository
type memApplicationRepo struct {
	mu     sync.Mutex
	apps   map[int64]*models.BursaryApplication
	nextID int64
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{apps: make(map[int64]*models.BursaryApplication), nextID: 1}
}

func (r *memApplicationRepo) Create(_ context.Context, app *models.BursaryApplication, guardians []models.Guardian, siblings []models.Sibling) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app.ID = r.nextID
	r.nextID++
	app.Status = models.ApplicationPending
	app.DateApplied = time.Now()
	app.Guardians = guardians
	app.Siblings = siblings
	copied := *app
	r.apps[app.ID] = &copied
	return nil
}

func (r *memApplicationRepo) GetByID(_ context.Context, id int64) (*models.BursaryApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (r *memApplicationRepo) ListByStudent(_ context.Context, studentID int64) ([]models.BursaryApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.BursaryApplication
	for _, app := range r.apps {
		if app.StudentID == studentID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (r *memApplicationRepo) ListForReview(_ context.Context, filter repositories.ApplicationFilter) ([]models.BursaryApplication, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.BursaryApplication
	for _, app := range r.apps {
		if app.ConstituencyID != filter.ConstituencyID || app.BursaryType != filter.BursaryType {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, int64(len(out)), nil
}

func (r *memApplicationRepo) Review(_ context.Context, id int64, status models.ApplicationStatus, amountAwarded *float64, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, ok := r.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	app.Status = status
	app.AmountAwarded = amountAwarded
	app.Feedback = feedback
	return nil
}

func (r *memApplicationRepo) HasPendingApplication(_ context.Context, studentID int64, bursaryType models.BursaryType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, app := range r.apps {
		if app.StudentID == studentID && app.BursaryType == bursaryType && app.Status == models.ApplicationPending {
			return true, nil
		}
	}
	return false, nil
}

// memOfficerRepo is an in-memory OfficerRepository
type memOfficerRepo struct {
	mu       sync.Mutex
	officers map[int64]*models.OfficerProfile
	logs     []models.OfficerActivityLog
	nextID   int64
}

func newMemOfficerRepo() *memOfficerRepo {
	return &memOfficerRepo{officers: make(map[int64]*models.OfficerProfile), nextID: 1}
}

func (r *memOfficerRepo) CreateWithUser(_ context.Context, user *models.User, officer *models.OfficerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID + 1000
	officer.ID = r.nextID
	officer.UserID = user.ID
	officer.User = user
	r.nextID++
	r.officers[officer.ID] = officer
	return nil
}

func (r *memOfficerRepo) GetByUserID(_ context.Context, userID int64) (*models.OfficerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.officers {
		if o.UserID == userID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, apperrors.ErrOfficerNotFound
}

func (r *memOfficerRepo) ListByConstituency(_ context.Context, constituencyID int64) ([]models.OfficerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.OfficerProfile
	for _, o := range r.officers {
		if o.ConstituencyID == constituencyID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOfficerRepo) LogActivity(_ context.Context, entry *models.OfficerActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = int64(len(r.logs) + 1)
	entry.Timestamp = time.Now()
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memOfficerRepo) ListActivity(_ context.Context, officerID int64, _ int) ([]models.OfficerActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.OfficerActivityLog
	for _, entry := range r.logs {
		if entry.OfficerID == officerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// memSiteProfileRepo is an in-memory SiteProfileRepository
type memSiteProfileRepo struct {
	mu      sync.Mutex
	profile *models.SiteProfile
}

func (r *memSiteProfileRepo) GetActive(_ context.Context) (*models.SiteProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	copied := *r.profile
	return &copied, nil
}

func (r *memSiteProfileRepo) UpdateDeadline(_ context.Context, _ int64, deadline *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile == nil {
		return apperrors.ErrResourceNotFound
	}
	r.profile.ApplicationDeadline = deadline
	return nil
}
