package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrPreconditionFailed is returned by conditional updates when the record
	// exists but no longer matches the update predicate. Nothing was written.
	ErrPreconditionFailed = errors.New("store: precondition failed")
)

// Store is the root data access interface. Sub-repositories are reached via
// methods so a Tx can hand out the same repositories bound to a transaction.
type Store interface {
	Users() Users
	Settings() Settings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Inside fn only the tx repositories may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users owns the registration records. Every state transition is a single
// conditional update: it returns the updated record, ErrNotFound when the id
// does not exist, or ErrPreconditionFailed when the guard did not hold.
type Users interface {
	// Create inserts u. ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	IsEmpty(ctx context.Context) (bool, error)

	// MarkVerified sets verified for the record with email.
	MarkVerified(ctx context.Context, email string) (domain.User, error)
	// CompleteWalkIn verifies the record with email and replaces its password.
	CompleteWalkIn(ctx context.Context, email, passwordHash string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) (domain.User, error)

	// UpdateProfile requires verified. When expectLastUpdated is non-nil the
	// record must not have been modified since then.
	UpdateProfile(ctx context.Context, id string, p domain.Profile, at time.Time, expectLastUpdated *time.Time) (domain.User, error)

	// Admit requires verified.
	Admit(ctx context.Context, id, adminEmail string, confirmBy *time.Time) (domain.User, error)
	// UpdateConfirmation requires verified, admitted, not declined and either
	// already confirmed or at is before the confirm-by deadline.
	UpdateConfirmation(ctx context.Context, id string, c domain.Confirmation, at time.Time) (domain.User, error)
	// Decline requires verified, admitted and not declined.
	Decline(ctx context.Context, id string, at time.Time) (domain.User, error)
	// RestampConfirmBy requires verified, admitted and confirmed.
	RestampConfirmBy(ctx context.Context, id string, confirmBy *time.Time) (domain.User, error)
	// MarkReimbursementGiven requires admitted.
	MarkReimbursementGiven(ctx context.Context, id string) (domain.User, error)

	// SetCheckedIn requires verified. The check-in time is only written when checking in.
	SetCheckedIn(ctx context.Context, id string, checkedIn bool, at time.Time) (domain.User, error)
	// MarkMeal requires verified and the meal flag still unset.
	MarkMeal(ctx context.Context, id string, meal domain.Meal) (domain.User, error)
	// SetAdmin requires verified.
	SetAdmin(ctx context.Context, id string, admin bool) (domain.User, error)

	// LinkDiscord requires verified and no linked account; it also checks the user in.
	LinkDiscord(ctx context.Context, id, discordUserID string, at time.Time) (domain.User, error)
	ResetDiscord(ctx context.Context, id string) (domain.User, error)

	// AddWorkshopAttended and AddTableVisited require verified. Re-adding
	// a sponsor id is a no-op.
	AddWorkshopAttended(ctx context.Context, id, sponsorID string) (domain.User, error)
	AddTableVisited(ctx context.Context, id, sponsorID string) (domain.User, error)

	// JoinTeam requires verified and fewer than maxSize other members on
	// code. The count and the write happen in one statement.
	JoinTeam(ctx context.Context, id, code string, maxSize int) (domain.User, error)
	LeaveTeam(ctx context.Context, id string) (domain.User, error)
	ListByTeam(ctx context.Context, code string) ([]domain.User, error)

	// SetSponsorStatus requires a sponsor account.
	SetSponsorStatus(ctx context.Context, id string, status domain.SponsorStatus) (domain.User, error)
	// UpdateSponsorFields requires a sponsor account. It moves the status to
	// completedProfile unless resume access was already granted.
	UpdateSponsorFields(ctx context.Context, id string, f domain.SponsorFields) (domain.User, error)

	// Find returns matching users ordered by display name then id. A
	// negative limit returns every match.
	Find(ctx context.Context, f UserFilter, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context, f UserFilter) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// UserFilter narrows Find and Count. Zero values match everything.
type UserFilter struct {
	// Text matches email, display name and team code case-insensitively,
	// and the id exactly when it parses as one.
	Text string

	GraduationTimes []string
	// Skills matches users holding at least one of the skills.
	Skills        []string
	ResumeOnly    bool
	USStudentOnly bool
	SponsorsOnly  bool
}

// Settings owns the singleton settings row.
type Settings interface {
	Get(ctx context.Context) (domain.Settings, error)
	Put(ctx context.Context, s domain.Settings) (domain.Settings, error)
}
