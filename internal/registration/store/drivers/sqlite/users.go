package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

type usersRepo struct {
	db DBTX
}

const userColumns = `id, email, password_hash, admin, sponsor, verified, created_at, last_updated, team_code,
	profile, confirmation,
	completed_profile, admitted, admitted_by, confirmed, declined, checked_in, check_in_time, confirm_by, reimbursement_given,
	sponsor_status, sponsor_fields,
	received_lunch, received_dinner, workshops_attended, tables_visited,
	discord_verified, discord_user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                                  domain.User
		createdAt, lastUpdated             int64
		teamCode, admittedBy, discordID    sql.NullString
		checkInTime, confirmBy             sql.NullInt64
		profile, confirmation, sponsorJSON string
		workshops, tables                  string
		sponsorStatus                      string
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Admin, &u.Sponsor, &u.Verified, &createdAt, &lastUpdated, &teamCode,
		&profile, &confirmation,
		&u.Status.CompletedProfile, &u.Status.Admitted, &admittedBy, &u.Status.Confirmed, &u.Status.Declined,
		&u.Status.CheckedIn, &checkInTime, &confirmBy, &u.Status.ReimbursementGiven,
		&sponsorStatus, &sponsorJSON,
		&u.AtEvent.ReceivedLunch, &u.AtEvent.ReceivedDinner, &workshops, &tables,
		&u.Discord.Verified, &discordID,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.CreatedAt = fromMillis(createdAt)
	u.LastUpdated = fromMillis(lastUpdated)
	u.TeamCode = mapNullString(teamCode)
	u.Status.AdmittedBy = mapNullString(admittedBy)
	u.Status.CheckInTime = fromNullMillis(checkInTime)
	u.Status.ConfirmBy = fromNullMillis(confirmBy)
	u.Discord.UserID = mapNullString(discordID)

	if err := decodeJSON(profile, &u.Profile); err != nil {
		return domain.User{}, err
	}
	if err := decodeJSON(confirmation, &u.Confirmation); err != nil {
		return domain.User{}, err
	}
	if err := decodeJSON(sponsorJSON, &u.SponsorFields); err != nil {
		return domain.User{}, err
	}
	u.SponsorFields.Status = domain.SponsorStatus(sponsorStatus)
	if err := decodeJSON(workshops, &u.AtEvent.WorkshopsAttended); err != nil {
		return domain.User{}, err
	}
	if err := decodeJSON(tables, &u.AtEvent.TablesVisited); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	profile, err := encodeJSON(u.Profile)
	if err != nil {
		return err
	}
	confirmation, err := encodeJSON(u.Confirmation)
	if err != nil {
		return err
	}
	sponsorFields := u.SponsorFields
	sponsorFields.Status = ""
	sponsorJSON, err := encodeJSON(sponsorFields)
	if err != nil {
		return err
	}
	status := u.SponsorFields.Status
	if status == "" {
		status = domain.SponsorIncomplete
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, admin, sponsor, verified, created_at, last_updated,
			team_code, profile, confirmation, sponsor_status, sponsor_fields)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash, u.Admin, u.Sponsor, u.Verified,
		toMillis(u.CreatedAt), toMillis(u.LastUpdated),
		mapStringNull(u.TeamCode), profile, confirmation, string(status), sponsorJSON,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, mapNotFound(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
	return u, mapNotFound(err)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// update runs "UPDATE users SET <set> WHERE <key> AND <guard> RETURNING ...".
// When nothing matched it looks the key up again to tell a missing record
// from a failed guard.
func (r *usersRepo) update(ctx context.Context, set, keyCol string, key any, guard string, args ...any) (domain.User, error) {
	where := keyCol + ` = ?`
	if guard != "" {
		where += ` AND (` + guard + `)`
	}
	query := `UPDATE users SET ` + set + ` WHERE ` + where + ` RETURNING ` + userColumns

	// Arguments are positional: SET args, then the key, then guard args.
	setArgs, guardArgs := splitArgs(args)
	all := append(append(setArgs, key), guardArgs...)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, all...))
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, err
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE `+keyCol+` = ?`, key).Scan(&exists)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return domain.User{}, store.ErrPreconditionFailed
}

// guardArgs marks the start of arguments bound to the guard clause.
type guardArgs []any

func splitArgs(args []any) (set, guard []any) {
	for i, a := range args {
		if g, ok := a.(guardArgs); ok {
			return append([]any(nil), args[:i]...), append([]any(nil), g...)
		}
	}
	return append([]any(nil), args...), nil
}

func (r *usersRepo) MarkVerified(ctx context.Context, email string) (domain.User, error) {
	return r.update(ctx, `verified = 1`, "email", domain.NormalizeEmail(email), "")
}

func (r *usersRepo) CompleteWalkIn(ctx context.Context, email, passwordHash string) (domain.User, error) {
	return r.update(ctx, `verified = 1, password_hash = ?`, "email", domain.NormalizeEmail(email), "", passwordHash)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) (domain.User, error) {
	return r.update(ctx, `password_hash = ?`, "id", id, "", passwordHash)
}

func (r *usersRepo) UpdateProfile(
	ctx context.Context,
	id string,
	p domain.Profile,
	at time.Time,
	expectLastUpdated *time.Time,
) (domain.User, error) {
	profile, err := encodeJSON(p)
	if err != nil {
		return domain.User{}, err
	}

	guard := `verified = 1`
	g := guardArgs{}
	if expectLastUpdated != nil {
		guard += ` AND last_updated = ?`
		g = append(g, toMillis(*expectLastUpdated))
	}

	return r.update(ctx,
		`profile = ?, completed_profile = 1, last_updated = ?`,
		"id", id, guard,
		profile, toMillis(at), g,
	)
}

func (r *usersRepo) Admit(ctx context.Context, id, adminEmail string, confirmBy *time.Time) (domain.User, error) {
	return r.update(ctx,
		`admitted = 1, admitted_by = ?, confirm_by = ?`,
		"id", id, `verified = 1`,
		adminEmail, toNullMillis(confirmBy),
	)
}

func (r *usersRepo) UpdateConfirmation(
	ctx context.Context,
	id string,
	c domain.Confirmation,
	at time.Time,
) (domain.User, error) {
	confirmation, err := encodeJSON(c)
	if err != nil {
		return domain.User{}, err
	}
	return r.update(ctx,
		`confirmation = ?, confirmed = 1, last_updated = ?`,
		"id", id,
		`verified = 1 AND admitted = 1 AND declined = 0
			AND (confirmed = 1 OR confirm_by IS NULL OR confirm_by > ?)`,
		confirmation, toMillis(at), guardArgs{toMillis(at)},
	)
}

func (r *usersRepo) Decline(ctx context.Context, id string, at time.Time) (domain.User, error) {
	return r.update(ctx,
		`confirmed = 0, declined = 1, last_updated = ?`,
		"id", id, `verified = 1 AND admitted = 1 AND declined = 0`,
		toMillis(at),
	)
}

func (r *usersRepo) RestampConfirmBy(ctx context.Context, id string, confirmBy *time.Time) (domain.User, error) {
	return r.update(ctx,
		`confirm_by = ?`,
		"id", id, `verified = 1 AND admitted = 1 AND confirmed = 1`,
		toNullMillis(confirmBy),
	)
}

func (r *usersRepo) MarkReimbursementGiven(ctx context.Context, id string) (domain.User, error) {
	return r.update(ctx, `reimbursement_given = 1`, "id", id, `admitted = 1`)
}

func (r *usersRepo) SetCheckedIn(ctx context.Context, id string, checkedIn bool, at time.Time) (domain.User, error) {
	if checkedIn {
		return r.update(ctx, `checked_in = 1, check_in_time = ?`, "id", id, `verified = 1`, toMillis(at))
	}
	return r.update(ctx, `checked_in = 0`, "id", id, `verified = 1`)
}

func (r *usersRepo) MarkMeal(ctx context.Context, id string, meal domain.Meal) (domain.User, error) {
	var col string
	switch meal {
	case domain.MealLunch:
		col = "received_lunch"
	case domain.MealDinner:
		col = "received_dinner"
	default:
		return domain.User{}, fmt.Errorf("sqlite: unknown meal %q", meal)
	}
	return r.update(ctx, col+` = 1`, "id", id, `verified = 1 AND `+col+` = 0`)
}

func (r *usersRepo) SetAdmin(ctx context.Context, id string, admin bool) (domain.User, error) {
	return r.update(ctx, `admin = ?`, "id", id, `verified = 1`, admin)
}

func (r *usersRepo) LinkDiscord(ctx context.Context, id, discordUserID string, at time.Time) (domain.User, error) {
	return r.update(ctx,
		`discord_verified = 1, discord_user_id = ?, checked_in = 1, check_in_time = ?`,
		"id", id, `verified = 1 AND discord_verified = 0`,
		discordUserID, toMillis(at),
	)
}

func (r *usersRepo) ResetDiscord(ctx context.Context, id string) (domain.User, error) {
	return r.update(ctx, `discord_verified = 0`, "id", id, "")
}

func (r *usersRepo) AddWorkshopAttended(ctx context.Context, id, sponsorID string) (domain.User, error) {
	return r.addToSet(ctx, "workshops_attended", id, sponsorID)
}

func (r *usersRepo) AddTableVisited(ctx context.Context, id, sponsorID string) (domain.User, error) {
	return r.addToSet(ctx, "tables_visited", id, sponsorID)
}

// addToSet appends value to a JSON array column unless already present.
func (r *usersRepo) addToSet(ctx context.Context, col, id, value string) (domain.User, error) {
	set := col + ` = CASE
		WHEN EXISTS (SELECT 1 FROM json_each(` + col + `) WHERE value = ?) THEN ` + col + `
		ELSE json_insert(` + col + `, '$[#]', ?) END`
	return r.update(ctx, set, "id", id, `verified = 1`, value, value)
}

func (r *usersRepo) JoinTeam(ctx context.Context, id, code string, maxSize int) (domain.User, error) {
	return r.update(ctx,
		`team_code = ?`,
		"id", id,
		`verified = 1 AND (SELECT COUNT(*) FROM users WHERE team_code = ? AND id <> ?) < ?`,
		code, guardArgs{code, id, maxSize},
	)
}

func (r *usersRepo) LeaveTeam(ctx context.Context, id string) (domain.User, error) {
	return r.update(ctx, `team_code = NULL`, "id", id, "")
}

func (r *usersRepo) ListByTeam(ctx context.Context, code string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE team_code = ? ORDER BY created_at, id`, code)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *usersRepo) SetSponsorStatus(ctx context.Context, id string, status domain.SponsorStatus) (domain.User, error) {
	return r.update(ctx, `sponsor_status = ?`, "id", id, `sponsor = 1`, string(status))
}

func (r *usersRepo) UpdateSponsorFields(ctx context.Context, id string, f domain.SponsorFields) (domain.User, error) {
	f.Status = ""
	raw, err := encodeJSON(f)
	if err != nil {
		return domain.User{}, err
	}
	return r.update(ctx,
		`sponsor_fields = ?,
		 sponsor_status = CASE WHEN sponsor_status = 'grantedResumeAccess'
			THEN sponsor_status ELSE 'completedProfile' END`,
		"id", id, `sponsor = 1`,
		raw,
	)
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	defer func() { _ = rows.Close() }()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
