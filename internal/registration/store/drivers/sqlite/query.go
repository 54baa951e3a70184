package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/hackreg/internal/registration/domain"
	"github.com/aussiebroadwan/hackreg/internal/registration/store"
	"github.com/aussiebroadwan/hackreg/pkg/idx"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// buildUserFilter renders f as a WHERE clause. Conditions are ANDed; the
// text search is an OR over the searchable columns.
func buildUserFilter(f store.UserFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.SponsorsOnly {
		clauses = append(clauses, `sponsor = 1`)
	}

	if text := strings.TrimSpace(f.Text); text != "" {
		pattern := "%" + likeEscaper.Replace(text) + "%"
		or := []string{
			`email LIKE ? ESCAPE '\'`,
			`json_extract(profile, '$.name') LIKE ? ESCAPE '\'`,
			`team_code LIKE ? ESCAPE '\'`,
		}
		args = append(args, pattern, pattern, pattern)

		if id, err := idx.Parse(text); err == nil {
			or = append(or, `id = ?`)
			args = append(args, id.String())
		}
		clauses = append(clauses, `(`+strings.Join(or, ` OR `)+`)`)
	}

	if len(f.GraduationTimes) > 0 {
		clauses = append(clauses,
			`json_extract(profile, '$.graduationTime') IN (`+placeholders(len(f.GraduationTimes))+`)`)
		for _, g := range f.GraduationTimes {
			args = append(args, g)
		}
	}

	if len(f.Skills) > 0 {
		clauses = append(clauses,
			`EXISTS (SELECT 1 FROM json_each(profile, '$.skills') WHERE value IN (`+placeholders(len(f.Skills))+`))`)
		for _, s := range f.Skills {
			args = append(args, s)
		}
	}

	if f.ResumeOnly {
		clauses = append(clauses, `json_extract(profile, '$.resume') = 1`)
	}
	if f.USStudentOnly {
		clauses = append(clauses, `json_extract(profile, '$.usStudent') = 1`)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

func (r *usersRepo) Find(ctx context.Context, f store.UserFilter, limit, offset int) ([]domain.User, error) {
	where, args := buildUserFilter(f)
	if limit < 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+`
		 ORDER BY json_extract(profile, '$.name'), id
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *usersRepo) Count(ctx context.Context, f store.UserFilter) (int, error) {
	where, args := buildUserFilter(f)

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *usersRepo) Stats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(verified), 0),
			COALESCE(SUM(completed_profile), 0),
			COALESCE(SUM(admitted), 0),
			COALESCE(SUM(confirmed), 0),
			COALESCE(SUM(declined), 0),
			COALESCE(SUM(checked_in), 0),
			COALESCE(SUM(sponsor), 0),
			COALESCE(SUM(received_lunch), 0),
			COALESCE(SUM(received_dinner), 0),
			COALESCE(SUM(discord_verified), 0),
			COUNT(DISTINCT team_code)
		FROM users`).Scan(
		&s.Total, &s.Verified, &s.Submitted, &s.Admitted, &s.Confirmed, &s.Declined,
		&s.CheckedIn, &s.Sponsors, &s.ReceivedLunch, &s.ReceivedDinner, &s.DiscordLinked, &s.Teams,
	)
	return s, err
}
