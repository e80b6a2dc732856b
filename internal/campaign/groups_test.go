package campaign

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra/pgxtest"
	"donorcrm/internal/sqlinline"
)

func TestMoveMemberRefreshesBothGroups(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QSelectEmailGroupMember] = pgxtest.Returns("old", "a@example.org")
	sql.Rows[sqlinline.QRefreshEmailGroupTotal] = func(args []any) pgx.Row {
		if args[0] == "old" {
			return pgxtest.ValuesRow(int64(4))
		}
		return pgxtest.ValuesRow(int64(9))
	}

	totals, err := NewGroups(sql).MoveMember(context.Background(), "member-1", "new")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"old": 4, "new": 9}, totals)
	assert.Len(t, sql.ExecsOf(sqlinline.QMoveEmailGroupMember), 1)
	assert.Equal(t, 1, sql.Txs)
}

func TestMoveMemberSameGroup(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QSelectEmailGroupMember] = pgxtest.Returns("old", "a@example.org")
	sql.Rows[sqlinline.QRefreshEmailGroupTotal] = pgxtest.Returns(int64(4))

	totals, err := NewGroups(sql).MoveMember(context.Background(), "member-1", "old")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"old": 4}, totals)
	assert.Empty(t, sql.ExecsOf(sqlinline.QMoveEmailGroupMember))
}

func TestMoveMemberErrors(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QSelectEmailGroupMember] = pgxtest.Fails(pgx.ErrNoRows)
	g := NewGroups(sql)

	_, err := g.MoveMember(context.Background(), "missing", "new")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = g.MoveMember(context.Background(), "member-1", " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMoveMemberConstraintViolations(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QSelectEmailGroupMember] = pgxtest.Returns("old", "a@example.org")
	g := NewGroups(sql)

	sql.ExecErr[sqlinline.QMoveEmailGroupMember] = &pgconn.PgError{Code: "23505", ConstraintName: "email_group_members_email_group_email_key"}
	_, err := g.MoveMember(context.Background(), "member-1", "new")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	sql.ExecErr[sqlinline.QMoveEmailGroupMember] = &pgconn.PgError{Code: "23503"}
	_, err = g.MoveMember(context.Background(), "member-1", "nowhere")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.DoctypeEmailGroup, nf.Doctype)
}

func TestUnsubscribe(t *testing.T) {
	sql := pgxtest.NewExecutor()
	sql.Rows[sqlinline.QRefreshEmailGroupTotal] = pgxtest.Returns(int64(7))

	total, err := NewGroups(sql).Unsubscribe(context.Background(), "donors", "A@example.org")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, []any{"donors", "A@example.org"}, sql.ExecsOf(sqlinline.QUnsubscribeEmailGroupMember)[0].Args)

	sql.Tags[sqlinline.QUnsubscribeEmailGroupMember] = pgconn.NewCommandTag("UPDATE 0")
	_, err = NewGroups(sql).Unsubscribe(context.Background(), "donors", "nobody@example.org")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
