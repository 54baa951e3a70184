package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/hackreg/internal/registration/service"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("handler: %w", &service.Error{Kind: service.KindConflict, Msg: "Team is full."})

	require.ErrorIs(t, err, service.ErrConflict)
	require.NotErrorIs(t, err, service.ErrValidation)
	require.Equal(t, service.KindConflict, service.KindOf(err))
	require.Equal(t, service.KindInternal, service.KindOf(errors.New("boom")))
	require.Equal(t, "conflict", service.KindConflict.String())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := &service.Error{Kind: service.KindNotFound, Msg: "No resume uploaded.", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Equal(t, "No resume uploaded.: disk on fire", err.Error())
	require.Equal(t, "validation", (&service.Error{Kind: service.KindValidation}).Error())
}
