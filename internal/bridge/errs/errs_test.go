package errs_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/bridge-withdraw/internal/bridge/errs"
)

func TestWrapMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")

	err := errs.Wrap(errs.ErrRPC, cause, "failed to get balance")
	require.Error(t, err)

	assert.ErrorIs(t, err, errs.ErrRPC)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to get balance")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapSurvivesFurtherWrapping(t *testing.T) {
	cause := errors.New("node down")

	err := errs.Wrap(errs.ErrEstimation, cause, "estimate")
	err = errors.Wrap(err, "round 2 failed")

	assert.ErrorIs(t, err, errs.ErrEstimation)
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilCause(t *testing.T) {
	assert.NoError(t, errs.Wrap(errs.ErrRPC, nil, "ignored"))
}

func TestKindsAreDistinct(t *testing.T) {
	err := errs.Wrap(errs.ErrFormat, errors.New("bad checksum"), "decode")

	assert.ErrorIs(t, err, errs.ErrFormat)
	assert.NotErrorIs(t, err, errs.ErrRPC)
	assert.NotErrorIs(t, err, errs.ErrMismatch)
}
