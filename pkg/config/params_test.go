package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type tc struct {
		Name   string
		Params Params
		Field  string
	}

	valid := Default()

	for _, tt := range []tc{
		{
			Name:   "defaults are valid",
			Params: valid,
		},
		{
			Name:   "zero set size",
			Params: Params{N: 0, K: 3, U: 7, M: 1},
			Field:  "n",
		},
		{
			Name:   "set size equal to universe",
			Params: Params{N: 4, K: 3, U: 4, M: 1},
			Field:  "n",
		},
		{
			Name:   "set size larger than universe",
			Params: Params{N: 5, K: 3, U: 4, M: 1},
			Field:  "n",
		},
		{
			Name:   "universe wider than a bitmask",
			Params: Params{N: 3, K: 3, U: 65, M: 1},
			Field:  "U",
		},
		{
			Name:   "sunflower of one",
			Params: Params{N: 2, K: 1, U: 4, M: 1},
			Field:  "k",
		},
		{
			Name:   "empty family",
			Params: Params{N: 2, K: 3, U: 4, M: 0},
			Field:  "m",
		},
		{
			Name:   "family larger than C(U,n)",
			Params: Params{N: 2, K: 3, U: 4, M: 7},
			Field:  "m",
		},
		{
			Name:   "family equal to C(U,n)",
			Params: Params{N: 2, K: 3, U: 4, M: 6},
		},
		{
			Name:   "negative batches",
			Params: Params{N: 2, K: 3, U: 4, M: 3, MaxBatches: -1},
			Field:  "max-batches",
		},
		{
			Name:   "wide universe accepts large family",
			Params: Params{N: 32, K: 3, U: 64, M: 1 << 40},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			err := tt.Params.Validate()
			if tt.Field == "" {
				require.NoError(t, err)
				return
			}
			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.Field, cerr.Field)
		})
	}
}

func TestValidateAnnealRequiresThree(t *testing.T) {
	p := Params{N: 3, K: 4, U: 10, M: 5}
	require.NoError(t, p.Validate())

	var cerr *ConfigurationError
	require.True(t, errors.As(p.ValidateAnneal(), &cerr))
	assert.Equal(t, "k", cerr.Field)

	p.K = 3
	assert.NoError(t, p.ValidateAnneal())
}

func TestValidateExactBoundsIndex(t *testing.T) {
	assert.NoError(t, Params{N: 3, K: 3, U: 7, M: 20}.ValidateExact())

	var cerr *ConfigurationError
	require.True(t, errors.As(Params{N: 16, K: 3, U: 40, M: 20}.ValidateExact(), &cerr))
	assert.Equal(t, "U", cerr.Field)
}

func TestValidateIndexSizeBoundsKernelCarriers(t *testing.T) {
	for _, tt := range []struct {
		n, u  int
		field string
	}{
		{n: 3, u: 7},
		{n: 10, u: 11},
		{n: 30, u: 31, field: "n"},
		{n: 20, u: 22, field: "n"},
		{n: 62, u: 63, field: "n"},
		{n: 16, u: 40, field: "U"},
	} {
		err := ValidateIndexSize(tt.n, tt.u)
		if tt.field == "" {
			assert.NoError(t, err, "n=%d U=%d", tt.n, tt.u)
			continue
		}
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr), "n=%d U=%d: expected ConfigurationError, got %v", tt.n, tt.u, err)
		assert.Equal(t, tt.field, cerr.Field, "n=%d U=%d", tt.n, tt.u)
	}

	var cerr *ConfigurationError
	require.True(t, errors.As(Params{N: 30, K: 3, U: 31, M: 2}.ValidateExact(), &cerr))
	assert.Equal(t, "n", cerr.Field)
}

func TestDefaultAnneal(t *testing.T) {
	p := DefaultAnneal()
	assert.Equal(t, 3, p.N)
	assert.Equal(t, 20, p.U)
	assert.Equal(t, 19, p.M)
	assert.NoError(t, p.ValidateAnneal())
}

func TestExceeds(t *testing.T) {
	assert.False(t, Exceeds(35, 7, 3))
	assert.True(t, Exceeds(36, 7, 3))
	assert.True(t, Exceeds(1, 3, 4))
	assert.Equal(t, 35, Binomial(7, 3))
}
