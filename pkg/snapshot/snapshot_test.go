package snapshot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPublicStats_Snapshot_NormFloat(t *testing.T) {
	t.Parallel()

	require.Nil(t, normFloat(nil))
	require.Nil(t, normFloat(ptr(math.NaN())))
	require.Nil(t, normFloat(ptr(math.Inf(1))))
	require.Nil(t, normFloat(ptr(math.Inf(-1))))

	v := normFloat(ptr(0.25))
	require.NotNil(t, v)
	require.Equal(t, 0.25, *v)

	zero := normFloat(ptr(0.0))
	require.NotNil(t, zero, "a true zero is kept, only non-finite values are dropped")
}

func TestPublicStats_Snapshot_Normalize(t *testing.T) {
	t.Parallel()

	r := InstallationRow{
		CodeAiot:             "A1",
		QuantiteAutorisee:    ptr(1000.0),
		TauxConsommation:     ptr(math.Inf(1)),
		CumulQuantiteTraitee: ptr(math.NaN()),
	}
	r.normalize()
	require.NotNil(t, r.QuantiteAutorisee)
	require.Nil(t, r.TauxConsommation)
	require.Nil(t, r.CumulQuantiteTraitee)
}

func TestPublicStats_Snapshot_Layers(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"installations", "departements", "regions", "france"} {
		l, ok := LayerByName(name)
		require.True(t, ok)
		require.Equal(t, name, l.Name)
	}

	_, ok := LayerByName("communes")
	require.False(t, ok)

	france, _ := LayerByName("france")
	require.Equal(t, "'France'", france.selectKey(), "national rows are keyed by a constant")

	departements, _ := LayerByName("departements")
	require.Equal(t, "code_departement_insee", departements.selectKey())
}

func TestPublicStats_Snapshot_JSONArg(t *testing.T) {
	t.Parallel()

	require.Equal(t, "{}", jsonArg(nil), "absent figures stay valid jsonb")
	require.Equal(t, `{"data":[]}`, jsonArg([]byte(`{"data":[]}`)))
}
