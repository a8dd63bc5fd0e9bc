package montage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroviz-data/scalpview/internal/headmap"
)

func TestAvailable(t *testing.T) {
	infos := Available()
	require.Len(t, infos, 3)
	assert.Equal(t, "biosemi64", infos[0].Name)
	assert.Equal(t, "standard_1005", infos[1].Name)
	assert.Equal(t, "standard_1020", infos[2].Name)
	for _, info := range infos {
		assert.NotZero(t, info.ChannelCount, "montage %s reports zero channels", info.Name)
		assert.NotEmpty(t, info.Description, "montage %s has no description", info.Name)
	}
}

func TestPositions_Unknown(t *testing.T) {
	_, err := Positions("standard_9999")
	assert.Error(t, err)
}

func TestPositions_SupersetRelation(t *testing.T) {
	small, err := Positions("standard_1020")
	require.NoError(t, err)
	large, err := Positions("standard_1005")
	require.NoError(t, err)

	assert.Greater(t, len(large), len(small))
	for name := range small {
		assert.Contains(t, large, name, "standard_1005 missing 10-20 site")
	}
}

func TestApply_BackfillsPositions(t *testing.T) {
	samples := []headmap.SensorSample{
		{Name: "Cz", Value: 1.0},
		{Name: "Fp1", Value: -1.0},
		{Name: "EXT1", Value: 0.5},
	}
	out, err := Apply("standard_1020", samples)
	require.NoError(t, err)

	require.NotNil(t, out[0].Pos, "Cz should be backfilled")
	assert.Equal(t, 1.0, out[0].Pos.Z, "Cz sits at the vertex")
	assert.NotNil(t, out[1].Pos, "Fp1 should be matched case-insensitively")
	assert.Nil(t, out[2].Pos, "EXT1 is not a 10-20 site")
	assert.Equal(t, 1.0, out[0].Value)
	assert.Equal(t, -1.0, out[1].Value)
}

func TestLookup(t *testing.T) {
	samples, err := Lookup("standard_1020", []string{"C3", "C4", "EXT1"})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, "C3", samples[0].Name)
	assert.NotNil(t, samples[0].Pos)
	assert.NotNil(t, samples[1].Pos)
	assert.Nil(t, samples[2].Pos)

	_, err = Lookup("standard_9999", []string{"C3"})
	assert.Error(t, err)
}

func TestApply_KeepsExistingPosition(t *testing.T) {
	custom := &headmap.Position3D{X: 0.1, Y: 0.2, Z: 0.9}
	out, err := Apply("standard_1020", []headmap.SensorSample{{Name: "Cz", Pos: custom, Value: 0}})
	require.NoError(t, err)
	assert.Same(t, custom, out[0].Pos, "existing position should not be overwritten")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := []headmap.SensorSample{{Name: "Cz", Value: 1}}
	_, err := Apply("standard_1020", in)
	require.NoError(t, err)
	assert.Nil(t, in[0].Pos, "input slice was mutated")
}
