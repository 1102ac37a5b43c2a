package layout

import (
	"testing"

	"github.com/JMaximus76/filesync/fs/ferrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLiteralScenario(t *testing.T) {
	// header{size=24, align=8}, components [(4,4,10), (8,8,3)]
	// expected offsets [24, 64], total 88, master align 8.
	plan, err := Compute(24, 8, []Component{
		{Size: 4, Align: 4, Count: 10},
		{Size: 8, Align: 8, Count: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, []uintptr{24, 64}, plan.Offsets)
	assert.Equal(t, uintptr(88), plan.TotalBytes)
	assert.Equal(t, uintptr(8), plan.MasterAlign)
}

func TestComputeRejectsZeroHeaderSize(t *testing.T) {
	_, err := Compute(0, 8, nil)
	assert.True(t, ferrors.Is(err, ferrors.KindArg))
}

func TestComputeRejectsBadAlignment(t *testing.T) {
	_, err := Compute(8, 3, nil)
	assert.True(t, ferrors.Is(err, ferrors.KindArg))

	_, err = Compute(8, 8, []Component{{Size: 4, Align: 3, Count: 1}})
	assert.True(t, ferrors.Is(err, ferrors.KindArg))
}

func TestComputeRejectsZeroSizeOrCount(t *testing.T) {
	_, err := Compute(8, 8, []Component{{Size: 0, Align: 4, Count: 1}})
	assert.True(t, ferrors.Is(err, ferrors.KindArg))

	_, err = Compute(8, 8, []Component{{Size: 4, Align: 4, Count: 0}})
	assert.True(t, ferrors.Is(err, ferrors.KindArg))
}

func TestComputeNoComponents(t *testing.T) {
	plan, err := Compute(16, 8, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Offsets)
	assert.Equal(t, uintptr(16), plan.TotalBytes)
	assert.Equal(t, uintptr(8), plan.MasterAlign)
}
