package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/flashsize/pkg/common"
	"github.com/daviszhen/flashsize/pkg/util"
)

func TestCatalogProfiles(t *testing.T) {
	catalog := DefaultCatalog()
	profiles := catalog.FlashProfiles()
	require.Len(t, profiles, 2)
	assert.Equal(t, "QLC", profiles[0].Name)
	assert.Equal(t, "TLC", profiles[1].Name)

	fp, ok := catalog.Flash(" tlc ")
	require.True(t, ok)
	assert.Equal(t, "96K", fp.OneShotPage.String())
	assert.Equal(t, uint64(3), fp.PSLCMultiplier)

	_, ok = catalog.Flash("MLC")
	assert.False(t, ok)

	assert.Equal(t, "32M", catalog.DefaultBlockSize("QLC").String())
	assert.Equal(t, "24M", catalog.DefaultBlockSize("nonsense").String())
	assert.Equal(t, "40M", catalog.DefaultMetaSize("block").String())
	assert.Equal(t, "256M", catalog.DefaultMetaSize("").String())
	assert.Equal(t, uint64(28), catalog.DefaultPSLCSuperBlocks("conzone"))
	assert.Equal(t, uint64(0), catalog.DefaultPSLCSuperBlocks("zns"))
}

func TestCatalogApplyFlashOptions(t *testing.T) {
	catalog := DefaultCatalog()
	err := catalog.ApplyFlashOptions([]util.FlashOptions{
		{Name: "plc", OneShotPage: "160K", PSLCMultiplier: 5, BlockSize: "40M"},
		{Name: "TLC", PSLCMultiplier: 4},
	})
	require.NoError(t, err)

	fp, ok := catalog.Flash("PLC")
	require.True(t, ok)
	assert.Equal(t, "160K", fp.OneShotPage.String())
	assert.Equal(t, uint64(5), fp.PSLCMultiplier)

	tlc, ok := catalog.Flash("TLC")
	require.True(t, ok)
	assert.Equal(t, uint64(4), tlc.PSLCMultiplier)
	assert.Equal(t, "96K", tlc.OneShotPage.String())
	assert.Len(t, catalog.FlashProfiles(), 3)

	plan, err := catalog.Plan(RawParams{FlashType: "plc", Interface: "block"})
	require.NoError(t, err)
	assert.Equal(t, "PLC", plan.FlashType)
	assert.Equal(t, "40M", plan.BlockSize.String())
	assert.Equal(t, "160M", plan.SuperBlockSize.String())

	err = catalog.ApplyFlashOptions([]util.FlashOptions{{Name: "XLC", OneShotPage: "64K"}})
	assert.Error(t, err)

	err = catalog.ApplyFlashOptions([]util.FlashOptions{{Name: "QLC", BlockSize: "32 MB"}})
	assert.ErrorIs(t, err, common.ErrInvalidFormat)
}

func TestCatalogString(t *testing.T) {
	out := DefaultCatalog().String()
	assert.Contains(t, out, "Catalog:")
	assert.Contains(t, out, "TLC (default)")
	assert.Contains(t, out, "QLC")
	assert.Contains(t, out, "pSLC super-blocks conzone")
	assert.Contains(t, out, "82G")
}
