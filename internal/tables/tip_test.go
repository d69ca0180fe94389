package tables_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/tables"
)

// tipFixture carries an imperial block first and an SI block second, with
// the SI rows deliberately unsorted and one duplicated station.
const tipFixture = `HEADER JUNK
BLADE STRUCT Y
TABLE
 SEC   STA   WEIGHT  XCG    ZCG    ROTAPI  JX    JZ    JP    EA     XNA    ZNA    ROTAN  EJZ    EJX    GJ     XCT    ZCT
 -     in    lb/in   in     in     deg     -     -     -     lb     in     in     deg    -      -      -      in     in
 1     0.0   999.0   0.0    0.0    0.0     0.0   0.0   0.0   1.0    0.0    0.0    0.0    1.0    1.0    1.0    0.0    0.0
ENDTABLE
BLADE STRUCT Y
TABLE
 SEC   STA   WEIGHT  XCG    ZCG    ROTAPI  JX    JZ    JP    EA     XNA    ZNA    ROTAN  EJZ    EJX    GJ     XCT    ZCT
 -     m     kg/m    m      m      deg     -     -     -     N      m      m      deg    -      -      -      m      m
 2     2.0   5.0     0.01   0.02   3.0     0.1   0.2   0.3   1.0e7  0.03   0.04   4.0    2.0e5  3.0e5  4.0e5  0.05   0.06
 1     0.0   4.0     0.00   0.00   1.0     0.4   0.5   0.6   2.0e7  0.00   0.00   2.0    5.0e5  6.0e5  7.0e5  0.00   0.00
 3     2.0   7.0     0.03   0.04   3.0     0.1   0.2   0.3   1.0e7  0.03   0.04   4.0    2.0e5  3.0e5  4.0e5  0.05   0.06
ENDTABLE
`

func writeTipFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blade.tip")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTip_PrefersSIBlockAndRemapsAxes(t *testing.T) {
	td, err := tables.LoadTip(writeTipFixture(t, tipFixture))
	require.NoError(t, err)

	// the imperial block carries WEIGHT=999; picking it would be obvious
	assert.Equal(t, []float64{0.0, 2.0}, td.STA)
	require.Len(t, td.DM, 2)
	assert.InDelta(t, 4.0, td.DM[0], 1e-12)
	// duplicated station 2.0 averaged: (5+7)/2
	assert.InDelta(t, 6.0, td.DM[1], 1e-12)

	// axis remap: file XCG/ZCG become ZCG/YCG, JX/JZ/JP become DJZ/DJY/DJX
	assert.InDelta(t, 0.03, td.YCG[1], 1e-12) // mean of file ZCG 0.02, 0.04
	assert.InDelta(t, 0.02, td.ZCG[1], 1e-12) // mean of file XCG 0.01, 0.03
	assert.InDelta(t, 0.3, td.DJX[1], 1e-12)  // file JP
	assert.InDelta(t, 0.2, td.DJY[1], 1e-12)  // file JZ
	assert.InDelta(t, 0.1, td.DJZ[1], 1e-12)  // file JX

	// stiffness remap: EJX -> EJY, EJZ stays
	assert.InDelta(t, 3.0e5, td.EJY[1], 1e-6)
	assert.InDelta(t, 2.0e5, td.EJZ[1], 1e-6)
	assert.InDelta(t, 1.0e7, td.EA[1], 1e-3)

	// offsets: XNA/ZNA become ZNA/YNA, XCT/ZCT become ZCT/YCT
	assert.InDelta(t, 0.04, td.YNA[1], 1e-12)
	assert.InDelta(t, 0.03, td.ZNA[1], 1e-12)
	assert.InDelta(t, 0.06, td.YCT[1], 1e-12)
	assert.InDelta(t, 0.05, td.ZCT[1], 1e-12)
}

func TestLoadTip_FallsBackToPositionalColumns(t *testing.T) {
	const garbled = `BLADE STRUCT Y
TABLE
 ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ??? ???
 -   m   kg/m -  -   -   -   -   -   -   -   -   -   -   -   -   -   -
 1   0.0 4.0  0.0 0.0 0.0 0.0 0.0 0.0 2.0e7 0.0 0.0 0.0 5.0e5 6.0e5 7.0e5 0.0 0.0
 2   1.0 5.0  0.0 0.0 0.0 0.0 0.0 0.0 1.0e7 0.0 0.0 0.0 2.0e5 3.0e5 4.0e5 0.0 0.0
ENDTABLE
`
	td, err := tables.LoadTip(writeTipFixture(t, garbled))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 1.0}, td.STA)
	assert.InDelta(t, 2.0e7, td.EA[0], 1e-3)
	assert.InDelta(t, 6.0e5, td.EJY[0], 1e-6)
}

func TestLoadTip_NoBlockErrors(t *testing.T) {
	_, err := tables.LoadTip(writeTipFixture(t, "just prose\nno tables here\n"))
	assert.Error(t, err)
}

func TestTipData_InterpolatorAndSignals(t *testing.T) {
	td, err := tables.LoadTip(writeTipFixture(t, tipFixture))
	require.NoError(t, err)

	it, err := td.Interpolator()
	require.NoError(t, err)
	v, err := it.Eval("EA", 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.5e7, v, 1e-3)
	_, err = it.Eval("NOPE", 1.0)
	assert.Error(t, err)

	sigs, err := td.Signals()
	require.NoError(t, err)
	for _, name := range []string{"EA", "EJY", "EJZ", "GJ"} {
		require.Contains(t, sigs, name)
	}
	assert.InDelta(t, 7.0e5, sigs["GJ"].At(-1.0), 1e-6) // clamped left
}
