package rotors_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/rotors"
)

func TestParse_ResolvesRelativeTipPaths(t *testing.T) {
	dir := t.TempDir()
	tipDir := filepath.Join(dir, "shapes")
	require.NoError(t, os.Mkdir(tipDir, 0o755))
	tipPath := filepath.Join(tipDir, "demo.tip")
	require.NoError(t, os.WriteFile(tipPath, []byte("dummy tip"), 0o644))

	const content = `<旋翼参数>
    <旋翼1>
        <旋翼名称>Rotor-A</旋翼名称>
        <中心点坐标>1.0, 2.0, 3.0</中心点坐标>
        <姿态角>0, 0, 0</姿态角>
        <桨叶片数>4</桨叶片数>
        <转速>600</转速>
        <旋翼旋向>顺时针</旋翼旋向>
        <形状系数>shapes/demo.tip</形状系数>
    </旋翼1>
    <旋翼2>
        <旋翼名称>Rotor-B</旋翼名称>
        <中心点坐标>4，5，6</中心点坐标>
        <姿态角>0,0,0</姿态角>
        <桨叶片数>3</桨叶片数>
        <转速>550</转速>
        <旋翼旋向>逆时针</旋翼旋向>
        <形状系数></形状系数>
    </旋翼2>
</旋翼参数>`
	xmlPath := filepath.Join(dir, "rotors.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(content), 0o644))

	rs, err := rotors.Parse(xmlPath)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	first := rs[0]
	assert.Equal(t, "Rotor-A", first.Name)
	assert.Equal(t, [3]float64{1, 2, 3}, first.Center)
	assert.Equal(t, 4, first.BladeCount)
	assert.InDelta(t, 600.0, first.RPM, 1e-12)
	assert.Equal(t, tipPath, first.TipPath)
	assert.Contains(t, first.Direction, "顺时")

	second := rs[1]
	assert.Equal(t, "", second.TipPath)
	assert.Equal(t, [3]float64{4, 5, 6}, second.Center)
	assert.Contains(t, second.Direction, "逆时")
}

func TestParse_FixesMalformedShapeTag(t *testing.T) {
	dir := t.TempDir()
	const content = `<旋翼参数>
    <旋翼1>
        <旋翼名称>R</旋翼名称>
        <形状系数>missing.tip<形状系数>
    </旋翼1>
</旋翼参数>`
	xmlPath := filepath.Join(dir, "rotors.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(content), 0o644))

	rs, err := rotors.Parse(xmlPath)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	// unresolvable paths still come back absolute against the XML dir
	assert.Equal(t, filepath.Join(dir, "missing.tip"), rs[0].TipPath)
}

func TestParse_DefaultsAndNestedAero(t *testing.T) {
	dir := t.TempDir()
	const content = `<旋翼参数>
    <旋翼1>
        <桨叶剖面>
            <气动剖面>
                <旋翼旋向>cw</旋翼旋向>
                <翼型起始位置>0,0.5,0</翼型起始位置>
                <气动数据>1,0.3,12,naca,0.5; 2,0.2,4</气动数据>
            </气动剖面>
        </桨叶剖面>
    </旋翼1>
</旋翼参数>`
	xmlPath := filepath.Join(dir, "rotors.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(content), 0o644))

	rs, err := rotors.Parse(xmlPath)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	r := rs[0]
	assert.Equal(t, "rotor_1", r.Name)
	assert.Equal(t, 2, r.BladeCount)
	assert.Equal(t, "cw", r.Direction)
	require.NotNil(t, r.AeroStart)
	assert.InDelta(t, 0.5, r.AeroStart[1], 1e-12)
	assert.NotEmpty(t, r.AeroBlock)
}

func TestYSign(t *testing.T) {
	assert.Equal(t, -1.0, rotors.YSign("顺时针"))
	assert.Equal(t, -1.0, rotors.YSign("CW"))
	assert.Equal(t, 1.0, rotors.YSign("逆时针"))
	assert.Equal(t, 1.0, rotors.YSign(""))
}

func TestParseAeroSegments(t *testing.T) {
	segs := rotors.ParseAeroSegments("1, 0.3, 12, naca0012, 0.5, 1, 2, 10, uniform；2, 0.2, 4")
	require.Len(t, segs, 2)

	assert.InDelta(t, 0.3, segs[0].Chord, 1e-12)
	assert.InDelta(t, 12.0, segs[0].TwistDeg, 1e-12)
	assert.Equal(t, "naca0012", segs[0].C81)
	assert.True(t, segs[0].HasDR)
	assert.InDelta(t, 0.5, segs[0].DR, 1e-12)
	assert.InDelta(t, 1.0, segs[0].Sweep, 1e-12)
	assert.InDelta(t, 2.0, segs[0].Anhedral, 1e-12)
	assert.True(t, segs[0].HasDivs)
	assert.Equal(t, 10, segs[0].Divs)
	assert.Equal(t, "uniform", segs[0].DivType)

	assert.False(t, segs[1].HasDR)
	assert.False(t, segs[1].HasDivs)
	assert.Equal(t, "", segs[1].C81)

	assert.Nil(t, rotors.ParseAeroSegments("   "))
}

func TestBuildAeroData_AccumulatesRadial(t *testing.T) {
	start := [3]float64{0, 0.4, 0}
	a := rotors.BuildAeroData(&start, "1,0.3,12,,0.5; 2,0.25,8,,0.6; 3,0.2,4")
	require.NotNil(t, a)
	require.Len(t, a.Radial, 3)
	assert.InDelta(t, 0.4, a.Radial[0], 1e-12)
	assert.InDelta(t, 0.9, a.Radial[1], 1e-12)
	assert.InDelta(t, 1.5, a.Radial[2], 1e-12)
	assert.Equal(t, []float64{0.3, 0.25, 0.2}, a.Chord)
	assert.Equal(t, []float64{12.0, 8.0, 4.0}, a.Twist)

	assert.Nil(t, rotors.BuildAeroData(nil, ""))

	// no start point means radius accumulates from zero
	b := rotors.BuildAeroData(nil, "1,0.3,0,,1.0; 2,0.2,0")
	require.NotNil(t, b)
	assert.Equal(t, []float64{0.0, 1.0}, b.Radial)
}
