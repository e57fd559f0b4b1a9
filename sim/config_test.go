package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safectl-go/linalg"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseScenarioOverrides(t *testing.T) {
	path := writeScenario(t, `<?xml version="1.0"?>
<scenario name="gauntlet" dt="0.02" steps="500">
  <agent start="0,0"/>
  <target pos="300, 150"/>
  <obstacle pos="120,80" radius="25"/>
  <sensor sigma="3" seed="9"/>
  <safety eps="12" alpha="2.0"/>
  <controller kp="0.8" kd="1.6" maxaccel="30"/>
  <filter qpos="1" qvel="4" rmeas="20" p0="100"/>
</scenario>`)

	sc, err := ParseScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "gauntlet", sc.Name)
	assert.Equal(t, 0.02, sc.Dt)
	assert.Equal(t, 500, sc.Steps)
	assert.Equal(t, linalg.Vec2{}, sc.Start)
	assert.Equal(t, linalg.Vec2{X: 300, Y: 150}, sc.Target)
	assert.Equal(t, linalg.Vec2{X: 120, Y: 80}, sc.Obstacle.Center)
	assert.Equal(t, 25.0, sc.Obstacle.Radius)
	assert.Equal(t, 3.0, sc.NoiseSigma)
	assert.Equal(t, uint64(9), sc.Seed)
	assert.Equal(t, 12.0, sc.Eps)
	assert.Equal(t, 2.0, sc.Alpha)
	assert.Equal(t, 0.8, sc.Kp)
	assert.Equal(t, 30.0, sc.MaxAccel)
	assert.Equal(t, 1.0, sc.Filter.QPos)
	assert.Equal(t, 4.0, sc.Filter.QVel)
	assert.Equal(t, 20.0, sc.Filter.RMeas)
	assert.Equal(t, 100.0, sc.P0Scale)
}

func TestParseScenarioPartialKeepsDefaults(t *testing.T) {
	path := writeScenario(t, `<scenario name="short"><obstacle radius="40"/></scenario>`)

	sc, err := ParseScenario(path)
	require.NoError(t, err)

	def := DefaultScenario()
	assert.Equal(t, "short", sc.Name)
	assert.Equal(t, 40.0, sc.Obstacle.Radius)
	// Everything not mentioned stays at the stock value.
	assert.Equal(t, def.Obstacle.Center, sc.Obstacle.Center)
	assert.Equal(t, def.Start, sc.Start)
	assert.Equal(t, def.Eps, sc.Eps)
	assert.Equal(t, def.Steps, sc.Steps)
	assert.Equal(t, def.Filter, sc.Filter)
}

func TestParseScenarioMissingFile(t *testing.T) {
	_, err := ParseScenario(filepath.Join(t.TempDir(), "nope.xml"))
	assert.Error(t, err)
}

func TestParseScenarioRejectsBadValues(t *testing.T) {
	path := writeScenario(t, `<scenario><safety eps="0"/></scenario>`)
	_, err := ParseScenario(path)
	assert.ErrorContains(t, err, "eps")

	path = writeScenario(t, `<scenario><obstacle radius="-5"/></scenario>`)
	_, err = ParseScenario(path)
	assert.ErrorContains(t, err, "radius")
}

func TestParseScenarioMalformedXML(t *testing.T) {
	path := writeScenario(t, `<scenario><agent`)
	_, err := ParseScenario(path)
	assert.Error(t, err)
}
