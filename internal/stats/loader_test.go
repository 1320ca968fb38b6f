package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lebronYAML = `
player_id: 2544
player_name: LeBron James
active: true
regular:
  "2019-20": {min: 2316, fgm: 643, fga: 1303, fg3m: 148, fg3a: 425, ftm: 264, fta: 381,
              oreb: 66, dreb: 459, reb: 525, ast: 684, blk: 36, stl: 78, pts: 1698,
              pf: 118, tov: 261, gp: 67, gs: 67}
  "2020-21": {min: 1504, fgm: 422, fga: 828, fg3m: 102, fg3a: 279, ftm: 178, fta: 254,
              oreb: 26, dreb: 320, reb: 346, ast: 350, blk: 25, stl: 48, pts: 1126,
              pf: 70, tov: 168, gp: 45, gs: 45}
postseason:
  "2019-20": {min: 776, fgm: 227, fga: 406, fg3m: 47, fg3a: 129, ftm: 102, fta: 140,
              oreb: 28, dreb: 206, reb: 234, ast: 184, blk: 20, stl: 25, pts: 603,
              pf: 36, tov: 80, gp: 21, gs: 21}
`

func TestLoadRecordFromBytes(t *testing.T) {
	rec, err := LoadRecordFromBytes([]byte(lebronYAML))
	require.NoError(t, err)

	assert.Equal(t, int64(2544), rec.PlayerID)
	assert.Equal(t, "LeBron James", rec.Name)
	assert.Equal(t, HeadshotURL(2544), rec.Headshot, "headshot defaults to CDN URL")
	assert.True(t, rec.Active)
	assert.Equal(t, []string{"2019-20", "2020-21"}, rec.Regular.Total.SeasonLabels())
	assert.Equal(t, 2824.0, rec.Regular.Total.Career.Pts)
	assert.Equal(t, 112.0, rec.Regular.Total.Career.GP)
	assert.InDelta(t, 1698.0/67, rec.Regular.PerGame.Seasons["2019-20"].Pts, 1e-12)
	assert.InDelta(t, 643.0/1303, rec.Regular.Total.Seasons["2019-20"].FGPct, 1e-12)

	require.NotNil(t, rec.Postseason)
	assert.Equal(t, []string{"2019-20"}, rec.Postseason.Total.SeasonLabels())
}

func TestLoadRecordFromBytes_InvalidYAML(t *testing.T) {
	_, err := LoadRecordFromBytes([]byte("player_id: [nope"))
	assert.Error(t, err)
}

func TestLoadRecordFromBytes_MakesExceedAttempts(t *testing.T) {
	_, err := LoadRecordFromBytes([]byte(`
player_id: 1
player_name: Bad Data
regular:
  "2019-20": {fgm: 10, fga: 5, gp: 1}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestLoadRecordFromBytes_NoPostseason(t *testing.T) {
	rec, err := LoadRecordFromBytes([]byte(`
player_id: 1
player_name: Rookie
regular:
  "2023-24": {pts: 10, gp: 2}
`))
	require.NoError(t, err)
	assert.Nil(t, rec.Postseason)
}

func TestLoadRecordsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lebron.yaml"), []byte(lebronYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rookie.yml"), []byte(`
player_id: 1
player_name: Rookie
regular:
  "2023-24": {pts: 10, gp: 2}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	records, err := LoadRecordsFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Rookie", records[1].Name)
}

func TestLoadRecordsFromDir_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(lebronYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(lebronYAML), 0o644))

	_, err := LoadRecordsFromDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate player id 2544")
}

func TestLoadRecordsFromDir_Missing(t *testing.T) {
	_, err := LoadRecordsFromDir("/nonexistent/fixtures")
	assert.Error(t, err)
}
