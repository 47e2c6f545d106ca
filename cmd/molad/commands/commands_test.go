package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, v := range []string{"ENV", "DEFAULT_TIMEZONE", "DEFAULT_LATITUDE", "DEFAULT_LONGITUDE", "DIASPORA"} {
		os.Unsetenv(v)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", "2024-10-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-03 (Thursday) is 1 Tishrei 5785\n", out)
}

func TestConvert_InvalidDate(t *testing.T) {
	_, err := run(t, "convert", "10/03/2024")
	assert.Error(t, err)
}

func TestGregorian(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"gregorian", "5785", "Tishrei", "1"}, "1 Tishrei 5785 is 2024-10-03 (Thursday)\n"},
		{[]string{"gregorian", "5784", "13", "1"}, "1 Adar II 5784 is 2024-03-11 (Monday)\n"},
		{[]string{"gregorian", "5784", "adar-ii", "1"}, "1 Adar II 5784 is 2024-03-11 (Monday)\n"},
		{[]string{"gregorian", "5784", "Adar", "1"}, "1 Adar I 5784 is 2024-02-10 (Shabbos)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.args[2], func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestGregorian_Invalid(t *testing.T) {
	_, err := run(t, "gregorian", "5785", "Adar II", "1")
	assert.True(t, calendar.IsInvalidHebrewDate(err))

	_, err = run(t, "gregorian", "5785", "Nowember", "1")
	assert.Error(t, err)
}

func TestMolad(t *testing.T) {
	out, err := run(t, "molad", "5785", "Shevat")
	require.NoError(t, err)
	assert.Equal(t, "Molad Shevat 5785: Wednesday, 6:17 am and 17 chalakim (2025-01-29)\n", out)
}

func TestMolad_JSON(t *testing.T) {
	out, err := run(t, "--json", "molad", "5785", "7")
	require.NoError(t, err)

	var m calendar.MoladMoment
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Thursday, 3:21 am and 13 chalakim", m.Friendly)
	assert.Equal(t, calendar.AM, m.AmOrPm)
}

func TestMolad_ArgCount(t *testing.T) {
	_, err := run(t, "molad", "5785")
	assert.Error(t, err)
}

func TestRoshChodesh(t *testing.T) {
	out, err := run(t, "rosh-chodesh", "2024-10-20")
	require.NoError(t, err)
	assert.Contains(t, out, "Rosh Chodesh Cheshvan 5785: Friday & Shabbos")
	assert.Contains(t, out, "2024-11-01  Friday")

	out, err = run(t, "rosh-chodesh", "2025-09-01")
	require.NoError(t, err)
	assert.Contains(t, out, "none announced")
}

func TestYear(t *testing.T) {
	out, err := run(t, "year", "5784")
	require.NoError(t, err)
	assert.Contains(t, out, "Year 5784: leap, 383 days, 13 months")
	assert.Contains(t, out, "Adar I")
	assert.Contains(t, out, "2023-09-16")
}

func TestFacts(t *testing.T) {
	out, err := run(t, "--json", "facts", "--at", "2025-01-22")
	require.NoError(t, err)

	var facts calendar.MoladFacts
	require.NoError(t, json.Unmarshal([]byte(out), &facts))
	assert.Equal(t, "Jerusalem", facts.Location.Name)
	assert.False(t, facts.IsShabbat)
	assert.True(t, facts.IsUpcomingShabbosMevorchim)
	assert.Equal(t, "Shevat", facts.Molad.MonthName)
}

func TestFacts_LocationFlags(t *testing.T) {
	out, err := run(t, "facts", "--at", "2025-01-22", "--name", "NYC",
		"--lat", "40.7128", "--lon", "-74.006", "--tz", "America/New_York")
	require.NoError(t, err)
	assert.Contains(t, out, "NYC")
	assert.Contains(t, out, "America/New_York")
	assert.Contains(t, out, "Upcoming (2025-01-25): yes")
}

func TestFacts_BadTimeZone(t *testing.T) {
	_, err := run(t, "facts", "--tz", "Nowhere/Special")
	assert.Error(t, err)
}
