package importer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"uno-score-bot/internal/model"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("r%d", n)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{filename: "scores.csv", want: FormatCSV},
		{filename: "Scores.XLSX", want: FormatXLSX},
		{filename: "backup.json", want: FormatJSON},
		{filename: "scores.txt", wantErr: true},
		{filename: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := FormatFor(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV_HeaderlessRowUsesRoster(t *testing.T) {
	res, err := ParseCSV(strings.NewReader(`1/19,0,5,"パねぇ！"`), Options{
		Year:   2025,
		Roster: []string{"P1", "P2"},
		NewID:  seqIDs(),
	})
	require.NoError(t, err)

	want := []model.GameRecord{{
		ID:     "r1",
		Date:   model.MustParseDate("2025-01-19"),
		Type:   model.VariantPanee,
		Scores: map[string]int{"P1": 0, "P2": 5},
	}}
	if diff := cmp.Diff(want, res.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, res.Report.Rows)
	assert.Empty(t, res.Report.Skipped)
}

func TestParseCSV_SheetWithHeaderAndSummary(t *testing.T) {
	sheet := strings.Join([]string{
		"\ufeff日付,百合子,守正,合計,タイプ",
		"1/19,0,5,5,パネェ",
		"1/20,12点,0,12,パーチー",
		"2024/12/31,3,0,3,どっちも",
		"1/21,0,0,0,普通",
		"someday,1,2,3,普通",
		",,,,",
		"累計,15,5,20,",
		"順位,1,2,,",
		"1/22,4,x,4,",
	}, "\n")

	res, err := ParseCSV(strings.NewReader(sheet), Options{Year: 2025, NewID: seqIDs()})
	require.NoError(t, err)

	assert.Equal(t, []string{"百合子", "守正"}, res.Players)
	require.Len(t, res.Records, 4)

	assert.Equal(t, model.MustParseDate("2025-01-19"), res.Records[0].Date)
	assert.Equal(t, model.VariantPanee, res.Records[0].Type)
	assert.Equal(t, map[string]int{"百合子": 0, "守正": 5}, res.Records[0].Scores)

	assert.Equal(t, 12, res.Records[1].Scores["百合子"])
	assert.Equal(t, model.VariantParty, res.Records[1].Type)

	assert.Equal(t, model.MustParseDate("2024-12-31"), res.Records[2].Date)
	assert.Equal(t, model.VariantNormal, res.Records[2].Type)

	assert.Equal(t, model.DefaultVariant, res.Records[3].Type, "empty type cell falls back to the default")
	assert.Equal(t, 0, res.Records[3].Scores["守正"], "unparseable score is 0")

	assert.Equal(t, 8, res.Report.Rows)
	assert.Equal(t, []SkippedRow{
		{Line: 5, Reason: reasonNoScore},
		{Line: 6, Reason: reasonDate},
		{Line: 8, Reason: reasonSummary},
		{Line: 9, Reason: reasonSummary},
	}, res.Report.Skipped)
}

func TestParseCSV_ShortRowsScoreZero(t *testing.T) {
	res, err := ParseCSV(strings.NewReader("日付,A,B,C\n3/1,4"), Options{Year: 2025})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]int{"A": 4, "B": 0, "C": 0}, res.Records[0].Scores)
	assert.Len(t, res.Records[0].ID, 36)
}

func TestParseCSV_Empty(t *testing.T) {
	res, err := ParseCSV(strings.NewReader(""), Options{Year: 2025})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestLeadingInt(t *testing.T) {
	tests := map[string]int{
		"12":           12,
		"12点":          12,
		"":             0,
		"abc":          0,
		"-3":           0,
		"007":          7,
		"1e3":          1,
		"999999999":    999999999,
		"000000000042": 42,
	}
	for in, want := range tests {
		got, ok := leadingInt(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"1234567890", "12345678901", "99999999999999999999999点"} {
		_, ok := leadingInt(in)
		assert.False(t, ok, in)
	}
}

func TestParseCSV_OversizedScoreSkipsRow(t *testing.T) {
	sheet := "日付,A,B\n3/1,12345678901,0\n3/2,0,7\n"
	res, err := ParseCSV(strings.NewReader(sheet), Options{Year: 2025, NewID: seqIDs()})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]int{"A": 0, "B": 7}, res.Records[0].Scores)
	assert.Equal(t, 2, res.Report.Rows)
	assert.Equal(t, []SkippedRow{{Line: 2, Reason: reasonTooBig}}, res.Report.Skipped)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"日付", "Aki", "Ben", "タイプ"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2/3", 0, 25, "パーチー"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"最下位", "", "Ben", ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := ParseXLSX(bytes.NewReader(buf.Bytes()), Options{Year: 2026, NewID: seqIDs()})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, model.MustParseDate("2026-02-03"), res.Records[0].Date)
	assert.Equal(t, map[string]int{"Aki": 0, "Ben": 25}, res.Records[0].Scores)
	assert.Equal(t, model.VariantParty, res.Records[0].Type)
	assert.Len(t, res.Report.Skipped, 1)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("日付,A,B"), Options{Year: 2025})
	assert.Error(t, err)
}

func TestSnapshotJSON_OriginalExportFormat(t *testing.T) {
	exported := `{
  "players": ["百合子", "守正"],
  "games": [
    {"id": "lx2k9a", "date": "2025-01-19", "type": "パーチー", "scores": {"百合子": 0, "守正": 5},
     "duration": {"minutes": 4, "seconds": 7}, "trueWinner": "百合子"},
    {"id": "lx2k9b", "date": "2025-01-20", "scores": {"百合子": 3, "守正": 0}, "isOpen": true}
  ],
  "fund": 3000,
  "lastGameType": "普通",
  "rankingOverrides": {"yearly_2025": ["守正", "百合子"]},
  "dailyWinners": {"2025-01-19": "百合子"},
  "yearlyWinner": {"2025": "守正"}
}`

	snap, err := ParseSnapshotJSON(strings.NewReader(exported))
	require.NoError(t, err)

	assert.Equal(t, []string{"百合子", "守正"}, snap.Players)
	require.Len(t, snap.Games, 2)
	assert.Equal(t, "4:07", snap.Games[0].Duration.String())
	assert.Equal(t, model.DefaultVariant, snap.Games[1].Type)
	assert.True(t, snap.Games[1].IsOpen)
	assert.Equal(t, "守正", snap.Overrides().YearlyWinner(2025))
	assert.Equal(t, []string{"守正", "百合子"}, snap.Overrides().RankingFor(model.YearlyScope(2025)))

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotJSON(&buf, snap))
	again, err := ParseSnapshotJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Games, again.Games)
}

func TestParseSnapshotJSON_AbortsOnError(t *testing.T) {
	_, err := ParseSnapshotJSON(strings.NewReader(`{"players": ["A", "B"], "games": [{"date": "19/01/2025"}]}`))
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	_, err = ParseSnapshotJSON(strings.NewReader(`{"players": [`))
	assert.Error(t, err)
}
