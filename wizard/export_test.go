package wizard

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edforge-labs/coursegen_api/model"
)

func exportFixture(t *testing.T) *Store {
	t.Helper()
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	title := "Curso de Teste"
	_, err := store.SetBasicInfo(BasicInfoPatch{Title: &title})
	require.NoError(t, err)

	_, err = store.UpdateModules([]model.Module{
		{ID: "m1", Title: "Fundamentos", Lessons: []model.Lesson{
			{ID: "l1", ModuleID: "m1", Title: "Introdução", Order: 1},
		}},
	})
	require.NoError(t, err)

	text := "conteúdo"
	_, err = store.UpdateModuleContent("m1", ModuleContentPatch{
		Text: &text,
		Activities: []model.Activity{{
			Type:  "quiz",
			Title: "Quiz de Fundamentos",
			Questions: []model.Question{
				{Question: "Pergunta 1", Options: []string{"a", "b"}, Answer: 0},
			},
		}},
	})
	require.NoError(t, err)

	return store
}

func TestExportCourseDataJSON(t *testing.T) {
	store := exportFixture(t)

	export, err := store.ExportCourseData("json")
	require.NoError(t, err)

	assert.Equal(t, "application/json", export.ContentType)
	assert.True(t, strings.HasSuffix(export.Filename, "_export.json"))

	var decoded model.Course
	require.NoError(t, sonic.Unmarshal(export.Body, &decoded))
	assert.Equal(t, "Curso de Teste", decoded.Title)
	require.Len(t, decoded.Modules, 1)
	assert.Equal(t, "Fundamentos", decoded.Modules[0].Title)
}

func TestExportCourseDataDefaultsToJSON(t *testing.T) {
	store := exportFixture(t)

	export, err := store.ExportCourseData("")
	require.NoError(t, err)
	assert.Equal(t, "application/json", export.ContentType)
}

func TestExportCourseDataCSV(t *testing.T) {
	store := exportFixture(t)

	export, err := store.ExportCourseData("csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", export.ContentType)
	assert.True(t, strings.HasSuffix(export.Filename, "_export.csv"))

	rows, err := csv.NewReader(strings.NewReader(string(export.Body))).ReadAll()
	require.NoError(t, err)

	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"record_type", "id", "parent_id", "order", "title", "status", "detail"}, rows[0])

	byType := map[string]int{}
	for _, row := range rows[1:] {
		byType[row[0]]++
	}
	assert.Equal(t, 1, byType["course"])
	assert.Equal(t, 1, byType["module"])
	assert.Equal(t, 1, byType["lesson"])
	assert.Equal(t, 1, byType["activity"])
	assert.Equal(t, 1, byType["question"])
}

func TestExportCourseDataUnknownFormat(t *testing.T) {
	store := exportFixture(t)

	_, err := store.ExportCourseData("xml")
	assert.Error(t, err)
}

func TestExportCourseDataWithoutCourse(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ExportCourseData("json")
	assert.ErrorIs(t, err, ErrNoCurrentCourse)
}
