package normalizer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(modules, lessons int) StructureRequest {
	return StructureRequest{
		Title:            "Introdução à Fotografia",
		Theme:            "Fotografia",
		TargetAudience:   "iniciantes",
		ModuleCount:      modules,
		LessonsPerModule: lessons,
	}
}

func TestParseStructureWellFormed(t *testing.T) {
	raw := strings.Join([]string{
		"Módulo 1: Câmera e Exposição",
		"Aula 1: Abertura",
		"Aula 2: Velocidade do obturador",
		"",
		"Módulo 2: Composição",
		"Aula 1: Regra dos terços",
		"Aula 2: Enquadramento",
	}, "\n")

	modules := ParseStructure(req(2, 2), raw)
	require.Len(t, modules, 2)

	assert.Equal(t, "Câmera e Exposição", modules[0].Title)
	assert.False(t, modules[0].Synthetic)
	require.Len(t, modules[0].Lessons, 2)
	assert.Equal(t, "Aula 1: Abertura", modules[0].Lessons[0].Title)
	assert.False(t, modules[0].Lessons[0].Synthetic)
	assert.Equal(t, "45min", modules[0].Lessons[0].Duration)
	assert.Contains(t, modules[0].Lessons[0].Content, "## Objetivos")

	assert.Equal(t, "Composição", modules[1].Title)
	assert.Equal(t, "Aula 2: Enquadramento", modules[1].Lessons[1].Title)
}

func TestParseStructureMarkdownHeaders(t *testing.T) {
	raw := strings.Join([]string{
		"### Módulo 1 - **Luz Natural**",
		"- Golden hour",
		"- Sombras duras",
		"**Módulo 2: Edição**",
		"1. Revelação de RAW",
		"2) Correção de cor",
	}, "\n")

	modules := ParseStructure(req(2, 2), raw)
	require.Len(t, modules, 2)

	assert.Equal(t, "Luz Natural", modules[0].Title)
	require.Len(t, modules[0].Lessons, 2)
	assert.Equal(t, "Aula 1: Golden hour", modules[0].Lessons[0].Title)

	assert.Equal(t, "Edição", modules[1].Title)
	assert.Equal(t, "Aula 1: Revelação de RAW", modules[1].Lessons[0].Title)
	assert.Equal(t, "Aula 2: Correção de cor", modules[1].Lessons[1].Title)
}

func TestParseStructurePadsGarbageToRequestedCounts(t *testing.T) {
	modules := ParseStructure(req(6, 5), "nothing here resembles a course outline at all")
	require.Len(t, modules, 6)

	for i, mod := range modules {
		assert.True(t, mod.Synthetic)
		assert.Equal(t, fmt.Sprintf("Fotografia - Módulo %d", i+1), mod.Title)
		require.Len(t, mod.Lessons, 5)
		for j, lesson := range mod.Lessons {
			assert.True(t, lesson.Synthetic)
			assert.Equal(t, fmt.Sprintf("Aula %d: Fundamentos de Fotografia", j+1), lesson.Title)
			assert.NotEmpty(t, lesson.Content)
		}
	}
}

func TestParseStructurePadsPartialOutput(t *testing.T) {
	raw := strings.Join([]string{
		"Módulo 1: Básico",
		"Aula 1: Intro",
		"Módulo 2: Intermediário",
		"Módulo 3: Avançado",
		"Módulo 4: Projeto",
	}, "\n")

	modules := ParseStructure(req(6, 3), raw)
	require.Len(t, modules, 6)

	// Four real, two padded.
	for i := 0; i < 4; i++ {
		assert.False(t, modules[i].Synthetic, "module %d should be parsed", i+1)
	}
	assert.True(t, modules[4].Synthetic)
	assert.True(t, modules[5].Synthetic)

	// Every module reaches the lesson floor; the one parsed lesson survives.
	for _, mod := range modules {
		assert.GreaterOrEqual(t, len(mod.Lessons), 3)
	}
	assert.Equal(t, "Aula 1: Intro", modules[0].Lessons[0].Title)
	assert.True(t, modules[0].Lessons[1].Synthetic)
}

func TestParseStructureKeepsOverproduction(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "Módulo %d: Tópico %d\n", i, i)
		for j := 1; j <= 4; j++ {
			fmt.Fprintf(&b, "Aula %d: Lição %d\n", j, j)
		}
	}

	modules := ParseStructure(req(3, 2), b.String())

	assert.Len(t, modules, 5, "extra modules are never truncated")
	for _, mod := range modules {
		assert.Len(t, mod.Lessons, 4, "extra lessons are never truncated")
	}
}

func TestParseStructureUntitledModuleGetsDefault(t *testing.T) {
	modules := ParseStructure(req(1, 1), "Módulo 1:\nAula 1: Algo")
	require.Len(t, modules, 1)
	assert.Equal(t, "Fotografia - Módulo 1", modules[0].Title)
}

func TestFallbackStructure(t *testing.T) {
	modules := FallbackStructure(req(3, 4))
	require.Len(t, modules, 3)

	for i, mod := range modules {
		assert.True(t, mod.Synthetic)
		assert.Equal(t, fmt.Sprintf("Fotografia - Módulo %d", i+1), mod.Title)
		assert.NotEmpty(t, mod.Description)
		require.Len(t, mod.Lessons, 4)
		for j, lesson := range mod.Lessons {
			assert.Equal(t, fmt.Sprintf("Aula %d: Fundamentos de Fotografia", j+1), lesson.Title)
			assert.Equal(t, "45min", lesson.Duration)
		}
	}
}

func TestFallbackStructureWithoutTheme(t *testing.T) {
	modules := FallbackStructure(StructureRequest{ModuleCount: 1, LessonsPerModule: 1})
	require.Len(t, modules, 1)
	assert.Equal(t, "Curso - Módulo 1", modules[0].Title)
}

func TestFallbackLessonContent(t *testing.T) {
	body := FallbackLessonContent("Culinária", "Massas", "Aula 1: Molhos")

	assert.Contains(t, body, "## Objetivos")
	assert.Contains(t, body, "## Desenvolvimento")
	assert.Contains(t, body, "## Prática")
	assert.Contains(t, body, "## Conclusão")
	assert.Contains(t, body, "Culinária")
	assert.Contains(t, body, "Massas")
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"**Título Negrito**", "Título Negrito"},
		{"### Cabeçalho", "Cabeçalho"},
		{"1. Introdução", "Introdução"},
		{"2) Avançado", "Avançado"},
		{"  : Sobras de separador - ", "Sobras de separador"},
		{"`código`", "código"},
		{"***", ""},
		{"Sem mudança", "Sem mudança"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanTitle(tc.in), "input %q", tc.in)
	}
}
