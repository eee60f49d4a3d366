// Package normalizer turns free-text LLM completions into a deterministic
// course structure. Whatever the model returns — partial, malformed or
// nothing at all — the output always honors the requested module and
// lessons-per-module counts by padding with synthesized entries. Overproduced
// modules and lessons are kept; real content is never discarded.
package normalizer

import (
	"fmt"
	"regexp"
	"strings"
)

type StructureRequest struct {
	Title            string
	Theme            string
	TargetAudience   string
	ModuleCount      int
	LessonsPerModule int
}

type ParsedModule struct {
	Title       string
	Description string
	Synthetic   bool
	Lessons     []ParsedLesson
}

type ParsedLesson struct {
	Title       string
	Description string
	Duration    string
	Content     string
	Synthetic   bool
}

const defaultLessonDuration = "45min"

// Accepted module header spellings: "Módulo 3: Título", "### Módulo 3",
// "**Módulo 3 - Título**", "3. Módulo: Título".
var moduleHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:#{1,4}\s*)?(?:\*\*)?\s*m[óo]dulo\s*(\d+)\s*[:.\-–]?\s*(.*)$`),
	regexp.MustCompile(`(?i)^\s*(\d+)\s*[.)]\s*m[óo]dulo\s*[:.\-–]?\s*(.*)$`),
}

// Accepted lesson markers inside an open module: "Aula 2: Título", bullets
// and numbered lines.
var (
	lessonAulaPattern     = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(?:\*\*)?\s*aula\s*(\d+)\s*[:.\-–]?\s*(.*)$`)
	lessonBulletPattern   = regexp.MustCompile(`^\s*[-*•]\s+(.+)$`)
	lessonNumberedPattern = regexp.MustCompile(`^\s*\d+\s*[.)]\s+(.+)$`)
)

var markdownNoise = regexp.MustCompile(`[*#_\x60]+`)

var leadingNumbering = regexp.MustCompile(`^\s*\d+\s*[.):\-–]\s*`)

// CleanTitle strips markdown markers and numbering prefixes, collapsing
// whitespace. May come out empty; callers substitute a synthesized title.
func CleanTitle(raw string) string {
	s := markdownNoise.ReplaceAllString(raw, "")
	s = leadingNumbering.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ":-–")
	return strings.TrimSpace(s)
}

func (req StructureRequest) themeOrTitle() string {
	if strings.TrimSpace(req.Theme) != "" {
		return strings.TrimSpace(req.Theme)
	}
	if strings.TrimSpace(req.Title) != "" {
		return strings.TrimSpace(req.Title)
	}
	return "Curso"
}

func (req StructureRequest) defaultModuleTitle(n int) string {
	return fmt.Sprintf("%s - Módulo %d", req.themeOrTitle(), n)
}

func (req StructureRequest) defaultModuleDescription(n int) string {
	return fmt.Sprintf("Módulo %d do curso sobre %s, cobrindo conceitos e práticas essenciais do tema.", n, req.themeOrTitle())
}

func (req StructureRequest) defaultLessonTitle(n int) string {
	return fmt.Sprintf("Aula %d: Fundamentos de %s", n, req.themeOrTitle())
}

func (req StructureRequest) lessonDescription(lessonTitle, moduleTitle string) string {
	return fmt.Sprintf("Aula sobre %s dentro do módulo %s.", lessonTitle, moduleTitle)
}

// lessonBody is the templated multi-section body attached to every lesson.
// Deliberately independent of the LLM text: structure generation yields
// outlines, the content phase fills real bodies in later.
func (req StructureRequest) lessonBody(lessonTitle, moduleTitle string) string {
	theme := req.themeOrTitle()
	var b strings.Builder
	fmt.Fprintf(&b, "## Objetivos\nAo final desta aula o aluno compreende %s no contexto de %s.\n\n", lessonTitle, theme)
	fmt.Fprintf(&b, "## Desenvolvimento\nApresentação dos conceitos centrais de %s, com exemplos aplicados ao módulo %s.\n\n", lessonTitle, moduleTitle)
	fmt.Fprintf(&b, "## Prática\nAtividade guiada para aplicar %s em um cenário realista.\n\n", lessonTitle)
	fmt.Fprintf(&b, "## Conclusão\nRevisão dos pontos principais e preparação para a próxima aula.\n")
	return b.String()
}

// FallbackLessonContent is the deterministic lesson body used when content
// generation is unavailable for a single lesson.
func FallbackLessonContent(theme, moduleTitle, lessonTitle string) string {
	req := StructureRequest{Theme: theme}
	return req.lessonBody(lessonTitle, moduleTitle)
}

func matchModuleHeader(line string) (int, string, bool) {
	for _, pattern := range moduleHeaderPatterns {
		if m := pattern.FindStringSubmatch(line); m != nil {
			return atoiSafe(m[1]), m[2], true
		}
	}
	return 0, "", false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// ParseStructure runs the line-level scan over raw LLM text and pads the
// result to the requested counts. It always returns exactly
// max(parsedModules, req.ModuleCount) modules, each with
// max(parsedLessons, req.LessonsPerModule) lessons.
func ParseStructure(req StructureRequest, raw string) []ParsedModule {
	var modules []ParsedModule
	var open *ParsedModule

	closeModule := func() {
		if open != nil {
			modules = append(modules, *open)
			open = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if _, rest, ok := matchModuleHeader(line); ok {
			closeModule()
			title := CleanTitle(rest)
			if title == "" {
				title = req.defaultModuleTitle(len(modules) + 1)
			}
			open = &ParsedModule{
				Title:       title,
				Description: req.defaultModuleDescription(len(modules) + 1),
			}
			continue
		}

		if open == nil {
			continue
		}

		var lessonTitle string
		if m := lessonAulaPattern.FindStringSubmatch(line); m != nil {
			lessonTitle = CleanTitle(m[2])
			if lessonTitle == "" {
				lessonTitle = req.defaultLessonTitle(len(open.Lessons) + 1)
			} else {
				lessonTitle = fmt.Sprintf("Aula %d: %s", len(open.Lessons)+1, lessonTitle)
			}
		} else if m := lessonBulletPattern.FindStringSubmatch(line); m != nil {
			if t := CleanTitle(m[1]); t != "" {
				lessonTitle = fmt.Sprintf("Aula %d: %s", len(open.Lessons)+1, t)
			}
		} else if m := lessonNumberedPattern.FindStringSubmatch(line); m != nil {
			if t := CleanTitle(m[1]); t != "" {
				lessonTitle = fmt.Sprintf("Aula %d: %s", len(open.Lessons)+1, t)
			}
		}

		if lessonTitle == "" {
			continue
		}

		open.Lessons = append(open.Lessons, ParsedLesson{
			Title:       lessonTitle,
			Description: req.lessonDescription(lessonTitle, open.Title),
			Duration:    defaultLessonDuration,
			Content:     req.lessonBody(lessonTitle, open.Title),
		})
	}
	closeModule()

	return pad(req, modules)
}

// FallbackStructure is the fully synthetic result used when the LLM call
// itself failed; no parsing is attempted.
func FallbackStructure(req StructureRequest) []ParsedModule {
	return pad(req, nil)
}

func pad(req StructureRequest, modules []ParsedModule) []ParsedModule {
	for len(modules) < req.ModuleCount {
		n := len(modules) + 1
		modules = append(modules, ParsedModule{
			Title:       req.defaultModuleTitle(n),
			Description: req.defaultModuleDescription(n),
			Synthetic:   true,
		})
	}

	for i := range modules {
		for len(modules[i].Lessons) < req.LessonsPerModule {
			n := len(modules[i].Lessons) + 1
			title := req.defaultLessonTitle(n)
			modules[i].Lessons = append(modules[i].Lessons, ParsedLesson{
				Title:       title,
				Description: req.lessonDescription(title, modules[i].Title),
				Duration:    defaultLessonDuration,
				Content:     req.lessonBody(title, modules[i].Title),
				Synthetic:   true,
			})
		}
	}
	return modules
}
