package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/normalizer"
	"github.com/edforge-labs/coursegen_api/shared"
)

// GenerationService fronts the OpenAI chat-completion API. Every path has a
// deterministic fallback: a failed or missing upstream never produces less
// structure than the caller asked for.
type GenerationService struct {
	appcontext.DefaultService

	client   *openai.Client
	redisSvc *RedisService

	model      string
	batchDelay time.Duration
}

const GENERATION_SVC = "generation_svc"

var errNoClient = errors.New("OPENAI_API_KEY not configured")

func (svc GenerationService) Id() string {
	return GENERATION_SVC
}

func (svc *GenerationService) Configure(ctx *appcontext.Context) error {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		svc.client = openai.NewClient(key)
	} else {
		log.Warn("OPENAI_API_KEY not set, generation runs on fallback synthesis only")
	}

	svc.model = os.Getenv("OPENAI_MODEL")
	if svc.model == "" {
		svc.model = openai.GPT4oMini
	}

	// Batch runs are serialized with a fixed pause to stay under upstream
	// rate limits.
	svc.batchDelay = time.Second

	return svc.DefaultService.Configure(ctx)
}

func (svc *GenerationService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// complete sends one chat completion and returns the raw text.
func (svc *GenerationService) complete(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	if svc.client == nil {
		return "", errNoClient
	}

	req := openai.ChatCompletionRequest{
		Model: svc.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := svc.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// cachedComplete memoizes completions in redis keyed by prompt hash.
func (svc *GenerationService) cachedComplete(ctx context.Context, kind, system, prompt string, jsonMode bool) (string, error) {
	if cached := svc.redisSvc.CachedGeneration(ctx, kind, prompt); cached != "" {
		return cached, nil
	}

	raw, err := svc.complete(ctx, system, prompt, jsonMode)
	if err != nil {
		return "", err
	}
	if err := svc.redisSvc.CacheGeneration(ctx, kind, prompt, raw); err != nil {
		log.WithError(err).Debug("failed to cache completion")
	}
	return raw, nil
}

// ==================== COURSE STRUCTURE ====================

const structureSystemPrompt = "Você é um designer instrucional. Responda com a estrutura do curso " +
	"usando cabeçalhos 'Módulo N: Título' e, dentro de cada módulo, linhas 'Aula N: Título'."

func buildStructurePrompt(req dto.GenerateStructureRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crie a estrutura de um curso chamado %q sobre o tema %q.\n", req.Title, req.Theme)
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, "Público-alvo: %s.\n", req.TargetAudience)
	}
	if len(req.CognitiveSkills) > 0 {
		fmt.Fprintf(&b, "Habilidades cognitivas a desenvolver: %s.\n", strings.Join(req.CognitiveSkills, ", "))
	}
	if len(req.BehavioralSkills) > 0 {
		fmt.Fprintf(&b, "Habilidades comportamentais: %s.\n", strings.Join(req.BehavioralSkills, ", "))
	}
	if len(req.TechnicalSkills) > 0 {
		fmt.Fprintf(&b, "Habilidades técnicas: %s.\n", strings.Join(req.TechnicalSkills, ", "))
	}
	fmt.Fprintf(&b, "O curso deve ter %d módulos com %d aulas cada.\n", req.ModuleCount, req.LessonsPerModule)
	b.WriteString("Para cada módulo use o formato 'Módulo N: Título' e para cada aula 'Aula N: Título'.")
	return b.String()
}

func (svc *GenerationService) GenerateStructure(ctx context.Context, req dto.GenerateStructureRequest) (*dto.GenerateStructureResponse, error) {
	parseReq := normalizer.StructureRequest{
		Title:            req.Title,
		Theme:            req.Theme,
		TargetAudience:   req.TargetAudience,
		ModuleCount:      req.ModuleCount,
		LessonsPerModule: req.LessonsPerModule,
	}

	var parsed []normalizer.ParsedModule
	fallback := false

	raw, err := svc.cachedComplete(ctx, "structure", structureSystemPrompt, buildStructurePrompt(req), false)
	if err != nil {
		log.WithError(err).Warn("structure generation call failed, using fallback synthesis")
		RecordGeneration("structure", "fallback")
		parsed = normalizer.FallbackStructure(parseReq)
		fallback = true
	} else {
		RecordGeneration("structure", "ok")
		parsed = normalizer.ParseStructure(parseReq, raw)
	}

	modules := make([]model.Module, 0, len(parsed))
	now := time.Now()
	for i, pm := range parsed {
		id, _ := uuid.NewV7()
		mod := model.Module{
			ID:               id.String(),
			CourseID:         shared.ParseCourseID(req.CourseID).String(),
			Title:            pm.Title,
			Description:      pm.Description,
			Order:            i + 1,
			Status:           shared.ModuleStatusNotStarted,
			Topics:           lo.Map(pm.Lessons, func(l normalizer.ParsedLesson, _ int) string { return l.Title }),
			CognitiveSkills:  req.CognitiveSkills,
			BehavioralSkills: req.BehavioralSkills,
			TechnicalSkills:  req.TechnicalSkills,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		for j, pl := range pm.Lessons {
			lessonID, _ := uuid.NewV7()
			mod.Lessons = append(mod.Lessons, model.Lesson{
				ID:          lessonID.String(),
				ModuleID:    mod.ID,
				Title:       pl.Title,
				Order:       j + 1,
				Description: pl.Description,
				Duration:    pl.Duration,
				Content:     pl.Content,
				Status:      shared.ModuleStatusNotStarted,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		modules = append(modules, mod)
	}

	return &dto.GenerateStructureResponse{Modules: modules, Fallback: fallback}, nil
}

// ==================== COMPETENCY MAPPING ====================

const competencySystemPrompt = "Você é um especialista em taxonomias de aprendizagem. Responda apenas JSON " +
	`no formato {"cognitiveSkills": [], "behavioralSkills": [], "technicalSkills": []}.`

func (svc *GenerationService) GenerateCompetencyMapping(ctx context.Context, req dto.CompetencyMappingRequest) (*dto.CompetencyMappingResponse, error) {
	prompt := fmt.Sprintf("Liste as competências que o curso %q sobre %q deve desenvolver para o público %q.",
		req.Title, req.Theme, req.TargetAudience)

	raw, err := svc.cachedComplete(ctx, "competency", competencySystemPrompt, prompt, true)
	if err == nil {
		var payload struct {
			CognitiveSkills  []string `json:"cognitiveSkills"`
			BehavioralSkills []string `json:"behavioralSkills"`
			TechnicalSkills  []string `json:"technicalSkills"`
		}
		if jsonErr := sonic.UnmarshalString(raw, &payload); jsonErr == nil {
			RecordGeneration("competency", "ok")
			return &dto.CompetencyMappingResponse{
				CognitiveSkills:  payload.CognitiveSkills,
				BehavioralSkills: payload.BehavioralSkills,
				TechnicalSkills:  payload.TechnicalSkills,
			}, nil
		} else {
			err = jsonErr
		}
	}

	log.WithError(err).Warn("competency mapping failed, using default taxonomy")
	RecordGeneration("competency", "fallback")
	theme := req.Theme
	if theme == "" {
		theme = req.Title
	}
	return &dto.CompetencyMappingResponse{
		CognitiveSkills:  []string{fmt.Sprintf("Compreender os fundamentos de %s", theme), fmt.Sprintf("Analisar cenários de %s", theme)},
		BehavioralSkills: []string{"Colaboração em equipe", "Comunicação de resultados"},
		TechnicalSkills:  []string{fmt.Sprintf("Aplicar técnicas de %s na prática", theme)},
		Fallback:         true,
	}, nil
}

// ==================== LESSON CONTENT ====================

const lessonSystemPrompt = "Você é um professor experiente. Escreva o conteúdo completo da aula em markdown, " +
	"com seções de objetivos, desenvolvimento, prática e conclusão."

func (svc *GenerationService) GenerateLessonContent(ctx context.Context, req dto.GenerateLessonContentRequest) (*dto.GenerateLessonContentResponse, error) {
	prompt := fmt.Sprintf("Escreva o conteúdo da aula %q do módulo %q, tema do curso: %q.",
		req.LessonTitle, req.ModuleTitle, req.Theme)

	raw, err := svc.cachedComplete(ctx, "lesson", lessonSystemPrompt, prompt, false)
	if err != nil {
		log.WithError(err).Warn("lesson content generation failed, using template body")
		RecordGeneration("lesson_content", "fallback")
		return &dto.GenerateLessonContentResponse{
			Content:  normalizer.FallbackLessonContent(req.Theme, req.ModuleTitle, req.LessonTitle),
			Fallback: true,
		}, nil
	}
	RecordGeneration("lesson_content", "ok")
	return &dto.GenerateLessonContentResponse{Content: raw}, nil
}

// ==================== ACTIVITIES (JSON MODE, BATCH) ====================

const activitiesSystemPrompt = "Você cria atividades didáticas. Responda apenas JSON no formato " +
	`{"practicalExercises": [{"type": "exercise", "title": "", "description": "", "questions": []}], ` +
	`"assessmentQuestions": [{"question": "", "options": [], "answer": 0, "explanation": ""}]}.`

// GenerateActivities runs the batch serially with a fixed inter-request
// delay. A lesson's failure is recorded on its result and the batch moves on.
func (svc *GenerationService) GenerateActivities(ctx context.Context, req dto.GenerateActivitiesRequest) (*dto.GenerateActivitiesResponse, error) {
	results := make([]dto.LessonActivitiesResult, 0, len(req.Lessons))

	for i, lesson := range req.Lessons {
		if i > 0 {
			select {
			case <-time.After(svc.batchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result := dto.LessonActivitiesResult{
			LessonID:            lesson.LessonID,
			PracticalExercises:  []model.Activity{},
			AssessmentQuestions: []model.Question{},
		}

		prompt := fmt.Sprintf("Crie exercícios práticos e questões de avaliação para a aula %q do módulo %q, tema %q.",
			lesson.LessonTitle, lesson.ModuleTitle, req.Theme)

		raw, err := svc.complete(ctx, activitiesSystemPrompt, prompt, true)
		if err == nil {
			var payload *normalizer.ActivitiesPayload
			payload, err = normalizer.ParseActivities(raw)
			if err == nil {
				if payload.PracticalExercises != nil {
					result.PracticalExercises = payload.PracticalExercises
				}
				if payload.AssessmentQuestions != nil {
					result.AssessmentQuestions = payload.AssessmentQuestions
				}
			}
		}
		if err != nil {
			log.WithError(err).WithField("lesson_id", lesson.LessonID).Warn("activities generation failed for lesson")
			RecordGeneration("activities", "error")
			result.Error = err.Error()
		} else {
			RecordGeneration("activities", "ok")
		}

		results = append(results, result)
	}

	return &dto.GenerateActivitiesResponse{Results: results}, nil
}
