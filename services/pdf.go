package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/jung-kurt/gofpdf"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

// PDFService renders printable documents for a course: the full course
// document and a standalone activities booklet. Rendered files are mirrored
// to object storage when it is configured.
type PDFService struct {
	appcontext.DefaultService

	courseSvc *CourseService
	minioSvc  *MinIOService
}

const PDF_SVC = "pdf_svc"

func (svc PDFService) Id() string {
	return PDF_SVC
}

func (svc *PDFService) Start() error {
	svc.courseSvc = svc.Service(COURSE_SVC).(*CourseService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// ExportCoursePDF renders the complete course: cover, overview, one section
// per module with its lessons.
func (svc *PDFService) ExportCoursePDF(ctx context.Context, courseID string) (*dto.PDFExportResult, error) {
	course, err := svc.courseSvc.GetCourse(ctx, shared.ParseCourseID(courseID))
	if err != nil {
		return nil, err
	}

	pdf := newDocument()
	writeCover(pdf, course)

	for _, module := range course.Modules {
		pdf.AddPage()
		sectionTitle(pdf, fmt.Sprintf("Módulo %d: %s", module.Order, module.Title))
		if module.Description != "" {
			bodyText(pdf, module.Description)
		}
		if module.Objective != "" {
			subTitle(pdf, "Objetivo")
			bodyText(pdf, module.Objective)
		}
		if len(module.Topics) > 0 {
			subTitle(pdf, "Tópicos")
			for _, topic := range module.Topics {
				bodyText(pdf, "- "+topic)
			}
		}

		for _, lesson := range module.Lessons {
			subTitle(pdf, fmt.Sprintf("Aula %d: %s", lesson.Order, lesson.Title))
			if lesson.Duration != "" {
				metaText(pdf, "Duração: "+lesson.Duration)
			}
			if lesson.Content != "" {
				bodyText(pdf, stripMarkdown(lesson.Content))
			} else if lesson.Description != "" {
				bodyText(pdf, lesson.Description)
			}
		}

		if module.Content != nil && module.Content.Text != "" {
			subTitle(pdf, "Conteúdo do módulo")
			bodyText(pdf, stripMarkdown(module.Content.Text))
		}
	}

	return svc.finish(pdf, course, "curso")
}

// ExportActivitiesPDF renders only the activities attached to the course's
// modules, formatted as a booklet with an answer key at the end.
func (svc *PDFService) ExportActivitiesPDF(ctx context.Context, courseID string) (*dto.PDFExportResult, error) {
	course, err := svc.courseSvc.GetCourse(ctx, shared.ParseCourseID(courseID))
	if err != nil {
		return nil, err
	}

	pdf := newDocument()
	pdf.AddPage()
	sectionTitle(pdf, fmt.Sprintf("Atividades - %s", course.Title))

	type answerRef struct {
		label  string
		answer string
	}
	var answers []answerRef

	for _, module := range course.Modules {
		if module.Content == nil || len(module.Content.Activities) == 0 {
			continue
		}
		subTitle(pdf, fmt.Sprintf("Módulo %d: %s", module.Order, module.Title))

		for ai, activity := range module.Content.Activities {
			bodyText(pdf, fmt.Sprintf("%d. %s (%s)", ai+1, activity.Title, activity.Type))
			if activity.Description != "" {
				bodyText(pdf, activity.Description)
			}

			for qi, question := range activity.Questions {
				label := fmt.Sprintf("M%d-A%d-Q%d", module.Order, ai+1, qi+1)
				bodyText(pdf, fmt.Sprintf("%s) %s", label, question.Question))
				for oi, opt := range question.Options {
					bodyText(pdf, fmt.Sprintf("   %c. %s", 'a'+rune(oi), opt))
				}
				if idx, ok := question.AnswerIndex(); ok {
					answers = append(answers, answerRef{label: label, answer: fmt.Sprintf("%c", 'a'+rune(idx))})
				}
			}
		}
	}

	if len(answers) > 0 {
		pdf.AddPage()
		sectionTitle(pdf, "Gabarito")
		for _, a := range answers {
			bodyText(pdf, fmt.Sprintf("%s: %s", a.label, a.answer))
		}
	}

	return svc.finish(pdf, course, "atividades")
}

func (svc *PDFService) finish(pdf *gofpdf.Fpdf, course *model.Course, kind string) (*dto.PDFExportResult, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, shared.NewAppError(500, "failed to render PDF", err)
	}

	filename := fmt.Sprintf("%s_%s.pdf", course.ID, kind)
	result := &dto.PDFExportResult{
		Filename: filename,
		Body:     buf.Bytes(),
	}

	if svc.minioSvc.Enabled() {
		objectKey := fmt.Sprintf("exports/%s/%s", course.ID, filename)
		if _, err := svc.minioSvc.UploadFile(objectKey, bytes.NewReader(result.Body), int64(len(result.Body)), "application/pdf"); err != nil {
			log.WithError(err).WithField("object", objectKey).Warn("failed to mirror PDF to object storage")
		} else {
			result.ObjectKey = objectKey
		}
	}

	RecordExport("pdf_" + kind)
	return result, nil
}

// ==================== RENDERING HELPERS ====================

func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	return pdf
}

func writeCover(pdf *gofpdf.Fpdf, course *model.Course) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Ln(40)
	pdf.MultiCell(0, 12, tr(course.Title), "", "C", false)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Ln(8)
	if course.Theme != "" {
		pdf.MultiCell(0, 8, tr("Tema: "+course.Theme), "", "C", false)
	}
	if course.EstimatedHours > 0 {
		pdf.MultiCell(0, 8, tr(fmt.Sprintf("Carga horária estimada: %.1fh", course.EstimatedHours)), "", "C", false)
	}
	pdf.MultiCell(0, 8, tr(fmt.Sprintf("%d módulos", len(course.Modules))), "", "C", false)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Ln(12)
	pdf.MultiCell(0, 6, tr("Gerado em "+time.Now().Format("02/01/2006 15:04")), "", "C", false)
}

func sectionTitle(pdf *gofpdf.Fpdf, text string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, tr(text), "", "L", false)
	pdf.Ln(2)
}

func subTitle(pdf *gofpdf.Fpdf, text string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Ln(3)
	pdf.MultiCell(0, 8, tr(text), "", "L", false)
}

func bodyText(pdf *gofpdf.Fpdf, text string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5.5, tr(text), "", "L", false)
}

func metaText(pdf *gofpdf.Fpdf, text string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr(text), "", "L", false)
}

// stripMarkdown flattens markdown headings and emphasis for plain PDF text.
func stripMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, "# ")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
