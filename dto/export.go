package dto

type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=json csv"`
}

func (r ExportRequest) Validate() error {
	return GetValidator().Struct(r)
}

type PDFExportRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

type PDFExportResult struct {
	Filename  string `json:"filename"`
	ObjectKey string `json:"object_key,omitempty"`
	Body      []byte `json:"-"`
}
