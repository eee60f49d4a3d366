package dto

type DriveAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type DriveCallbackRequest struct {
	Code string `json:"code" validate:"required"`
}

func (r DriveCallbackRequest) Validate() error {
	return GetValidator().Struct(r)
}

type DriveUploadRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	FolderID string `json:"folder_id,omitempty"`
}

func (r DriveUploadRequest) Validate() error {
	return GetValidator().Struct(r)
}

type DriveUploadResponse struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	WebLink  string `json:"web_link,omitempty"`
}
