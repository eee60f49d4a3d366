package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	appcontext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

// DriveService handles the Google OAuth dance and pushes rendered course
// PDFs to the connected Drive account. Tokens persist in Postgres so a
// restart does not force a re-auth.
type DriveService struct {
	appcontext.DefaultService

	sqlSvc *PostgresService
	pdfSvc *PDFService

	oauth *oauth2.Config
}

const DRIVE_SVC = "drive_svc"

func (svc DriveService) Id() string {
	return DRIVE_SVC
}

func (svc *DriveService) Configure(ctx *appcontext.Context) error {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URI")

	if clientID != "" && clientSecret != "" {
		svc.oauth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{drive.DriveFileScope},
			Endpoint:     google.Endpoint,
		}
	} else {
		log.Info("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, drive upload disabled")
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *DriveService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.pdfSvc = svc.Service(PDF_SVC).(*PDFService)
	return nil
}

// Enabled reports whether OAuth client credentials are configured.
func (svc *DriveService) Enabled() bool {
	return svc.oauth != nil
}

// AuthURL returns the consent-screen URL the user must visit to connect
// their Drive account.
func (svc *DriveService) AuthURL() (*dto.DriveAuthURLResponse, error) {
	if !svc.Enabled() {
		return nil, shared.NewAppError(503, "google drive integration not configured", nil)
	}
	url := svc.oauth.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return &dto.DriveAuthURLResponse{AuthURL: url}, nil
}

// HandleCallback exchanges the consent code for a token and persists it.
func (svc *DriveService) HandleCallback(ctx context.Context, code string) error {
	if !svc.Enabled() {
		return shared.NewAppError(503, "google drive integration not configured", nil)
	}

	token, err := svc.oauth.Exchange(ctx, code)
	if err != nil {
		return shared.NewAppError(400, "failed to exchange authorization code", err)
	}

	id, _ := uuid.NewV7()
	cred := &model.DriveCredential{
		ID:           id.String(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	if err := svc.sqlSvc.SaveDriveCredential(ctx, cred); err != nil {
		return err
	}

	log.Info("google drive account connected")
	return nil
}

// Connected reports whether a stored credential exists.
func (svc *DriveService) Connected(ctx context.Context) bool {
	cred, err := svc.sqlSvc.LatestDriveCredential(ctx)
	return err == nil && cred != nil
}

func (svc *DriveService) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cred, err := svc.sqlSvc.LatestDriveCredential(ctx)
	if err != nil {
		return nil, shared.NewAppError(401, "google drive not connected", err)
	}

	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}
	source := svc.oauth.TokenSource(ctx, token)

	// Persist refreshed tokens so the stored credential stays usable.
	refreshed, err := source.Token()
	if err != nil {
		return nil, shared.NewAppError(401, "stored google drive token is no longer valid", err)
	}
	if refreshed.AccessToken != token.AccessToken {
		cred.AccessToken = refreshed.AccessToken
		cred.Expiry = refreshed.Expiry
		if refreshed.RefreshToken != "" {
			cred.RefreshToken = refreshed.RefreshToken
		}
		if err := svc.sqlSvc.SaveDriveCredential(ctx, cred); err != nil {
			log.WithError(err).Warn("failed to persist refreshed drive token")
		}
	}

	return source, nil
}

// UploadCourse renders the course PDF and uploads it to the connected Drive
// account, optionally inside a folder.
func (svc *DriveService) UploadCourse(ctx context.Context, req dto.DriveUploadRequest) (*dto.DriveUploadResponse, error) {
	if !svc.Enabled() {
		return nil, shared.NewAppError(503, "google drive integration not configured", nil)
	}

	source, err := svc.tokenSource(ctx)
	if err != nil {
		return nil, err
	}

	result, err := svc.pdfSvc.ExportCoursePDF(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	client, err := drive.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, shared.NewAppError(502, "failed to create drive client", err)
	}

	meta := &drive.File{
		Name:     result.Filename,
		MimeType: "application/pdf",
	}
	if req.FolderID != "" {
		meta.Parents = []string{req.FolderID}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	file, err := client.Files.Create(meta).
		Media(bytes.NewReader(result.Body)).
		Fields("id", "name", "webViewLink").
		Context(uploadCtx).
		Do()
	if err != nil {
		return nil, shared.NewAppError(502, fmt.Sprintf("drive upload failed: %v", err), err)
	}

	log.WithField("file_id", file.Id).Info("course uploaded to google drive")
	return &dto.DriveUploadResponse{
		FileID:   file.Id,
		FileName: file.Name,
		WebLink:  file.WebViewLink,
	}, nil
}
