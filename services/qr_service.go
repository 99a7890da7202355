package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/qr"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// IssuedQR is a freshly generated code: its file handle and the URL it encodes.
type IssuedQR struct {
	QRCode string `json:"qrCode"`
	URL    string `json:"url"`
}

type QRService interface {
	IssueMenuQR(ctx context.Context) (*IssuedQR, error)
	IssueTableActionsQR(ctx context.Context, tableID uint) (*IssuedQR, error)
	Path(filename string) (string, error)
}

type qrService struct {
	tables  repository.TableRepository
	issuer  qr.Issuer
	baseURL string
}

func NewQRService(tables repository.TableRepository, issuer qr.Issuer, baseURL string) QRService {
	return &qrService{tables: tables, issuer: issuer, baseURL: baseURL}
}

func (s *qrService) IssueMenuQR(ctx context.Context) (*IssuedQR, error) {
	return s.issue(s.baseURL+"/api/menu", qr.CategoryMenu)
}

func (s *qrService) IssueTableActionsQR(ctx context.Context, tableID uint) (*IssuedQR, error) {
	if _, err := s.tables.FindByID(ctx, tableID); err != nil {
		return nil, storeError(err, "Table not found", "Error generating QR code")
	}
	return s.issue(fmt.Sprintf("%s/api/tables/%d/actions", s.baseURL, tableID), qr.CategoryTableActions)
}

// Path resolves a QR filename; anything that is not a plain file name in the
// QR directory is reported as not found.
func (s *qrService) Path(filename string) (string, error) {
	p, err := s.issuer.Path(filename)
	if err != nil {
		if errors.Is(err, qr.ErrNotFound) || errors.Is(err, qr.ErrInvalidFilename) {
			return "", notFound("QR code not found")
		}
		return "", internal("Error fetching QR code", err)
	}
	return p, nil
}

func (s *qrService) issue(content, category string) (*IssuedQR, error) {
	handle, err := s.issuer.Issue(content, category)
	if err != nil {
		return nil, internal("Error generating QR code", err)
	}
	metrics.RecordQRCode(category)
	utils.InfoLogger.Printf("Issued %s QR code %s", category, handle)
	return &IssuedQR{QRCode: handle, URL: content}, nil
}
